package adapter

// probeScript is the Python program driving one isolated variant execution.
// It reads a ProbeRequest as JSON on stdin, loads the variant module from its
// file path, resolves the target callable, invokes it, and emits exactly one
// JSON payload line on the real stdout. The variant's own prints go to a
// buffer so they can never corrupt the payload channel.
//
// Unordered containers (set, frozenset) are serialized in sorted order so the
// canonical representation is deterministic; tuples become lists; instances
// carrying a plain attribute dict canonicalize structurally as
// {class name: attributes}; everything else falls back to repr() with memory
// addresses stripped, so the same value canonicalizes identically across
// processes.
const probeScript = `
import importlib.util
import io
import json
import re
import sys


def stable_repr(value):
    return re.sub(r" at 0x[0-9a-fA-F]+", "", repr(value))


def canon(value):
    if isinstance(value, dict):
        return {str(key): canon(item) for key, item in value.items()}
    if isinstance(value, (set, frozenset)):
        items = [canon(item) for item in value]
        items.sort(key=lambda item: json.dumps(item, sort_keys=True, default=stable_repr))
        return items
    if isinstance(value, (list, tuple)):
        return [canon(item) for item in value]
    if value is None or isinstance(value, (str, int, float, bool)):
        return value
    fields = getattr(value, "__dict__", None)
    if isinstance(fields, dict):
        return {type(value).__name__: canon(fields)}
    return stable_repr(value)


def emit(payload):
    json.dump(payload, sys.__stdout__, sort_keys=True, default=stable_repr)
    sys.__stdout__.write("\n")
    sys.__stdout__.flush()


def main():
    request = json.load(sys.stdin)
    parts = request["target"].split(".")

    try:
        spec = importlib.util.spec_from_file_location("rift_variant", request["module_path"])
        if spec is None or spec.loader is None:
            raise ImportError("cannot load module from %s" % request["module_path"])
        module = importlib.util.module_from_spec(spec)
        spec.loader.exec_module(module)

        holder = module
        for name in parts[:-1]:
            holder = getattr(holder, name)
        if not hasattr(holder, parts[-1]):
            raise AttributeError("callable %r not found" % request["target"])
    except BaseException as error:
        emit({"kind": "load_error", "message": "%s: %s" % (type(error).__name__, error)})
        return

    buffer = io.StringIO()
    sys.stdout = buffer
    try:
        if isinstance(holder, type):
            holder = holder(*(request.get("setup") or []))
        value = getattr(holder, parts[-1])(*(request.get("args") or []))

        payload = {"kind": "returned", "value": canon(value)}
        if request.get("capture_stdout"):
            payload["stdout"] = buffer.getvalue()
        emit(payload)
    except BaseException as error:
        emit({"kind": "raised", "type": type(error).__name__, "message": str(error)})
    finally:
        sys.stdout = sys.__stdout__


main()
`
