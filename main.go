// Package main is the entry point for the Rift CLI.
package main

import "rift.dev/pkg/rift/cmd"

func main() {
	cmd.Execute()
}
