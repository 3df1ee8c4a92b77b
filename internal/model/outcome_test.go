package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeEquals_Returned(t *testing.T) {
	a := Returned(`{"total":42}`)
	b := Returned(`{"total":42}`)

	assert.True(t, a.Equals(b, false))
	assert.True(t, a.Equals(b, true))

	b.Value = `{"total":43}`
	assert.False(t, a.Equals(b, false))
}

func TestOutcomeEquals_ReturnedComparesStdout(t *testing.T) {
	a := Returned(`1`)
	a.Stdout = "processing\n"
	b := Returned(`1`)

	assert.False(t, a.Equals(b, false))

	b.Stdout = "processing\n"
	assert.True(t, a.Equals(b, false))
}

func TestOutcomeEquals_RaisedMessageStrictness(t *testing.T) {
	a := Raised("ValueError", "negative quantity")
	b := Raised("ValueError", "quantity must be positive")

	assert.True(t, a.Equals(b, false), "same exception type should match leniently")
	assert.False(t, a.Equals(b, true), "different messages should fail strict comparison")

	c := Raised("TypeError", "negative quantity")
	assert.False(t, a.Equals(c, false), "different exception types never match")
}

func TestOutcomeEquals_KindMismatch(t *testing.T) {
	assert.False(t, Returned(`1`).Equals(Raised("ValueError", ""), false))
	assert.False(t, TimedOut().Equals(Crashed(1), false))
}

func TestOutcomeEquals_TimedOutAndCrashed(t *testing.T) {
	assert.True(t, TimedOut().Equals(TimedOut(), true))
	assert.True(t, Crashed(-9).Equals(Crashed(-9), true))
	assert.False(t, Crashed(-9).Equals(Crashed(1), true))
}

func TestCanonicalJSON_SortsObjectKeys(t *testing.T) {
	canonical, err := CanonicalJSON([]byte(`{"b": 1, "a": {"d": 2, "c": 3}}`))
	require.NoError(t, err)

	assert.Equal(t, `{"a":{"c":3,"d":2},"b":1}`, canonical)
}

func TestCanonicalJSON_PreservesNumberLiterals(t *testing.T) {
	canonical, err := CanonicalJSON([]byte(`[1.50, 3, 1e3]`))
	require.NoError(t, err)

	assert.Equal(t, `[1.50,3,1e3]`, canonical)
}

func TestCanonicalJSON_NoHTMLEscaping(t *testing.T) {
	canonical, err := CanonicalJSON([]byte(`"a<b>&c"`))
	require.NoError(t, err)

	assert.Equal(t, `"a<b>&c"`, canonical)
}

func TestCanonicalJSON_RejectsInvalidInput(t *testing.T) {
	_, err := CanonicalJSON([]byte(`{"a":`))
	assert.Error(t, err)
}
