package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState(t *testing.T) {
	for _, st := range []State{Detached, Unchanged, Added, Modified, Deleted} {
		parsed, err := ParseState(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, parsed)
	}

	_, err := ParseState("Gone")
	require.Error(t, err)

	assert.True(t, Added.IsChanged())
	assert.True(t, Deleted.IsChanged())
	assert.False(t, Unchanged.IsChanged())
	assert.Equal(t, "State(9)", State(9).String())

	text, err := Modified.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Modified", string(text))

	var back State
	require.NoError(t, back.UnmarshalText([]byte("Deleted")))
	assert.Equal(t, Deleted, back)
	require.Error(t, back.UnmarshalText([]byte("deleted")))
}

func TestKey(t *testing.T) {
	a := NewKey("Customer:#Shop", int64(-1))
	b := NewKey("Customer:#Shop", float64(-1))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(NewKey("Order:#Shop", int64(-1))))
	assert.False(t, a.Equal(NewKey("Customer:#Shop", int64(-1), int64(2))))
	assert.Equal(t, "Customer:#Shop(-1)", a.String())
	assert.True(t, a.IsComplete())
	assert.False(t, NewKey("Customer:#Shop", nil).IsComplete())
	assert.False(t, NewKey("Customer:#Shop").IsComplete())

	big := NewKey("Ledger:#Shop", int64(9007199254740993))
	assert.False(t, big.Equal(NewKey("Ledger:#Shop", int64(9007199254740992))))
	assert.True(t, big.Equal(NewKey("Ledger:#Shop", json.Number("9007199254740993"))))
	assert.Equal(t, "Ledger:#Shop(9007199254740993)", big.String())
}
