package dbtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListScanAndValue(t *testing.T) {
	var list StringList
	require.NoError(t, list.Scan(`["Durable rope","Non-toxic"]`))
	assert.Equal(t, StringList{"Durable rope", "Non-toxic"}, list)

	value, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, `["Durable rope","Non-toxic"]`, value)

	require.NoError(t, list.Scan(nil))
	assert.Empty(t, list)

	empty, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestStringListScanRejectsGarbage(t *testing.T) {
	var list StringList
	assert.Error(t, list.Scan("{a,b}"))
	assert.Error(t, list.Scan(42))
}

func TestStringListClean(t *testing.T) {
	assert.Equal(t, StringList{"a", "b"}, StringList{" a ", "", "  ", "b"}.Clean())
}
