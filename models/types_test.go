// File: /models/types_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSetAdd(t *testing.T) {
	set := StringSet{}

	assert.True(t, set.Add("a"))
	assert.True(t, set.Add("b"))
	assert.False(t, set.Add("a"), "adding an existing member should report no change")

	assert.Equal(t, StringSet{"a", "b"}, set)
}

func TestStringSetRemove(t *testing.T) {
	set := StringSet{"a", "b", "c"}

	assert.True(t, set.Remove("b"))
	assert.False(t, set.Remove("b"), "removing an absent member should report no change")

	assert.Equal(t, StringSet{"a", "c"}, set)
}

func TestStringSetContains(t *testing.T) {
	set := StringSet{"a", "b"}

	assert.True(t, set.Contains("a"))
	assert.False(t, set.Contains("z"))
	assert.True(t, set.ContainsAll("a", "b"))
	assert.False(t, set.ContainsAll("a", "z"))
	assert.True(t, StringSet{}.ContainsAll(), "empty query is vacuously contained")
}

func TestStringSetDatabaseRoundTrip(t *testing.T) {
	set := StringSet{"u1", "u2"}

	value, err := set.Value()
	require.NoError(t, err)

	var scanned StringSet
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, set, scanned)

	// MySQL drivers return JSON columns as strings too
	var fromString StringSet
	require.NoError(t, fromString.Scan(`["u3"]`))
	assert.Equal(t, StringSet{"u3"}, fromString)

	assert.Error(t, scanned.Scan(42))
}

func TestStringSetNilMarshalsAsEmptyArray(t *testing.T) {
	var set StringSet

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	value, err := set.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value)
}
