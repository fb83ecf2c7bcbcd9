package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	type body struct {
		Due Date `json:"dueDate"`
	}

	var absent body
	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	assert.False(t, absent.Due.Set)
	assert.False(t, absent.Due.Cleared())

	var cleared body
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":null}`), &cleared))
	assert.True(t, cleared.Due.Cleared())

	var empty body
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":""}`), &empty))
	assert.True(t, empty.Due.Cleared())

	var bare body
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":"2030-02-03"}`), &bare))
	require.NotNil(t, bare.Due.Time)
	assert.Equal(t, time.Date(2030, 2, 3, 0, 0, 0, 0, time.UTC), *bare.Due.Time)
	assert.False(t, bare.Due.Cleared())

	var bad body
	assert.Error(t, json.Unmarshal([]byte(`{"dueDate":"next week"}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"dueDate":12}`), &bad))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2030-02-03T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 2, 3, 8, 30, 0, 0, time.UTC), got)

	got, err = ParseDate("2030-02-03T10:30")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())

	_, err = ParseDate("03/02/2030")
	assert.Error(t, err)
}
