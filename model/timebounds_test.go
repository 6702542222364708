package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTimeBoundsContains(t *testing.T) {
	bounds := TimeBounds{StartDate: date(2024, 8, 1), EndDate: date(2024, 8, 31), HasConstraint: true}

	assert.True(t, bounds.Contains(date(2024, 8, 1)), "Expected start boundary to be included")
	assert.True(t, bounds.Contains(date(2024, 8, 31)), "Expected end boundary to be included")
	assert.True(t, bounds.Contains(time.Date(2024, 8, 31, 23, 59, 0, 0, time.UTC)), "Expected time of day to be ignored")
	assert.False(t, bounds.Contains(date(2024, 9, 1)))
	assert.False(t, bounds.Contains(date(2024, 7, 31)))
	assert.Equal(t, 31, bounds.Days())
}

func TestTimeBoundsJSON(t *testing.T) {
	bounds := TimeBounds{StartDate: date(2024, 1, 1), EndDate: date(2024, 12, 31), HasConstraint: true, Description: "2024"}

	b, err := json.Marshal(bounds)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start_date":"2024-01-01","end_date":"2024-12-31","temporal_description":"2024","has_time_constraint":true}`, string(b))

	var decoded TimeBounds
	err = json.Unmarshal(b, &decoded)
	require.NoError(t, err)
	assert.Equal(t, bounds, decoded)
}
