package models

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"stock-backend/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampUsesBusinessZoneForNaiveValues(t *testing.T) {
	require.NoError(t, timeutil.SetLocation("America/New_York"))
	t.Cleanup(func() { _ = timeutil.SetLocation("") })
	ny := timeutil.Location()

	day, err := ParseTimestamp("2024-01-15")
	require.NoError(t, err)
	assert.True(t, day.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, ny)), "got %s", day)

	start, end := timeutil.DayRange(day)
	assert.False(t, day.Before(start))
	assert.True(t, day.Before(end))
	assert.Equal(t, "2024-01-15", timeutil.FormatDate(day))

	evening, err := ParseTimestamp("2024-01-15T22:30:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", timeutil.FormatDate(evening))

	offset, err := ParseTimestamp("2024-01-15T22:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", offset.UTC().Format(timeutil.DateLayout))
	assert.Equal(t, 17, offset.In(ny).Hour())
}

func TestTimestampUnmarshalDate(t *testing.T) {
	require.NoError(t, timeutil.SetLocation(""))

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-31"`), &ts))
	assert.True(t, ts.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))

	assert.Error(t, json.Unmarshal([]byte(`"31/03/2024"`), &ts))
}
