package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayRange(t *testing.T) {
	require.NoError(t, SetLocation(""))

	day, err := ParseDate("2024-03-31")
	require.NoError(t, err)

	start, end := DayRange(day.Add(15 * time.Hour))
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, "2024-03-31", FormatDate(start))
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("31/03/2024")
	assert.Error(t, err)
}

func TestSetLocationUnknown(t *testing.T) {
	assert.Error(t, SetLocation("Nowhere/Atlantis"))
	assert.Equal(t, time.UTC, Location())
}
