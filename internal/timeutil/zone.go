package timeutil

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Common layouts
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006"
)

// business is the zone calendar days are cut in; UTC until SetLocation is called
var business atomic.Pointer[time.Location]

func init() {
	business.Store(time.UTC)
}

// SetLocation loads an IANA zone name ("Europe/Kyiv") as the business location
func SetLocation(name string) error {
	if name == "" {
		business.Store(time.UTC)
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load location %q: %w", name, err)
	}
	business.Store(loc)
	return nil
}

func Location() *time.Location {
	return business.Load()
}

// Now returns the current time in the business location
func Now() time.Time {
	return time.Now().In(Location())
}

// ParseDate parses a YYYY-MM-DD value as midnight in the business location
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Location())
}

// StartOfDay returns 00:00:00 of t's calendar day in the business location
func StartOfDay(t time.Time) time.Time {
	l := t.In(Location())
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, Location())
}

// DayRange returns the half-open interval [start, next start) covering t's day
func DayRange(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// FormatDate formats t as a calendar date in the business location
func FormatDate(t time.Time) string {
	return t.In(Location()).Format(DateLayout)
}
