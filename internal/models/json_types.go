package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stock-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

func init() {
	// Money and quantities go out as JSON numbers, matching what clients already send
	decimal.MarshalJSONWithoutQuotes = true
}

// Optional records whether a JSON key was present, and whether it was null
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// Some builds a present, non-null Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// RawNumber keeps the literal text of a JSON number or numeric string.
// Parsing is deferred so malformed values can be reported per field.
type RawNumber string

func (n *RawNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = ""
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	*n = RawNumber(strings.TrimSpace(s))
	return nil
}

func (n RawNumber) String() string {
	return string(n)
}

func (n RawNumber) IsEmpty() bool {
	return n == ""
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp accepts RFC 3339, naive ISO datetimes and plain dates
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("date must be a string")
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp tries each accepted layout in turn; values without an offset are read in the business zone
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, timeutil.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
