package core

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// TimestampLayout is the wire format of every date stored or served: ISO-8601, UTC, second precision.
const TimestampLayout = "2006-01-02T15:04:05Z"

// DateLayout is the date-only input format, read as midnight UTC.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	DateLayout,
}

var ErrInvalidTimestamp = errors.New("invalid date")

// ParseTimestamp accepts a date (2006-01-02) or a date-time, with or without zone offset
// (no offset means UTC), and returns it in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrInvalidTimestamp, "parsing %q", s)
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Timestamp is a time.Time serialized with TimestampLayout. The zero Timestamp is serialized as null.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{t.UTC().Truncate(time.Second)}
}

// MustTimestamp parses s with ParseTimestamp and panics on failure. Meant for tests and constants.
func MustTimestamp(s string) Timestamp {
	t, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return NewTimestamp(t)
}

func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	return FormatTimestamp(ts.Time)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		ts.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(ErrInvalidTimestamp, "expecting a string")
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = NewTimestamp(t)
	return nil
}

// Value lets validators see a Timestamp as a time.Time, or as absent when zero.
func (ts Timestamp) Value() (driver.Value, error) {
	if ts.IsZero() {
		return nil, nil
	}
	return ts.Time, nil
}

// Ptr returns nil for the zero Timestamp.
func (ts Timestamp) Ptr() *time.Time {
	if ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}
