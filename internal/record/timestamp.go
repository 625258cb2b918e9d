package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// naiveLayouts are the zone-less forms produced by the API (Python isoformat) and by
// datetime-local inputs.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

const naiveWireLayout = "2006-01-02T15:04:05"

// Timestamp is a point in time as sent by the API. The API stores wall-clock times in the
// event's local zone without an offset; such values are kept Naive and interpreted in the
// display location rather than converted from UTC.
type Timestamp struct {
	Time  time.Time
	Naive bool
}

// ParseTimestamp parses RFC 3339 or one of the naive layouts
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Naive: true}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// IsZero reports whether the timestamp is unset
func (ts Timestamp) IsZero() bool {
	return ts.Time.IsZero()
}

// In returns the wall-clock time in loc. Naive timestamps already are wall-clock times
// of the event zone and are reinterpreted without shifting.
func (ts Timestamp) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if ts.Naive {
		t := ts.Time
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	}
	return ts.Time.In(loc)
}

// Date returns midnight of the calendar day of ts in loc
func (ts Timestamp) Date(loc *time.Location) time.Time {
	t := ts.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// String formats the timestamp the way the API expects it back
func (ts Timestamp) String() string {
	if ts.IsZero() {
		return ""
	}
	if ts.Naive {
		return ts.Time.Format(naiveWireLayout)
	}
	return ts.Time.Format(time.RFC3339)
}

// MarshalJSON implements json.Marshaler
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp: %w", err)
	}
	if s == "" {
		*ts = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
