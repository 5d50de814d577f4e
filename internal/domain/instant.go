package domain

import (
	"encoding/json"
	"time"
)

// Campaign dates arrive in whatever shape the original document store
// (or a kiosk's export file) produced: native times, ISO-8601 strings,
// or timestamp objects carrying epoch seconds. ParseInstant is the
// single place that absorbs this heterogeneity; the reconciler only
// ever sees a (time.Time, bool) pair.

// Timestamp mirrors the document-store timestamp export shape.
type Timestamp struct {
	Seconds     int64
	Nanoseconds int32
}

// AsTime converts the timestamp to a time.Time in UTC.
func (ts Timestamp) AsTime() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanoseconds)).UTC()
}

// TimeConvertible is satisfied by timestamp-like values exposing a
// zero-argument conversion method (Timestamp above, protobuf
// timestamps, and similar).
type TimeConvertible interface {
	AsTime() time.Time
}

// instantLayouts are tried in order when parsing date strings.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseInstant normalizes a DateLike value to a single instant.
// It returns false for nil, zero times, unparseable strings, and any
// shape it does not recognize. It never panics.
func ParseInstant(v any) (time.Time, bool) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return validInstant(d)
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return validInstant(*d)
	case string:
		for _, layout := range instantLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return validInstant(t)
			}
		}
		return time.Time{}, false
	case TimeConvertible:
		return validInstant(d.AsTime())
	case map[string]any:
		// Document-store JSON export: {"seconds": 1700000000, ...}.
		if secs, ok := numeric(d["seconds"]); ok {
			return validInstant(time.Unix(int64(secs), 0).UTC())
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func validInstant(t time.Time) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// StartOfDay returns 00:00:00.000 of the instant's calendar day, in
// the instant's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of the instant's calendar day, in the
// instant's own location. Millisecond precision matches the source
// platform, and makes date-window checks inclusive of the whole end
// day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// InstantKey normalizes a DateLike value to its canonical string form.
// Distinct representations of the same instant produce the same key.
func InstantKey(v any) (string, bool) {
	t, ok := ParseInstant(v)
	if !ok {
		return "", false
	}
	return t.UTC().Format(time.RFC3339Nano), true
}

// EndDateKey is the canonical form of an end date, used as the
// auto-pause idempotency fingerprint.
func EndDateKey(v any) (string, bool) {
	return InstantKey(v)
}
