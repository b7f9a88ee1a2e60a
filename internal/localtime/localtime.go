package localtime

import (
	"strings"
	"time"
)

// Date is a calendar date with no time or zone attached.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func DateOf(t time.Time) Date {
	return Date{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
	}
}

// Local departure times from the flight search API carry a "Z" suffix even
// though they are wall-clock times at the departure airport.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses a local timestamp and returns its wall-clock value in
// UTC, discarding any offset.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   s,
		Message: ": unable to parse local timestamp",
	}
}

const (
	isoDateLayout     = "2006-01-02"
	tequilaDateLayout = "02/01/2006"
)

// ParseDate accepts YYYY-MM-DD or DD/MM/YYYY.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(tequilaDateLayout, s)
}

func FormatISO(t time.Time) string {
	return t.Format(isoDateLayout)
}

// FormatTequila renders a date the way the flight search API expects it.
func FormatTequila(t time.Time) string {
	return t.Format(tequilaDateLayout)
}
