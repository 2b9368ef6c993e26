package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04PM",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var monthLayouts = []string{
	"2006-01",
	"1/2006",
	"Jan 2006",
	"January 2006",
	"Jan, 2006",
	"January, 2006",
}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// ParseDate parses s with the accepted date and date-time layouts. Values
// without an explicit offset are interpreted in loc (UTC when nil).
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsDateOnly reports whether a parsed value should be matched as a whole day:
// it falls on midnight and the raw input had no time separator.
func IsDateOnly(t time.Time, raw string) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 && !strings.Contains(raw, ":")
}

// ParseMonth parses month-precision input such as "2020-01" or "Jan 2020"
// and returns the first instant of that month in loc.
func ParseMonth(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range monthLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseYear parses a bare four digit year.
func ParseYear(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if !yearPattern.MatchString(s) {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1 {
		return time.Time{}, false
	}
	return time.Date(y, time.January, 1, 0, 0, 0, 0, loc), true
}

// ParseBool accepts true/false, yes/no, 1/0 in any case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true, true
	case "false", "no", "0", "off":
		return false, true
	}
	return false, false
}

// ParseInt parses a base 10 integer, tolerating surrounding whitespace.
func ParseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil
}

// ParseFloat parses a decimal number, tolerating surrounding whitespace.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// ParseUUID parses the canonical and braced/urn UUID forms.
func ParseUUID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	return id, err == nil
}
