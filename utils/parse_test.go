package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)

	tests := []struct {
		input    string
		loc      *time.Location
		expected time.Time
		dateOnly bool
	}{
		{"2024-03-01", nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"3/1/2024", est, time.Date(2024, 3, 1, 0, 0, 0, 0, est), true},
		{"Mar 1, 2024", nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-01 00:00", nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{"2024-03-01T10:30:00", nil, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), false},
		{"2024-03-01T10:30:00-05:00", nil, time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC), false},
		{"3/1/2024 2:15 PM", nil, time.Date(2024, 3, 1, 14, 15, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input, tt.loc)
			require.True(t, ok)
			assert.True(t, tt.expected.Equal(got), "got %v", got)
			assert.Equal(t, tt.dateOnly, IsDateOnly(got, tt.input))
		})
	}

	for _, bad := range []string{"", "tomorrow", "2024-13-45", "12"} {
		_, ok := ParseDate(bad, nil)
		assert.False(t, ok, bad)
	}
}

func TestParseMonthAndYear(t *testing.T) {
	m, ok := ParseMonth("Feb 2023", nil)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), m)

	m, ok = ParseMonth("2023-11", nil)
	require.True(t, ok)
	assert.Equal(t, time.November, m.Month())

	_, ok = ParseMonth("2023", nil)
	assert.False(t, ok)

	y, ok := ParseYear("1999", nil)
	require.True(t, ok)
	assert.Equal(t, 1999, y.Year())

	_, ok = ParseYear("99", nil)
	assert.False(t, ok)
}

func TestParseScalars(t *testing.T) {
	b, ok := ParseBool("Yes")
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = ParseBool("perhaps")
	assert.False(t, ok)

	n, ok := ParseInt(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)
	_, ok = ParseInt("1.5")
	assert.False(t, ok)

	f, ok := ParseFloat("1.5")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	id, ok := ParseUUID("{8b7d3d3a-0c52-4a4b-9d6a-52f1f0e0b001}")
	assert.True(t, ok)
	assert.Equal(t, "8b7d3d3a-0c52-4a4b-9d6a-52f1f0e0b001", id.String())
	_, ok = ParseUUID("nope")
	assert.False(t, ok)
}
