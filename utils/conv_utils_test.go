package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type statusCode int32

func TestToBool(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected bool
	}{
		{"nil", nil, false},
		{"bool", true, true},
		{"int 1", 1, true},
		{"int64 0", int64(0), false},
		{"uint 1", uint(1), true},
		{"float", 0.5, true},
		{"string yes", "yes", true},
		{"string off", "off", false},
		{"string numeric", "2", true},
		{"string junk", "maybe", false},
		{"bytes", []byte("true"), true},
		{"named int", statusCode(3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToBool(tt.input))
		})
	}
}

func TestToInt64AndFloat64(t *testing.T) {
	assert.Equal(t, int64(42), ToInt64("42"))
	assert.Equal(t, int64(3), ToInt64("3.9"))
	assert.Equal(t, int64(7), ToInt64(uint16(7)))
	assert.Equal(t, int64(1), ToInt64(true))
	assert.Equal(t, int64(2), ToInt64(statusCode(2)))
	assert.Equal(t, int64(0), ToInt64("abc"))
	assert.Equal(t, 42, ToInt(int8(42)))

	assert.Equal(t, 1.5, ToFloat64("1.5"))
	assert.Equal(t, 3.0, ToFloat64(int32(3)))
	assert.Equal(t, 0.0, ToFloat64(nil))
	assert.Equal(t, 1.0, ToFloat64(true))
}

func TestToString(t *testing.T) {
	id := uuid.MustParse("8b7d3d3a-0c52-4a4b-9d6a-52f1f0e0b001")
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "12", ToString(int64(12)))
	assert.Equal(t, "1.25", ToString(1.25))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, id.String(), ToString(id))
	assert.Equal(t, "2024-03-01T10:00:00Z", ToString(ts))
}

func TestDeref(t *testing.T) {
	n := 5
	var nilPtr *int
	assert.Equal(t, 5, Deref(&n))
	assert.Nil(t, Deref(nilPtr))
	assert.Nil(t, Deref(nil))
	assert.Equal(t, "x", Deref("x"))
}
