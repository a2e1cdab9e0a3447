package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{name: "zero", input: 0, expected: "0"},
		{name: "hundreds", input: 999, expected: "999"},
		{name: "exactly 1000", input: 1000, expected: "1.0K"},
		{name: "thousands", input: 1500, expected: "1.5K"},
		{name: "millions", input: 2500000, expected: "2.5M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatNumber(tt.input))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{name: "zero", input: 0, expected: "0s"},
		{name: "negative clamps", input: -time.Minute, expected: "0s"},
		{name: "seconds", input: 45 * time.Second, expected: "45s"},
		{name: "minutes", input: 90 * time.Second, expected: "1m 30s"},
		{name: "hours", input: 2*time.Hour + 5*time.Minute + 3*time.Second, expected: "2h 5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.input))
		})
	}
}

func TestFormatPercentAndPlural(t *testing.T) {
	assert.Equal(t, "75.0%", FormatPercent(75))
	assert.Equal(t, "12.3%", FormatPercent(12.34))
	assert.Equal(t, "1 action", Plural(1, "action"))
	assert.Equal(t, "3 actions", Plural(3, "action"))
	assert.Equal(t, "0 actions", Plural(0, "action"))
}

func TestColorize(t *testing.T) {
	SetColorEnabled(false)
	assert.Equal(t, "title", FormatHeaderTitle("title"))

	SetColorEnabled(true)
	defer SetColorEnabled(false)
	assert.Equal(t, ColorBold+ColorMagenta+"title"+ColorReset, FormatHeaderTitle("title"))
	assert.Equal(t, "plain", Colorize("plain"))
}

func TestPadAndBar(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, 5, GetDisplayWidth(PadRight("日本", 5)))
	assert.Equal(t, "█████░░░░░", FormatBar(50, 10))
	assert.Equal(t, "██████████", FormatBar(150, 10))
	assert.Equal(t, "", FormatBar(50, 0))
}
