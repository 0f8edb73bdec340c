package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Duration
		expected string
	}{
		{"zero", 0, "0 seconds"},
		{"seconds only", 42 * time.Second, "42 seconds"},
		{"single minute drops seconds", time.Minute + 5*time.Second, "1 minute"},
		{"hours and minutes", 2*time.Hour + 30*time.Minute, "2 hours, 30 minutes"},
		{"days", 49 * time.Hour, "2 days, 1 hour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.input))
		})
	}
}
