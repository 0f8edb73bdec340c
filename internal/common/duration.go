package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration formats a duration in human readable format (1 day, 2 hours, 3 minutes)
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0 seconds"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	parts = appendUnit(parts, days, "day")
	parts = appendUnit(parts, hours, "hour")
	parts = appendUnit(parts, minutes, "minute")

	// Seconds are noise once we are past the first minute
	if days == 0 && hours == 0 && minutes == 0 {
		parts = appendUnit(parts, seconds, "second")
	}

	return strings.Join(parts, ", ")
}

func appendUnit(parts []string, value int, unit string) []string {
	switch {
	case value <= 0:
		return parts
	case value == 1:
		return append(parts, fmt.Sprintf("1 %s", unit))
	default:
		return append(parts, fmt.Sprintf("%d %ss", value, unit))
	}
}
