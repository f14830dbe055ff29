package format

import (
	"fmt"
	"math"
	"time"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
//
// Parameters:
//   - d: The duration to format.
//
// Returns:
//   - string: A formatted string representing the duration.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// FormatSeconds renders a layer time with one decimal, e.g. "12.3s".
// Zero, negative and non-finite values render as "0.0s".
func FormatSeconds(secs float64) string {
	if !(secs > 0) || math.IsInf(secs, 0) {
		return "0.0s"
	}
	return fmt.Sprintf("%.1fs", secs)
}

// FormatClock renders a total in seconds as HH:MM:SS, truncating fractions.
// Hours are not wrapped at 24.
func FormatClock(secs float64) string {
	if !(secs > 0) || math.IsInf(secs, 0) {
		return "00:00:00"
	}
	total := int64(secs)
	h, m, s := total/3600, (total%3600)/60, total%60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
