package domain

import (
	"fmt"
	"math"
	"time"
)

// FormatClock renders a minutes/seconds pair as MM:SS.
func FormatClock(minutes, seconds int) string {
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// FormatTimeLeft renders a remaining duration as MM:SS, or as -MM:SS of the
// overrun once the countdown has passed zero.
func FormatTimeLeft(d time.Duration) string {
	if d < 0 {
		over := int(-d.Seconds())
		return "-" + FormatClock(over/60, over%60)
	}
	secs := int(d.Seconds())
	return FormatClock(secs/60, secs%60)
}

// ProgressBarWidth maps a percentage onto a bar of the given width in cells.
// The percentage is not clamped, so an overrun yields a bar wider than width.
func ProgressBarWidth(percent float64, width int) int {
	if width <= 0 || math.IsNaN(percent) || math.IsInf(percent, 0) {
		return 0
	}
	return int(math.Round(percent / 100 * float64(width)))
}
