// Package progress formats remaining-time estimates.
package progress

import (
	"fmt"
	"time"
)

// Remaining estimates the time left when the task at index (0-based) of total
// is about to start and every task takes perTask.
func Remaining(index, total int, perTask time.Duration) time.Duration {
	left := total - index
	if left < 0 {
		left = 0
	}
	return time.Duration(left) * perTask
}

// Clock formats d as HH:MM:SS, rounding down to whole seconds. Hours are not
// wrapped at 24.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	s := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s%3600/60, s%60)
}

// Label is the remaining-time label printed on progress lines.
func Label(d time.Duration) string {
	return Clock(d) + " remaining"
}
