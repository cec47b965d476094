package utils

import (
	"fmt"
	"math"
)

// FormatSRTTimestamp formats seconds as HH:MM:SS,mmm. Sub-millisecond
// precision is truncated, not rounded: 59.9996 -> 00:00:59,999. The small
// epsilon keeps values that are exact milliseconds (59.999) from losing one
// to float representation.
func FormatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(math.Floor(seconds*1000 + 1e-6))

	ms := totalMs % 1000
	totalSec := totalMs / 1000

	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	s := totalSec % 60

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
