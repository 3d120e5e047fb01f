package graph

import "fmt"

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes renders a byte count scaled to the largest unit where the
// value is at least 1, with one decimal place. Zero is "0 B".
func FormatBytes(n int64) string {
	if n == 0 {
		return "0 B"
	}
	value := float64(n)
	unit := 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, byteUnits[unit])
}
