package app

import "fmt"

// FormatTime renders seconds as MM:SS. Minutes are not capped at 59.
func FormatTime(totalSeconds int) string {
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
