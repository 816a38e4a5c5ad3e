package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration accepts a Go duration string ("45s", "1m30s") or a bare
// integer, which is read as a number of seconds.
func ParseDuration(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if seconds, err := strconv.Atoi(input); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("invalid duration %q: must not be negative", input)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	duration, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format: %q\n\nValid formats:\n"+
			"• seconds as a plain number (e.g. '30')\n"+
			"• Go duration (e.g. '45s', '2m', '1m30s')", input)
	}
	if duration < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", input)
	}
	return duration, nil
}
