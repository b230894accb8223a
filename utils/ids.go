package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// NextSequentialID increments the numeric suffix of last, keeping prefix and
// a minimum width of three digits. "" yields prefix+"001".
func NextSequentialID(prefix, last string) string {
	n := 0
	if last != "" {
		suffix := strings.TrimPrefix(last, prefix)
		if v, err := strconv.Atoi(suffix); err == nil {
			n = v
		}
	}
	return fmt.Sprintf("%s%03d", prefix, n+1)
}
