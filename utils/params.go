package utils

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// QueryBool returns nil when the key is absent, otherwise value == "true".
func QueryBool(r *http.Request, key string) *bool {
	q := r.URL.Query()
	if !q.Has(key) {
		return nil
	}
	val := q.Get(key) == "true"
	return &val
}

// QueryInt falls back to def when the value is missing or malformed.
func QueryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return def
	}
	return v
}

// DayRange parses "YYYY-MM-DD" (or any layout ParseTime accepts) and returns
// the local start and end of that calendar day.
func DayRange(value string) (time.Time, time.Time, error) {
	t, err := ParseTime(value)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	day := now.New(t)
	return day.BeginningOfDay(), day.EndOfDay(), nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts ISO strings as sent by browsers plus the short local forms.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, Invalid("time value is required")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Invalid("invalid time value %q", value)
}

// ContainsPattern builds a case-insensitive literal substring regex filter.
func ContainsPattern(search string) M {
	return M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
}
