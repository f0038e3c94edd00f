package core

import (
	"strings"
	"time"
)

// NowFunc returns the current time; swapped out in tests.
var NowFunc = time.Now

// Now returns the current time as epoch milliseconds, the timestamp format
// persisted on every record.
func Now() int64 {
	return NowFunc().UnixNano() / int64(time.Millisecond)
}

// CleanString trims all leading and trailing white space in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}
