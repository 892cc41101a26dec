// internal/time_parser.go
// ------------------------
// Helpers for turning configuration strings and clock readings into the
// values the bridge works with.
//
// Functions:
// - ParseMaxAge: "30" (seconds, the historic format), "1m30s" or "" into a Duration.
// - DeviceID: the push-notification device id for a given instant.
// - IsInFuture: whether a time lies after now.
package internal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseMaxAge accepts a bare number of seconds or a Go duration string.
// An empty string is zero.
func ParseMaxAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if sec, err := strconv.Atoi(s); err == nil {
		if sec < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return time.Duration(sec) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// DeviceID formats <DDMMYY><last 6 digits of epoch ms>.
func DeviceID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return now.Format("020106") + ms
}

// IsInFuture reports whether t is after the current time.
func IsInFuture(t time.Time) bool {
	return t.After(time.Now())
}
