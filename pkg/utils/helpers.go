package utils

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a duration string like "250ms", falling back to def
// when it is empty, malformed or not positive.
func ParseDuration(d string, def time.Duration) time.Duration {
	if d == "" {
		return def
	}
	duration, err := time.ParseDuration(strings.TrimSpace(d))
	if err != nil || duration <= 0 {
		return def
	}
	return duration
}

// ParseLimit parses a positive integer query value, falling back to def.
func ParseLimit(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
