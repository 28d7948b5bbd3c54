package utils

import (
	"strconv"
)

// minimumRelease is the oldest release --release still accepts.
const minimumRelease = 8

// ParseRelease parses a java release string into its feature number.
// Returns 0 for anything --release would reject.
func ParseRelease(r string) int {
	n, err := strconv.Atoi(r)
	if err != nil || n < minimumRelease {
		return 0
	}

	return n
}

// IsValidRelease reports whether the release string is usable
func IsValidRelease(r string) bool {
	return ParseRelease(r) > 0
}
