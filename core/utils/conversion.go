package utils

import (
	"strconv"
	"strings"
)

// SeasonYear parses a crop-season label such as "2024" into its year.
// Labels that are not a bare integer yield 0.
func SeasonYear(label string) int {
	year, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return 0
	}
	return year
}

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
