package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	reInt = regexp.MustCompile(`^[+-]?[0-9]{1,9}$`)
)

const maxSearchLen = 100

// Int parses a small base-10 integer.
func Int(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !reInt.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// Page falls back to 1 for anything that is not a positive integer.
func Page(s string) int {
	n, ok := Int(s)
	if !ok || n < 1 {
		return 1
	}
	return n
}

// PerPage falls back to 10 and clamps to 100.
func PerPage(s string) int {
	n, ok := Int(s)
	if !ok || n < 1 {
		return 10
	}
	if n > 100 {
		return 100
	}
	return n
}

// Month accepts 1-12.
func Month(s string) (int, bool) {
	n, ok := Int(s)
	return n, ok && n >= 1 && n <= 12
}

// Year accepts 1-9999.
func Year(s string) (int, bool) {
	n, ok := Int(s)
	return n, ok && n >= 1 && n <= 9999
}

// Search trims the term, strips control characters and caps its length.
func Search(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	if r := []rune(s); len(r) > maxSearchLen {
		s = string(r[:maxSearchLen])
	}
	return s
}
