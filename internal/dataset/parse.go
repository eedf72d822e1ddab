package dataset

import (
	"strconv"
	"strings"
)

// ParseIntOr parses a count field, returning def for empty or
// unparseable values. Excel exports sometimes render counts as
// "12.0", so a float parse backstops the integer parse.
func ParseIntOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}

// IsBoolY reports whether the value is "Y" (case-insensitive).
func IsBoolY(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "Y")
}

// NotBlank reports whether the value carries data. Blank and
// whitespace-only cells are the null representation after binding.
func NotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
