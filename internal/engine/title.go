package engine

import (
	"regexp"
	"strings"
)

// trailingYear matches "(1995)", "(1994-1998)" and open ranges like "(2007-)".
var trailingYear = regexp.MustCompile(`\((\d{4}(?:[-–]\d{0,4})?)\)\s*$`)

// SplitTitle separates a trailing parenthesised year from a movie title.
// Titles without one are returned unchanged with a nil year.
func SplitTitle(full string) (string, *string) {
	loc := trailingYear.FindStringSubmatchIndex(full)
	if loc == nil {
		return full, nil
	}
	year := full[loc[2]:loc[3]]
	title := strings.TrimSpace(full[:loc[0]])
	if title == "" {
		return full, nil
	}
	return title, &year
}
