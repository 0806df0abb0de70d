package utils

import (
	"strings"
	"unicode"
)

// NormaliseText strips leading/trailing whitespace and collapses internal whitespace.
func NormaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// Slug lower-cases s and joins its words with "-", the form listing sites
// expect for a city in their URL paths ("New Delhi" -> "new-delhi").
func Slug(s string) string {
	return strings.ReplaceAll(NormaliseText(strings.ToLower(s)), " ", "-")
}
