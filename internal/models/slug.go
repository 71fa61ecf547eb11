package models

import (
	"regexp"
	"strings"
)

var (
	nonSlug     = regexp.MustCompile(`[^a-z0-9]+`)
	slugSymbols = strings.NewReplacer("+", " plus ", "#", " sharp ")
)

// Slug turns a display name into an element-safe identifier. "+" and "#"
// are spelled out so names like C++ and C# stay distinct.
func Slug(name string) string {
	s := slugSymbols.Replace(strings.ToLower(name))
	return strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
}
