// Package slug turns post titles into lowercase, ASCII-only, hyphen-separated
// URL fragments.
package slug

import (
	"regexp"
	"strings"
)

var transliterations = strings.NewReplacer(
	"ş", "s", "Ş", "s",
	"ı", "i", "İ", "i",
	"ğ", "g", "Ğ", "g",
	"ü", "u", "Ü", "u",
	"ö", "o", "Ö", "o",
	"ç", "c", "Ç", "c",
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
	hyphenRuns = regexp.MustCompile(`-+`)
)

// Make returns the slug for title. The result matches
// ^[a-z0-9]+(-[a-z0-9]+)*$ or is empty; an empty result means the title has
// no sluggable characters and must be rejected by the caller.
func Make(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = transliterations.Replace(s)
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
