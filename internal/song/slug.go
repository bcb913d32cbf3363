package song

import (
	"regexp"
	"strings"
)

var slugRE = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify makes a lowercase, hyphen separated path key.
func Slugify(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "'", ""))
	s = slugRE.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
