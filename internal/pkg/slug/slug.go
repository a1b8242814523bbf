// Package slug derives URL-safe identifiers from titles and names.
package slug

import (
	"strconv"
	"strings"
	"unicode"
)

// Make lowercases s, replaces runs of non-alphanumerics with single hyphens,
// and trims leading/trailing hyphens. Returns "" if nothing survives.
func Make(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Exists reports whether a candidate slug is already taken.
type Exists func(candidate string) (bool, error)

// Unique derives a slug from s and disambiguates collisions with a numeric
// suffix: base, base-2, base-3, ... The caller's unique index remains the
// backstop under concurrent inserts.
func Unique(s string, taken Exists) (string, error) {
	base := Make(s)
	if base == "" {
		base = "item"
	}
	candidate := base
	for i := 2; ; i++ {
		ok, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !ok {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}
