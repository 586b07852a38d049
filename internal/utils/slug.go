package utils

import (
	"math/rand/v2"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	slugAlphabet     = "abcdefghijklmnopqrstuvwxyz0123456789"
	slugFallbackLen  = 6
	slugSuffixLen    = 4
	slugMaxBaseRunes = 100
)

// asciiFold decomposes accented characters and drops everything outside ASCII,
// so "Café Crème" becomes "Cafe Creme".
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// Slugify turns free text into a lowercase URL-safe token made of [a-z0-9_-].
// It returns an empty string when nothing usable is left.
func Slugify(value string) string {
	folded, _, err := transform.String(asciiFold, value)
	if err != nil {
		folded = value
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		}
	}

	slug := b.String()
	if len(slug) > slugMaxBaseRunes {
		slug = slug[:slugMaxBaseRunes]
	}
	return strings.Trim(slug, "-_")
}

// RandomString returns n characters drawn from [a-z0-9].
func RandomString(n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = slugAlphabet[rand.IntN(len(slugAlphabet))]
	}
	return string(buf)
}

// GenerateUniqueSlug derives a slug from seed and appends random suffixes until
// exists reports the candidate as free. It never persists anything; two callers
// racing on the same seed can both get the same answer, so the caller must rely
// on a unique index and retry on conflict.
func GenerateUniqueSlug(exists func(candidate string) (bool, error), seed string) (string, error) {
	base := Slugify(seed)
	if base == "" {
		base = RandomString(slugFallbackLen)
	}

	candidate := base
	for {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + RandomString(slugSuffixLen)
	}
}
