package dataset

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile("[^a-z0-9 ]")

// Fold reduces a label to its comparison key: lower case, no accents, no
// punctuation and single spaces. "Conta Própria (PNAD, milhões)" becomes
// "conta propria pnad milhoes".
func Fold(s string) string {
	s = strings.ToLower(s)

	// Remove acentos
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, s)

	// Separadores viram espaço, pontuação some
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '_' || r == '/':
			return ' '
		case strings.ContainsRune(".,;:!?-", r):
			return -1
		}
		return r
	}, s)
	s = nonAlnum.ReplaceAllString(s, "")

	return strings.Join(strings.Fields(s), " ")
}

// ContainsFolded reports whether needle occurs in haystack once both are folded.
func ContainsFolded(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}
