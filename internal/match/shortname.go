package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EmptyShortName is used when a name contains no usable characters.
const EmptyShortName = "unnamed"

// ShortName derives a target short name from a free-form source name.
// The pipeline:
// 1. Decompose (NFD) and drop the combining marks of Latin letters, so
// "Überwurf" -> "Uberwurf". Other scripts keep their marks.
// 2. Drop every rune that is not a letter, a digit or '_', in any script.
//
// Examples:
//   - "Main Body" -> "MainBody"
//   - "Bolt.1" -> "Bolt1"
//   - "Flansch-Ø20" -> "FlanschØ20"
//   - "Гайка М8" -> "ГайкаМ8"
func ShortName(name string) string {
	folded := stripDiacritics(name)

	var b strings.Builder

	b.Grow(len(folded))

	for _, r := range folded {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return EmptyShortName
	}

	return b.String()
}

func stripDiacritics(s string) string {
	// A mark belongs to the last base rune seen before it.
	var latin bool

	marks := runes.Predicate(func(r rune) bool {
		if unicode.Is(unicode.Mn, r) {
			return latin
		}

		latin = unicode.Is(unicode.Latin, r)

		return false
	})

	t := transform.Chain(norm.NFD, runes.Remove(marks), norm.NFC)

	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return result
}
