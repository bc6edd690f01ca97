package property

import (
	"strings"
	"unicode"
)

// Lowercase words inside a title, unless first or last.
var smallWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "but": true, "or": true, "nor": true, "for": true, "so": true, "yet": true,
	"at": true, "by": true, "in": true, "of": true, "off": true, "on": true,
	"per": true, "to": true, "up": true, "via": true,
}

var romanNumerals = map[string]bool{
	"ii": true, "iii": true, "iv": true, "vi": true, "vii": true, "viii": true, "ix": true, "xi": true, "xii": true,
}

// TitleCase normalizes a shouting or inconsistent subdivision name:
// "VILLAGES OF JUPITER BY THE SEA" -> "Villages of Jupiter by the Sea".
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		lower := strings.ToLower(w)
		switch {
		case romanNumerals[lower]:
			words[i] = strings.ToUpper(w)
		case smallWords[lower] && i > 0 && i < len(words)-1:
			words[i] = lower
		default:
			words[i] = capitalizeParts(lower)
		}
	}
	return strings.Join(words, " ")
}

// capitalizeParts upper-cases the first letter of the word and of every
// hyphen- or slash-separated part.
func capitalizeParts(w string) string {
	r := []rune(w)
	upperNext := true
	for i, c := range r {
		if upperNext && unicode.IsLetter(c) {
			r[i] = unicode.ToUpper(c)
			upperNext = false
			continue
		}
		if c == '-' || c == '/' || c == '(' {
			upperNext = true
		} else if unicode.IsLetter(c) || unicode.IsDigit(c) {
			upperNext = false
		}
	}
	return string(r)
}
