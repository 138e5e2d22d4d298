package transcript

import (
	"strings"
	"unicode"

	"github.com/rbright/raybot/internal/sentence"
)

// capitalizeSentenceStarts upper-cases the first letter of the text and of
// every word that follows a sentence boundary and whitespace.
func capitalizeSentenceStarts(text string) string {
	runes := []rune(text)
	out := make([]rune, 0, len(runes))

	atStart := true
	afterBoundary := false
	spaced := false

	for i, r := range runes {
		switch {
		case atStart && unicode.IsLetter(r):
			if capitalizable(runes, i) {
				r = unicode.ToUpper(r)
			}
			atStart, afterBoundary, spaced = false, false, false
		case afterBoundary:
			switch {
			case unicode.IsSpace(r):
				spaced = true
			case unicode.IsLetter(r):
				if spaced && capitalizable(runes, i) {
					r = unicode.ToUpper(r)
				}
				afterBoundary, spaced = false, false
			case unicode.IsDigit(r):
				afterBoundary, spaced = false, false
			case sentence.IsPrefixRune(r):
				// still waiting for the first letter, as in: . "quote"
			default:
				if !spaced {
					afterBoundary = false
				}
			}
		}

		out = append(out, r)

		if r == '.' || r == '!' || r == '?' {
			afterBoundary = sentence.Ends(runes, i)
			spaced = false
		}
	}

	return string(out)
}

func capitalizable(runes []rune, idx int) bool {
	end := idx
	for end < len(runes) && (unicode.IsLetter(runes[end]) || runes[end] == '.') {
		end++
	}
	token := strings.Trim(string(runes[idx:end]), ".")
	if token == "" {
		return true
	}
	return !sentence.KeepsLowercase(token)
}
