package transcript

import (
	"unicode"
	"unicode/utf8"
)

// capitalizePronounI upper-cases every "i" that stands alone as a word,
// including the "i" of contractions such as "i'm" and "i’ll". Word
// boundaries are ASCII, so an "i" next to a non-ASCII letter counts as
// standalone. Dotted tokens such as "i.e." and "a.i." keep their case.
func capitalizePronounI(text string) string {
	var out []byte
	for k := 0; k < len(text); k++ {
		if text[k] != 'i' || !standaloneByte(text, k) || dottedI(text, k) {
			continue
		}
		if out == nil {
			out = []byte(text)
		}
		out[k] = 'I'
	}
	if out == nil {
		return text
	}
	return string(out)
}

func standaloneByte(text string, k int) bool {
	before := k == 0 || !isWordByte(text[k-1])
	after := k+1 == len(text) || !isWordByte(text[k+1])
	return before && after
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// dottedI reports whether the "i" at k belongs to a dotted token.
func dottedI(text string, k int) bool {
	next := k + 1
	if next+1 < len(text) && text[next] == '.' {
		r, _ := utf8.DecodeRuneInString(text[next+1:])
		if unicode.IsLetter(r) {
			return true
		}
	}

	if k > 1 && text[k-1] == '.' && next < len(text) && text[next] == '.' {
		r, _ := utf8.DecodeLastRuneInString(text[:k-1])
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
