// Package sentence classifies sentence boundaries in running text.
//
// Periods are ambiguous: abbreviations, decimals, initialisms and dotted
// tokens all contain them. The classifier errs on the side of "not a
// boundary" unless the following word gives strong evidence.
package sentence

import (
	"strings"
	"unicode"
)

type abbreviationKind uint8

const (
	abbreviationNonTerminal abbreviationKind = iota
	abbreviationAmbiguous
)

var (
	// lowercaseAbbreviations stay lowercase even when they open a sentence.
	lowercaseAbbreviations = map[string]struct{}{
		"e.g": {},
		"etc": {},
		"i.e": {},
		"vs":  {},
	}

	abbreviations = map[string]abbreviationKind{
		"e.g":    abbreviationNonTerminal,
		"i.e":    abbreviationNonTerminal,
		"cf":     abbreviationNonTerminal,
		"approx": abbreviationNonTerminal,
		"etc":    abbreviationAmbiguous,
		"vs":     abbreviationAmbiguous,

		"dr":   abbreviationNonTerminal,
		"mr":   abbreviationNonTerminal,
		"mrs":  abbreviationNonTerminal,
		"ms":   abbreviationNonTerminal,
		"prof": abbreviationNonTerminal,
		"sr":   abbreviationNonTerminal,
		"jr":   abbreviationNonTerminal,
		"st":   abbreviationNonTerminal,

		"dept": abbreviationNonTerminal,
		"fig":  abbreviationNonTerminal,
		"sec":  abbreviationNonTerminal,
		"ref":  abbreviationNonTerminal,

		"hr":   abbreviationNonTerminal,
		"hrs":  abbreviationNonTerminal,
		"min":  abbreviationNonTerminal,
		"mins": abbreviationNonTerminal,
		"yr":   abbreviationNonTerminal,
		"yrs":  abbreviationNonTerminal,
	}

	// boundaryPromoters are lowercase words that, after an ambiguous
	// abbreviation, almost always start a new sentence. Kept narrow so that
	// "etc. and" or "u.s. and" stay joined.
	boundaryPromoters = map[string]struct{}{
		"finally":   {},
		"however":   {},
		"meanwhile": {},
		"next":      {},
		"then":      {},
		"therefore": {},
	}

	pronounPromoters = map[string]struct{}{
		"he":   {},
		"i":    {},
		"it":   {},
		"she":  {},
		"they": {},
		"we":   {},
		"you":  {},
	}

	locatives = map[string]struct{}{
		"across":     {},
		"around":     {},
		"at":         {},
		"from":       {},
		"in":         {},
		"inside":     {},
		"near":       {},
		"outside":    {},
		"through":    {},
		"throughout": {},
		"to":         {},
		"within":     {},
	}
)

// Ends reports whether the rune at idx terminates a sentence. Question and
// exclamation marks always do; periods go through the classifier.
func Ends(runes []rune, idx int) bool {
	if idx < 0 || idx >= len(runes) {
		return false
	}
	switch runes[idx] {
	case '!', '?':
		return true
	case '.':
		return IsBoundaryPeriod(runes, idx)
	default:
		return false
	}
}

// IsBoundaryPeriod reports whether the period at idx ends a sentence.
func IsBoundaryPeriod(runes []rune, idx int) bool {
	if idx < 0 || idx >= len(runes) || runes[idx] != '.' {
		return false
	}
	if isDecimal(runes, idx) || isEmbedded(runes, idx) {
		return false
	}

	token := strings.ToLower(tokenBeforePeriod(runes, idx))
	if token == "" {
		return true
	}
	if kind, ok := abbreviations[token]; ok {
		if kind == abbreviationNonTerminal {
			return false
		}
		return nextWordPromotes(runes, idx, token)
	}
	if looksLikeInitialism(token) {
		return nextWordPromotes(runes, idx, token)
	}
	return true
}

// IsPrefixRune reports closing punctuation that may sit between a sentence
// terminator and the next word, as in `. "Quote`.
func IsPrefixRune(r rune) bool {
	switch r {
	case ')', ']', '}', '\'', '"', '’', '”':
		return true
	default:
		return false
	}
}

// KeepsLowercase reports abbreviations that are never capitalized.
func KeepsLowercase(token string) bool {
	_, ok := lowercaseAbbreviations[strings.ToLower(strings.Trim(token, "."))]
	return ok
}

func isDecimal(runes []rune, idx int) bool {
	if idx <= 0 || idx+1 >= len(runes) {
		return false
	}
	return unicode.IsDigit(runes[idx-1]) && unicode.IsDigit(runes[idx+1])
}

func isEmbedded(runes []rune, idx int) bool {
	if idx+1 >= len(runes) {
		return false
	}
	next := runes[idx+1]
	return unicode.IsLetter(next) || unicode.IsDigit(next) || next == '.'
}

func nextWordPromotes(runes []rune, idx int, token string) bool {
	start := nextWordStart(runes, idx+1)
	if start < 0 {
		return true
	}
	if unicode.IsUpper(runes[start]) {
		return true
	}

	word := strings.ToLower(wordAt(runes, start))
	if _, ok := boundaryPromoters[word]; ok {
		return true
	}
	if _, ok := pronounPromoters[word]; !ok {
		return false
	}
	return !(looksLikeInitialism(token) && locativeInitialism(runes, idx))
}

func wordAt(runes []rune, idx int) string {
	end := idx
	for end < len(runes) && unicode.IsLetter(runes[end]) {
		end++
	}
	return string(runes[idx:end])
}

func nextWordStart(runes []rune, from int) int {
	for i := from; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r), IsPrefixRune(r):
			continue
		case unicode.IsLetter(r):
			return i
		default:
			return -1
		}
	}
	return -1
}

// locativeInitialism detects "in the U.S. we ..." style continuations where
// the initialism closes a leading prepositional phrase rather than a sentence.
func locativeInitialism(runes []rune, idx int) bool {
	start := tokenStart(runes, idx)
	if start < 0 {
		return false
	}

	prev, prevStart := wordBefore(runes, start)
	if prev == "" {
		return false
	}
	if _, ok := locatives[prev]; ok {
		return leadsSentence(runes, prevStart)
	}
	if !isArticle(prev) || prevStart <= 0 {
		return false
	}

	prep, prepStart := wordBefore(runes, prevStart)
	if _, ok := locatives[prep]; !ok {
		return false
	}
	return leadsSentence(runes, prepStart)
}

func tokenStart(runes []rune, idx int) int {
	if idx <= 0 || idx >= len(runes) {
		return -1
	}
	i := idx - 1
	for i >= 0 && (unicode.IsLetter(runes[i]) || runes[i] == '.') {
		i--
	}
	return i + 1
}

func tokenBeforePeriod(runes []rune, idx int) string {
	start := tokenStart(runes, idx)
	if start < 0 {
		return ""
	}
	return strings.Trim(string(runes[start:idx]), ".")
}

func wordBefore(runes []rune, idx int) (string, int) {
	if idx <= 0 || idx > len(runes) {
		return "", -1
	}
	i := idx - 1
	for i >= 0 && !unicode.IsLetter(runes[i]) {
		i--
	}
	if i < 0 {
		return "", -1
	}
	end := i + 1
	for i >= 0 && unicode.IsLetter(runes[i]) {
		i--
	}
	return strings.ToLower(string(runes[i+1 : end])), i + 1
}

func isArticle(word string) bool {
	return word == "a" || word == "an" || word == "the"
}

func leadsSentence(runes []rune, wordStart int) bool {
	i := wordStart - 1
	for i >= 0 && (unicode.IsSpace(runes[i]) || IsPrefixRune(runes[i])) {
		i--
	}
	if i < 0 {
		return true
	}
	switch runes[i] {
	case '.', '!', '?':
		return true
	default:
		return false
	}
}

func looksLikeInitialism(token string) bool {
	if !strings.ContainsRune(token, '.') {
		return false
	}
	for _, part := range strings.Split(token, ".") {
		r := []rune(part)
		if len(r) != 1 || !unicode.IsLetter(r[0]) {
			return false
		}
	}
	return true
}
