// Package captions derives paced caption chunks from a spoken response.
//
// Chunks are a presentation view only: concatenating them in order always
// reproduces the input exactly, whitespace included.
package captions

import (
	"unicode"

	"github.com/rbright/raybot/internal/sentence"
)

// DefaultMaxChars is the longest chunk shown before clause or word splitting.
const DefaultMaxChars = 80

// Split breaks text into display chunks. Sentences are preferred; sentences
// longer than maxChars fall back to comma clauses, and clauses still longer
// than maxChars are halved at the word boundary nearest their midpoint.
func Split(text string, maxChars int) []string {
	if text == "" {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var chunks []string
	for _, s := range sentences([]rune(text)) {
		if len(s) <= maxChars {
			chunks = append(chunks, string(s))
			continue
		}
		for _, clause := range clauses(s) {
			for _, part := range halve(clause, maxChars) {
				chunks = append(chunks, string(part))
			}
		}
	}
	return chunks
}

// sentences cuts after each sentence terminator (plus trailing closers) and
// the whitespace run that follows it.
func sentences(runes []rune) [][]rune {
	return cutAfter(runes, func(i int) bool { return sentence.Ends(runes, i) })
}

// clauses cuts after commas, semicolons and colons followed by whitespace.
func clauses(runes []rune) [][]rune {
	return cutAfter(runes, func(i int) bool {
		switch runes[i] {
		case ',', ';', ':':
			return true
		default:
			return false
		}
	})
}

func cutAfter(runes []rune, isCut func(int) bool) [][]rune {
	var out [][]rune
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isCut(i) {
			continue
		}
		j := i + 1
		for j < len(runes) && sentence.IsPrefixRune(runes[j]) {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			continue
		}
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		out = append(out, runes[start:j])
		start = j
		i = j - 1
	}
	if start < len(runes) {
		out = append(out, runes[start:])
	}
	return out
}

// halve recursively splits runes at the whitespace run nearest the midpoint
// until every part fits maxChars or no interior word boundary remains.
func halve(runes []rune, maxChars int) [][]rune {
	if len(runes) <= maxChars {
		return [][]rune{runes}
	}
	cut := midpointCut(runes)
	if cut <= 0 || cut >= len(runes) {
		return [][]rune{runes}
	}
	left := halve(runes[:cut], maxChars)
	right := halve(runes[cut:], maxChars)
	return append(left, right...)
}

// midpointCut returns the index just after the interior whitespace run
// closest to the middle, or -1 when the text has no interior word boundary.
func midpointCut(runes []rune) int {
	first := 0
	for first < len(runes) && unicode.IsSpace(runes[first]) {
		first++
	}
	last := len(runes) - 1
	for last >= 0 && unicode.IsSpace(runes[last]) {
		last--
	}
	if first >= last {
		return -1
	}

	mid := len(runes) / 2
	best := -1
	bestDist := len(runes) + 1
	for i := first + 1; i < last; i++ {
		if !unicode.IsSpace(runes[i]) || unicode.IsSpace(runes[i-1]) {
			continue
		}
		dist := i - mid
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	if best < 0 {
		return -1
	}

	end := best
	for end < len(runes) && unicode.IsSpace(runes[end]) {
		end++
	}
	return end
}
