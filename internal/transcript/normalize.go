// Package transcript holds the append-only conversation log of an interview
// session, the normalizer applied to user utterances, and the pure renderers
// that project the log into live, final and exported views.
package transcript

import "strings"

// NormalizeOptions controls utterance normalization.
type NormalizeOptions struct {
	CapitalizeSentences bool
}

// Normalize collapses whitespace runs and, when enabled, applies sentence
// case and the standalone pronoun "I". Normalizing already-normalized text
// is a no-op.
func Normalize(text string, opts NormalizeOptions) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" || !opts.CapitalizeSentences {
		return collapsed
	}

	return capitalizePronounI(capitalizeSentenceStarts(collapsed))
}

// NormalizeSegments joins recognizer segments before normalizing them.
func NormalizeSegments(segments []string, opts NormalizeOptions) string {
	return Normalize(strings.Join(segments, " "), opts)
}
