package captions

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Pacing controls chunk size and on-screen duration.
type Pacing struct {
	MaxChars int
	PerChar  time.Duration
	MinChunk time.Duration
}

// DefaultPacing approximates conversational speech rate.
func DefaultPacing() Pacing {
	return Pacing{
		MaxChars: DefaultMaxChars,
		PerChar:  55 * time.Millisecond,
		MinChunk: 1200 * time.Millisecond,
	}
}

// Cue is one caption chunk scheduled relative to the start of an utterance.
type Cue struct {
	Index    int
	Text     string
	Offset   time.Duration
	Duration time.Duration
}

// Display returns the chunk without surrounding whitespace.
func (c Cue) Display() string {
	return strings.TrimSpace(c.Text)
}

// Duration returns how long a chunk stays on screen: proportional to its
// visible length, floored at MinChunk.
func (p Pacing) Duration(chunk string) time.Duration {
	d := time.Duration(utf8.RuneCountInString(strings.TrimSpace(chunk))) * p.PerChar
	if d < p.MinChunk {
		return p.MinChunk
	}
	return d
}

// Plan chunks text and lays the chunks end to end.
func (p Pacing) Plan(text string) []Cue {
	chunks := Split(text, p.MaxChars)
	cues := make([]Cue, 0, len(chunks))
	var offset time.Duration
	for i, chunk := range chunks {
		d := p.Duration(chunk)
		cues = append(cues, Cue{Index: i, Text: chunk, Offset: offset, Duration: d})
		offset += d
	}
	return cues
}

// Total is the full display time of a plan.
func Total(cues []Cue) time.Duration {
	if len(cues) == 0 {
		return 0
	}
	last := cues[len(cues)-1]
	return last.Offset + last.Duration
}

// Join concatenates cue texts in order.
func Join(cues []Cue) string {
	var b strings.Builder
	for _, c := range cues {
		b.WriteString(c.Text)
	}
	return b.String()
}
