package captions

// Cursor tracks which cue of the current utterance is on screen.
type Cursor struct {
	cues []Cue
	pos  int
}

// NewCursor positions a cursor before the first cue.
func NewCursor(cues []Cue) *Cursor {
	return &Cursor{cues: cues, pos: -1}
}

// Advance moves to the next cue and returns it.
func (c *Cursor) Advance() (Cue, bool) {
	if c == nil || c.pos+1 >= len(c.cues) {
		return Cue{}, false
	}
	c.pos++
	return c.cues[c.pos], true
}

// Position returns the index of the cue on screen, or -1 before the first.
func (c *Cursor) Position() int {
	if c == nil {
		return -1
	}
	return c.pos
}

// Len returns the number of cues in the utterance.
func (c *Cursor) Len() int {
	if c == nil {
		return 0
	}
	return len(c.cues)
}

// Done reports whether the last cue has been shown.
func (c *Cursor) Done() bool {
	return c == nil || c.pos >= len(c.cues)-1
}
