package interview

import "github.com/rbright/raybot/internal/captions"

// utter starts playback of text and paces its captions. done runs once the
// last caption has been on screen for its full duration.
func (m *Machine) utter(text string, done func()) error {
	cues := m.pacing.Plan(text)
	if err := m.speaker.Speak(m.ctx, text, captions.Total(cues)); err != nil {
		return err
	}
	m.play(cues, done)
	return nil
}

// utterSilently paces captions without audio.
func (m *Machine) utterSilently(text string, done func()) {
	m.play(m.pacing.Plan(text), done)
}

func (m *Machine) play(cues []captions.Cue, done func()) {
	m.utterGen++
	gen := m.utterGen
	m.cursor = captions.NewCursor(cues)
	m.showNextCue()

	for i := 1; i < len(cues); i++ {
		m.after(cues[i].Offset, func() {
			if gen == m.utterGen {
				m.showNextCue()
			}
		})
	}
	m.after(captions.Total(cues), func() {
		if gen != m.utterGen {
			return
		}
		m.cursor = nil
		m.view.ClearCaption()
		done()
	})
}

func (m *Machine) showNextCue() {
	cue, ok := m.cursor.Advance()
	if !ok {
		return
	}
	m.view.ShowCaption(cue.Display(), cue.Index, m.cursor.Len())
}
