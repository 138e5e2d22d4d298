package interview

// OpenAbout shows the about modal. It never touches in-flight work.
func (m *Machine) OpenAbout() {
	m.modalOpen = true
	m.view.SetModal(true)
}

// CloseAbout hides the about modal.
func (m *Machine) CloseAbout() {
	m.modalOpen = false
	m.view.SetModal(false)
}

// ResizePane grows or shrinks the transcript pane by delta rows, clamped
// to the configured bounds, and returns the new height.
func (m *Machine) ResizePane(delta int) int {
	h := min(max(m.paneHeight+delta, m.cfg.Pane.MinHeight), m.cfg.Pane.MaxHeight)
	m.paneHeight = h
	m.view.SetPaneHeight(h)
	return h
}
