package transcript

import "strings"

// Names maps roles to display names.
type Names struct {
	User      string
	Assistant string
}

// DefaultNames returns the labels used when none are configured.
func DefaultNames() Names {
	return Names{User: "You", Assistant: "Raybot"}
}

// For returns the display name for role.
func (n Names) For(role Role) string {
	switch role {
	case RoleAssistant:
		return n.Assistant
	case RoleUser:
		return n.User
	default:
		return string(role)
	}
}

// Line is one rendered transcript row.
type Line struct {
	Role    Role   `json:"role"`
	Name    string `json:"name"`
	Time    string `json:"time"`
	Content string `json:"content"`
}

// Render projects entries into display lines. It holds no state, so every
// view rendered from the same entries is identical.
func Render(entries []Entry, names Names) []Line {
	lines := make([]Line, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, Line{
			Role:    e.Role,
			Name:    names.For(e.Role),
			Time:    e.Timestamp,
			Content: e.Content,
		})
	}
	return lines
}

// Export formats entries as plain text: the header line, a blank line, then
// one "[time] Name:\ncontent\n\n" block per entry.
func Export(header string, entries []Entry, names Names) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, line := range Render(entries, names) {
		b.WriteString("[")
		b.WriteString(line.Time)
		b.WriteString("] ")
		b.WriteString(line.Name)
		b.WriteString(":\n")
		b.WriteString(line.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
