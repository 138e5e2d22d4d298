package transcript

import (
	"fmt"
	"time"
)

// TimeLayout is the wall-clock stamp stored on every entry.
const TimeLayout = "15:04:05"

// Role identifies the speaker of an entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Entry is one immutable line of conversation.
type Entry struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Log is the ordered, append-only conversation record of one session.
// It is owned by the interview event loop and is not safe for concurrent use.
type Log struct {
	entries []Entry
}

// Append records content under role, stamped with at.
func (l *Log) Append(role Role, content string, at time.Time) (Entry, error) {
	if !role.Valid() {
		return Entry{}, fmt.Errorf("unknown transcript role %q", role)
	}
	entry := Entry{Role: role, Content: content, Timestamp: at.Format(TimeLayout)}
	l.entries = append(l.entries, entry)
	return entry, nil
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the log in conversation order.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Last returns the newest entry.
func (l *Log) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}
