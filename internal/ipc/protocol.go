package ipc

import "encoding/json"

// Request is one command sent to the owner process.
type Request struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Arg returns the i-th argument or "".
func (r Request) Arg(i int) string {
	if i < 0 || i >= len(r.Args) {
		return ""
	}
	return r.Args[i]
}

// Response is the owner's reply. Data carries a command-specific JSON payload.
type Response struct {
	OK      bool            `json:"ok"`
	State   string          `json:"state,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
