package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rbright/raybot/internal/ipc"
)

// Handle serves one IPC command. It must run on the machine's goroutine.
func (m *Machine) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		return m.respondData("status", m.Snapshot())
	case "start":
		return m.respondResult(m.Start(), "session starting")
	case "retry":
		return m.respondResult(m.Retry(), "reconnecting")
	case "ask":
		return m.respondResult(m.SelectQuestion(req.Arg(0)), "question selected")
	case "followup":
		return m.respondResult(m.SubmitFollowUp(textOf(req)), "follow-up submitted")
	case "listen":
		return m.respondResult(m.StartListening(), "listening")
	case "utter":
		return m.respondResult(m.CaptureResult(textOf(req)), "utterance captured")
	case "panel":
		return m.respondResult(m.SubmitPanel(textOf(req)), "panel question submitted")
	case "mode":
		err := m.SwitchMode(req.Arg(0))
		return m.respondResult(err, "input mode "+string(m.mode))
	case "replay":
		return m.respondResult(m.Replay(), "replaying")
	case "end":
		return m.respondResult(m.EndSession(), "close requested")
	case "reset":
		return m.respondResult(m.Reset(), "session reset")
	case "transcript":
		return ipc.Response{OK: true, State: string(m.state), Message: m.ExportText()}
	case "about":
		switch req.Arg(0) {
		case "", "open":
			m.OpenAbout()
			return ipc.Response{OK: true, State: string(m.state), Message: "about opened"}
		case "close":
			m.CloseAbout()
			return ipc.Response{OK: true, State: string(m.state), Message: "about closed"}
		default:
			return m.reject(fmt.Errorf("about expects open or close, got %q", req.Arg(0)))
		}
	case "resize":
		delta, err := strconv.Atoi(req.Arg(0))
		if err != nil {
			return m.reject(fmt.Errorf("resize expects an integer delta, got %q", req.Arg(0)))
		}
		return ipc.Response{OK: true, State: string(m.state), Message: fmt.Sprintf("pane height %d", m.ResizePane(delta))}
	case "questions":
		return m.respondData("questions", m.cfg.Questions)
	default:
		return m.reject(fmt.Errorf("unknown command: %s", req.Command))
	}
}

func (m *Machine) respondResult(err error, message string) ipc.Response {
	if err != nil {
		return m.reject(err)
	}
	return ipc.Response{OK: true, State: string(m.state), Message: message}
}

func (m *Machine) respondData(message string, v any) ipc.Response {
	data, err := json.Marshal(v)
	if err != nil {
		return m.reject(fmt.Errorf("encode %s: %w", message, err))
	}
	return ipc.Response{OK: true, State: string(m.state), Message: message, Data: data}
}

func (m *Machine) reject(err error) ipc.Response {
	return ipc.Response{OK: false, State: string(m.state), Error: err.Error()}
}

// textOf prefers the request's Text field and falls back to joined args.
func textOf(req ipc.Request) string {
	if strings.TrimSpace(req.Text) != "" {
		return req.Text
	}
	return strings.Join(req.Args, " ")
}
