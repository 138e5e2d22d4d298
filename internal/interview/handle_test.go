package interview

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rbright/raybot/internal/config"
	"github.com/rbright/raybot/internal/eventloop"
	"github.com/rbright/raybot/internal/fsm"
	"github.com/rbright/raybot/internal/ipc"
	"github.com/stretchr/testify/require"
)

func TestHandleStatus(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.m.Handle(context.Background(), ipc.Request{Command: "status"})
	require.True(t, resp.OK)
	require.Equal(t, "idle", resp.State)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(resp.Data, &snap))
	require.Equal(t, "session-1", snap.SessionID)
	require.Equal(t, fsm.StateIdle, snap.State)
	require.Equal(t, 300, snap.TimeRemaining)
	require.Equal(t, -1, snap.CaptionIndex)
	require.True(t, snap.Affordances.Start)
}

func TestHandleCommands(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	resp := h.m.Handle(ctx, ipc.Request{Command: "ask", Args: []string{"q9"}})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "unknown question")

	resp = h.m.Handle(ctx, ipc.Request{Command: "ask", Args: []string{"q1"}})
	require.True(t, resp.OK)
	require.Equal(t, "connecting", resp.State)
	h.untilFollowUpWindow()

	resp = h.m.Handle(ctx, ipc.Request{Command: "mode", Args: []string{"keyboard"}})
	require.True(t, resp.OK)
	require.Equal(t, "input mode keyboard", resp.Message)

	resp = h.m.Handle(ctx, ipc.Request{Command: "followup", Text: "what did you learn"})
	require.True(t, resp.OK)
	require.Equal(t, "thinking", resp.State)
	h.untilState(fsm.StateReady)

	resp = h.m.Handle(ctx, ipc.Request{Command: "followup", Args: []string{"one", "more"}})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, ErrFollowupUnavailable.Error())

	resp = h.m.Handle(ctx, ipc.Request{Command: "transcript"})
	require.True(t, resp.OK)
	require.Contains(t, resp.Message, "What did you learn")

	resp = h.m.Handle(ctx, ipc.Request{Command: "resize", Args: []string{"-2"}})
	require.True(t, resp.OK)
	require.Equal(t, "pane height 10", resp.Message)

	resp = h.m.Handle(ctx, ipc.Request{Command: "resize", Args: []string{"tall"}})
	require.False(t, resp.OK)

	resp = h.m.Handle(ctx, ipc.Request{Command: "about"})
	require.True(t, resp.OK)
	require.True(t, h.m.Snapshot().ModalOpen)

	resp = h.m.Handle(ctx, ipc.Request{Command: "about", Args: []string{"sideways"}})
	require.False(t, resp.OK)

	resp = h.m.Handle(ctx, ipc.Request{Command: "end"})
	require.True(t, resp.OK)
	require.Equal(t, "closing", resp.State)
}

func TestHandleQuestionsAndUnknown(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	resp := h.m.Handle(ctx, ipc.Request{Command: "questions"})
	require.True(t, resp.OK)
	var questions []config.Question
	require.NoError(t, json.Unmarshal(resp.Data, &questions))
	require.Len(t, questions, 2)
	require.Equal(t, "q1", questions[0].ID)

	resp = h.m.Handle(ctx, ipc.Request{Command: "dance"})
	require.False(t, resp.OK)
	require.Equal(t, "unknown command: dance", resp.Error)
}

func TestRuntimeServesFromLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capturer := &fakeCapturer{}
	rt := NewRuntime(eventloop.New(16), func(sched eventloop.Scheduler) *Machine {
		return New(testConfig(), sched, Deps{Capturer: capturer})
	})
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	resp := rt.HandleWithTimeout(ctx, ipc.Request{Command: "status"})
	require.True(t, resp.OK)
	require.Equal(t, "idle", resp.State)

	require.NoError(t, rt.Do(ctx, func(m *Machine) { m.ResizePane(1) }))
	snap, err := rt.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 13, snap.PaneHeight)

	// stale results are consumed on the loop and ignored
	rt.Deliver(CaptureResult{Generation: 99, Text: "hello"})
	text, err := rt.ExportText(ctx)
	require.NoError(t, err)
	require.Equal(t, "Raybot interview transcript\n\n", text)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runtime did not stop")
	}
}
