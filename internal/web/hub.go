// Package web exposes the interview to browsers: JSON commands over HTTP and
// a websocket stream of view-slot writes that a page binds its markup to.
package web

import (
	"log/slog"
	"sync"

	"github.com/rbright/raybot/internal/fsm"
	"github.com/rbright/raybot/internal/interview"
	"github.com/rbright/raybot/internal/transcript"
)

// Slot names on the wire.
const (
	SlotState       = "state"
	SlotTimer       = "timer"
	SlotStep        = "step"
	SlotMode        = "mode"
	SlotAffordances = "affordances"
	SlotCaption     = "caption"
	SlotTranscript  = "transcript"
	SlotFinal       = "final_transcript"
	SlotNotice      = "notice"
	SlotError       = "error"
	SlotModal       = "modal"
	SlotPane        = "pane"
)

// Event is one slot write.
type Event struct {
	Slot  string `json:"slot"`
	Value any    `json:"value"`
}

// StateValue is the payload of the state slot.
type StateValue struct {
	State fsm.State `json:"state"`
	Label string    `json:"label"`
}

// CaptionValue is the payload of the caption slot. An empty Text clears it.
type CaptionValue struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
	Total int    `json:"total"`
}

const subscriberBuffer = 64

// Hub fans slot writes out to websocket subscribers and remembers the last
// value of every slot so late subscribers start from the current page.
// Writes never block the interview loop: a subscriber that falls behind is
// dropped.
type Hub struct {
	logger *slog.Logger

	mu     sync.Mutex
	latest map[string]Event
	order  []string
	subs   map[*Subscriber]struct{}
}

// Subscriber receives events until its channel is closed.
type Subscriber struct {
	events chan Event
}

// Events is the subscriber's stream. It closes when the hub drops it.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

var _ interview.View = (*Hub)(nil)

// NewHub builds an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		logger: logger,
		latest: make(map[string]Event),
		subs:   make(map[*Subscriber]struct{}),
	}
}

// Subscribe registers a subscriber and returns the current slot values.
func (h *Hub) Subscribe() (*Subscriber, []Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{events: make(chan Event, subscriberBuffer)}
	h.subs[sub] = struct{}{}

	replay := make([]Event, 0, len(h.order))
	for _, slot := range h.order {
		replay = append(replay, h.latest[slot])
	}
	return sub, replay
}

// Unsubscribe removes sub. It is safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.events)
	}
}

// Latest returns the last value written to slot.
func (h *Hub) Latest(slot string) (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ev, ok := h.latest[slot]
	return ev, ok
}

func (h *Hub) publish(slot string, value any) {
	ev := Event{Slot: slot, Value: value}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.latest[slot]; !ok {
		h.order = append(h.order, slot)
	}
	h.latest[slot] = ev

	for sub := range h.subs {
		select {
		case sub.events <- ev:
		default:
			h.logger.Warn("dropping slow view subscriber", "slot", slot)
			delete(h.subs, sub)
			close(sub.events)
		}
	}
}

func (h *Hub) SetState(state fsm.State, label string) {
	h.publish(SlotState, StateValue{State: state, Label: label})
}

func (h *Hub) SetTimer(remaining int) {
	h.publish(SlotTimer, remaining)
}

func (h *Hub) SetStep(step int) {
	h.publish(SlotStep, step)
}

func (h *Hub) SetMode(mode interview.InputMode) {
	h.publish(SlotMode, mode)
}

func (h *Hub) SetAffordances(a interview.Affordances) {
	h.publish(SlotAffordances, a)
}

func (h *Hub) ShowCaption(text string, index int, total int) {
	h.publish(SlotCaption, CaptionValue{Text: text, Index: index, Total: total})
}

func (h *Hub) ClearCaption() {
	h.publish(SlotCaption, CaptionValue{Index: -1})
}

func (h *Hub) RenderTranscript(lines []transcript.Line) {
	h.publish(SlotTranscript, nonNil(lines))
}

func (h *Hub) RenderFinalTranscript(lines []transcript.Line) {
	h.publish(SlotFinal, nonNil(lines))
}

func (h *Hub) ShowNotice(text string) {
	h.publish(SlotNotice, text)
}

func (h *Hub) HideNotice() {
	h.publish(SlotNotice, "")
}

func (h *Hub) ShowError(message string) {
	h.publish(SlotError, message)
}

func (h *Hub) SetModal(open bool) {
	h.publish(SlotModal, open)
}

func (h *Hub) SetPaneHeight(rows int) {
	h.publish(SlotPane, rows)
}

func nonNil(lines []transcript.Line) []transcript.Line {
	if lines == nil {
		return []transcript.Line{}
	}
	return lines
}
