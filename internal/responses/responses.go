// Package responses supplies the interviewer's unscripted replies.
//
// The interview machine asks a Provider for text and never decides content
// itself, so a real answer generator can replace the default pool without
// touching turn logic.
package responses

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
)

// ErrEmptyPool reports a pool provider built without follow-up lines.
var ErrEmptyPool = errors.New("response pool is empty")

// Provider returns the reply for a free-form user prompt.
type Provider interface {
	// FollowUp answers the single structured follow-up of a session.
	FollowUp(ctx context.Context, prompt string) (string, error)
	// Deflect answers a free-text panel question.
	Deflect(ctx context.Context, prompt string) (string, error)
}

// Pool picks follow-up replies uniformly at random from a fixed list and
// always deflects with the same line.
type Pool struct {
	mu         sync.Mutex
	followUps  []string
	deflection string
	intn       func(int) int
}

// PoolOption customizes a Pool.
type PoolOption func(*Pool)

// WithPicker replaces the random index source. Tests use it for determinism.
func WithPicker(intn func(int) int) PoolOption {
	return func(p *Pool) {
		if intn != nil {
			p.intn = intn
		}
	}
}

// NewPool builds a pool provider. Blank lines are dropped.
func NewPool(followUps []string, deflection string, opts ...PoolOption) *Pool {
	lines := make([]string, 0, len(followUps))
	for _, line := range followUps {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	p := &Pool{
		followUps:  lines,
		deflection: strings.TrimSpace(deflection),
		intn:       rand.IntN,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FollowUp returns one line from the pool.
func (p *Pool) FollowUp(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.followUps) == 0 {
		return "", ErrEmptyPool
	}
	p.mu.Lock()
	idx := p.intn(len(p.followUps))
	p.mu.Unlock()
	return p.followUps[idx], nil
}

// Deflect returns the configured deflection.
func (p *Pool) Deflect(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.deflection, nil
}

// Lines returns every line the pool can produce, deflection last.
func (p *Pool) Lines() []string {
	out := append([]string(nil), p.followUps...)
	if p.deflection != "" {
		out = append(out, p.deflection)
	}
	return out
}

// Funcs adapts plain functions to Provider.
type Funcs struct {
	FollowUpFunc func(ctx context.Context, prompt string) (string, error)
	DeflectFunc  func(ctx context.Context, prompt string) (string, error)
}

// FollowUp calls FollowUpFunc.
func (f Funcs) FollowUp(ctx context.Context, prompt string) (string, error) {
	if f.FollowUpFunc == nil {
		return "", errors.New("follow-up function is not configured")
	}
	return f.FollowUpFunc(ctx, prompt)
}

// Deflect calls DeflectFunc.
func (f Funcs) Deflect(ctx context.Context, prompt string) (string, error) {
	if f.DeflectFunc == nil {
		return "", errors.New("deflect function is not configured")
	}
	return f.DeflectFunc(ctx, prompt)
}
