package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// ErrAlreadyRunning reports that another owner process holds the socket.
var ErrAlreadyRunning = errors.New("raybot interview already running")

// RuntimeSocketPath returns the owner socket under XDG_RUNTIME_DIR.
func RuntimeSocketPath() (string, error) {
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, "raybot.sock"), nil
}

// Owner is the bound socket of the single interview owner. Closing it
// removes the socket file.
type Owner struct {
	net.Listener
	path string
}

// Path is the socket file the owner is bound to.
func (o *Owner) Path() string {
	return o.path
}

func (o *Owner) Close() error {
	err := o.Listener.Close()
	if rmErr := os.Remove(o.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}
	return err
}

// Acquire binds path as the owner socket. A socket left behind by a dead
// owner is unlinked and the bind retried; a live owner yields
// ErrAlreadyRunning. An owner that accepts but does not answer within
// probeTimeout is neither, and its socket is left alone.
func Acquire(ctx context.Context, path string, probeTimeout time.Duration, retries int) (*Owner, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure runtime socket dir: %w", err)
	}

	for attempt := 0; ; attempt++ {
		listener, err := net.Listen("unix", path)
		if err == nil {
			if err := os.Chmod(path, 0o600); err != nil {
				_ = listener.Close()
				return nil, fmt.Errorf("restrict socket %s: %w", path, err)
			}
			return &Owner{Listener: listener, path: path}, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listen unix %s: %w", path, err)
		}

		if attempt > retries {
			return nil, fmt.Errorf("failed to acquire socket %s after %d retries", path, retries)
		}
		if err := clearStale(ctx, path, probeTimeout); err != nil {
			return nil, err
		}
		if attempt == 0 {
			continue
		}

		backoff := time.NewTimer(time.Duration(25*attempt) * time.Millisecond)
		select {
		case <-ctx.Done():
			backoff.Stop()
			return nil, ctx.Err()
		case <-backoff.C:
		}
	}
}

func clearStale(ctx context.Context, path string, probeTimeout time.Duration) error {
	alive, err := Probe(ctx, path, probeTimeout)
	switch {
	case alive:
		return ErrAlreadyRunning
	case err != nil:
		return fmt.Errorf("probe existing socket %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket %s: %w", path, err)
	}
	return nil
}
