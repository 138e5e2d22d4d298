// Package hypr dispatches Hyprland notifications through hyprctl.
package hypr

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Notification icons understood by `hyprctl dispatch notify`.
const (
	IconWarning = 0
	IconInfo    = 1
	IconHint    = 2
	IconError   = 3
	IconConfuse = 4
	IconOK      = 5
)

// DefaultColor is used when a notification has no color.
const DefaultColor = "rgb(89b4fa)"

// Notification is one `dispatch notify` payload.
type Notification struct {
	Icon      int
	TimeoutMS int
	Color     string
	Text      string
}

// Notify shows n, replacing nothing: callers dismiss first when needed.
func Notify(ctx context.Context, n Notification) error {
	color := strings.TrimSpace(n.Color)
	if color == "" {
		color = DefaultColor
	}
	if n.TimeoutMS <= 0 {
		return fmt.Errorf("notify timeout must be > 0, got %d", n.TimeoutMS)
	}
	return run(ctx, "--quiet", "dispatch", "notify",
		strconv.Itoa(n.Icon),
		strconv.Itoa(n.TimeoutMS),
		color,
		n.Text,
	)
}

// DismissNotify dismisses all active Hyprland notifications.
func DismissNotify(ctx context.Context) error {
	return run(ctx, "--quiet", "dispatch", "dismissnotify")
}

func run(ctx context.Context, args ...string) error {
	out, err := exec.CommandContext(ctx, "hyprctl", args...).CombinedOutput()
	if err == nil {
		return nil
	}
	if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
		return fmt.Errorf("hyprctl %v failed: %w (%s)", args, err, trimmed)
	}
	return fmt.Errorf("hyprctl %v failed: %w", args, err)
}
