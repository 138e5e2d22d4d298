package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// EnvPath names the environment variable that overrides the config location.
const EnvPath = "RAYBOT_CONFIG"

// ResolvePath applies CLI/env/XDG/home fallback rules for config.jsonc location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	if env := strings.TrimSpace(os.Getenv(EnvPath)); env != "" {
		return env, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "raybot", "config.jsonc"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", "raybot", "config.jsonc"), nil
}
