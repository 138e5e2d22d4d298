package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves the config location and materializes a validated Config.
// A missing file is not an error: defaults apply and a warning says so.
// A questions_file replaces the inline question list.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}
	loaded := Loaded{Path: path, Config: Default()}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using defaults", path),
		})
		return loaded, nil
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	}
	loaded.Exists = true

	loaded.Config, loaded.Warnings, err = Parse(string(content), loaded.Config)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
	}

	if err := loaded.attachQuestionsFile(); err != nil {
		return Loaded{}, err
	}
	return loaded, nil
}

func (l *Loaded) attachQuestionsFile() error {
	file := l.Config.QuestionsFile
	if file == "" {
		return nil
	}

	questions, err := LoadQuestions(resolveQuestionsPath(l.Path, file))
	if err != nil {
		return err
	}
	if err := validateQuestions(questions); err != nil {
		return fmt.Errorf("questions_file %q: %w", file, err)
	}
	l.Config.Questions = questions
	return nil
}
