package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type questionsDocument struct {
	Questions []Question `yaml:"questions"`
}

// LoadQuestions reads a scripted question set from a YAML file. The file is
// either a bare list of {id, text, answer} mappings or a mapping with a
// top-level "questions" list.
func LoadQuestions(path string) ([]Question, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions %q: %w", path, err)
	}
	questions, err := ParseQuestions(content)
	if err != nil {
		return nil, fmt.Errorf("parse questions %q: %w", path, err)
	}
	return questions, nil
}

// ParseQuestions decodes YAML question content.
func ParseQuestions(content []byte) ([]Question, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("questions file is empty")
	}

	doc := root.Content[0]
	var questions []Question
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&questions); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var wrapped questionsDocument
		if err := doc.Decode(&wrapped); err != nil {
			return nil, err
		}
		questions = wrapped.Questions
	default:
		return nil, fmt.Errorf("line %d: expected a list of questions", doc.Line)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("questions file contains no questions")
	}
	return trimQuestions(questions), nil
}

// resolveQuestionsPath interprets a relative questions_file against the
// directory of the config file that named it.
func resolveQuestionsPath(configPath string, questionsFile string) string {
	questionsFile = strings.TrimSpace(questionsFile)
	if strings.HasPrefix(questionsFile, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, questionsFile[2:])
		}
	}
	if filepath.IsAbs(questionsFile) {
		return questionsFile
	}
	return filepath.Join(filepath.Dir(configPath), questionsFile)
}
