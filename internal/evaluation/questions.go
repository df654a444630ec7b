package evaluation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Question is one evaluation case. Keywords are matched
// case-insensitively against the produced answer; an empty list means
// the case only checks that an answer comes back at all.
type Question struct {
	Text     string   `yaml:"text"`
	Keywords []string `yaml:"keywords"`
	Depth    int      `yaml:"depth"`
}

type QuestionSet struct {
	Name      string     `yaml:"name"`
	Questions []Question `yaml:"questions"`
}

func LoadQuestionSet(path string) (*QuestionSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question set: %w", err)
	}

	var set QuestionSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("parse question set yaml: %w", err)
	}
	if len(set.Questions) == 0 {
		return nil, fmt.Errorf("question set %q contains no questions", path)
	}
	return &set, nil
}
