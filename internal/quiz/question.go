package quiz

import (
	"fmt"
	"strings"
)

// OptionCount is the number of options every question carries.
const OptionCount = 4

// Question is one prompt with its options and the index of the right answer.
type Question struct {
	ID      int      `toml:"id"`
	Prompt  string   `toml:"prompt"`
	Options []string `toml:"options"`
	Correct int      `toml:"correct"`
}

// Validate checks that every question is well formed.
func Validate(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("quiz: no questions")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("quiz: question %d has an empty prompt", i+1)
		}
		if len(q.Options) != OptionCount {
			return fmt.Errorf("quiz: question %d has %d options, want %d", i+1, len(q.Options), OptionCount)
		}
		if q.Correct < 0 || q.Correct >= OptionCount {
			return fmt.Errorf("quiz: question %d correct index %d out of range", i+1, q.Correct)
		}
	}
	return nil
}
