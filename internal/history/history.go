package history

import (
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/pickwise/internal/model"
)

// Result is the outcome of parsing a history text.
type Result struct {
	Draws []model.Combination
	// Dropped counts non-blank lines that did not match the draw pattern.
	Dropped int
}

// Parse splits text into lines and keeps the ones that are exactly length
// digits, in order. Non-blank lines that do not match are counted in Dropped;
// parsing never fails.
func Parse(text string, length int) Result {
	match := MatchLength(length)
	var res Result
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !match(line) {
			res.Dropped++
			continue
		}
		res.Draws = append(res.Draws, toCombination(line))
	}
	return res
}

// LoadFile reads a history file from path and parses it.
func LoadFile(path string, length int) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read history: %w", err)
	}
	return Parse(string(data), length), nil
}

func toCombination(line string) model.Combination {
	combo := make(model.Combination, len(line))
	for i := 0; i < len(line); i++ {
		combo[i] = int(line[i] - '0')
	}
	return combo
}
