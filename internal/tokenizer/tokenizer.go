package tokenizer

import (
	"errors"
	"strings"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model string
}

const (
	// DefaultModel is used when no model is configured.
	DefaultModel        = "gpt-4o"
	defaultEncodingName = "o200k_base"
)

var errNilCounter = errors.New("nil tokenizer counter")

// NewCounter returns a Counter for the requested model. Encodings are loaded on first use,
// so construction never touches the network; unknown models count with o200k_base.
func NewCounter(cfg Config) Counter {
	model := strings.ToLower(strings.TrimSpace(cfg.Model))
	if model == "" {
		model = DefaultModel
	}
	if !isOpenAIModel(model) {
		return newEncodingCounter(defaultEncodingName)
	}
	return newModelCounter(model)
}

// Count returns the token count of input, or zero with an error when counting is unavailable.
func Count(counter Counter, input string) (int, error) {
	if counter == nil {
		return 0, errNilCounter
	}
	return counter.CountString(input)
}

func isOpenAIModel(model string) bool {
	prefixes := []string{
		"gpt-",
		"text-embedding",
		"davinci",
		"curie",
		"babbage",
		"ada",
		"code-",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
