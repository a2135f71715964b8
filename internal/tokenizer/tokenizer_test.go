package tokenizer

import (
	"errors"
	"testing"

	"github.com/pkoukk/tiktoken-go"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func TestCountDelegatesToCounter(t *testing.T) {
	tokens, err := Count(testCounter{}, "hello")
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if tokens != len([]rune("hello")) {
		t.Fatalf("expected %d tokens, got %d", len([]rune("hello")), tokens)
	}
	if _, nilErr := Count(nil, "hello"); nilErr == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestNewCounterSelectsName(t *testing.T) {
	testCases := []struct {
		model        string
		expectedName string
	}{
		{model: "", expectedName: DefaultModel},
		{model: " GPT-4o ", expectedName: "gpt-4o"},
		{model: "gpt-3.5-turbo", expectedName: "gpt-3.5-turbo"},
		{model: "claude-3-opus", expectedName: defaultEncodingName},
	}
	for _, testCase := range testCases {
		counter := NewCounter(Config{Model: testCase.model})
		if counter.Name() != testCase.expectedName {
			t.Fatalf("NewCounter(%q).Name() = %q, expected %q", testCase.model, counter.Name(), testCase.expectedName)
		}
	}
}

func TestCounterLoadsEncodingOnce(t *testing.T) {
	loadError := errors.New("offline")
	loadCalls := 0
	counter := newEncodingCounter(defaultEncodingName)
	counter.load = func() (*tiktoken.Tiktoken, error) {
		loadCalls++
		return nil, loadError
	}
	for attempt := 0; attempt < 3; attempt++ {
		if _, err := counter.CountString("text"); !errors.Is(err, loadError) {
			t.Fatalf("expected load error, got %v", err)
		}
	}
	if loadCalls != 1 {
		t.Fatalf("expected encoding to load once, loaded %d times", loadCalls)
	}
}
