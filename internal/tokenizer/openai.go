package tokenizer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

type encodingLoader func() (*tiktoken.Tiktoken, error)

type openAICounter struct {
	name     string
	load     encodingLoader
	once     *sync.Once
	encoding *tiktoken.Tiktoken
	loadErr  error
}

func newModelCounter(model string) *openAICounter {
	return &openAICounter{
		name: model,
		load: func() (*tiktoken.Tiktoken, error) {
			encoding, err := tiktoken.EncodingForModel(model)
			if err == nil && encoding != nil {
				return encoding, nil
			}
			fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
			if fallbackErr != nil {
				return nil, fmt.Errorf("initialize fallback tokenizer: %w", fallbackErr)
			}
			return fallback, nil
		},
		once: &sync.Once{},
	}
}

func newEncodingCounter(encodingName string) *openAICounter {
	return &openAICounter{
		name: encodingName,
		load: func() (*tiktoken.Tiktoken, error) {
			encoding, err := tiktoken.GetEncoding(encodingName)
			if err != nil {
				return nil, fmt.Errorf("initialize %s tokenizer: %w", encodingName, err)
			}
			return encoding, nil
		},
		once: &sync.Once{},
	}
}

func (counter *openAICounter) Name() string {
	return counter.name
}

func (counter *openAICounter) CountString(input string) (int, error) {
	counter.once.Do(func() {
		counter.encoding, counter.loadErr = counter.load()
	})
	if counter.loadErr != nil {
		return 0, counter.loadErr
	}
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	tokenIDs := counter.encoding.Encode(input, nil, nil)
	return len(tokenIDs), nil
}
