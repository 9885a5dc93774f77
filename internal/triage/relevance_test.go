package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// fakeLLM routes each completion through a caller-supplied function, so one
// fake can answer the relevance gate and the triage call differently by
// looking at the prompt.
type fakeLLM struct {
	complete func(prompt string) (string, error)
	prompts  []string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.complete(prompt)
}

func TestIsRelevantAccepts(t *testing.T) {
	client := &fakeLLM{complete: func(string) (string, error) {
		return `{"is_relevant": true, "reason": "mentions a symptom"}`, nil
	}}
	filter := NewRelevanceFilter(client, zerolog.Nop())
	assert.True(t, filter.IsRelevant(context.Background(), "I have a headache"))
}

func TestIsRelevantRejects(t *testing.T) {
	client := &fakeLLM{complete: func(string) (string, error) {
		return `{"is_relevant": false, "reason": "about a car"}`, nil
	}}
	filter := NewRelevanceFilter(client, zerolog.Nop())
	assert.False(t, filter.IsRelevant(context.Background(), "my car is broken"))
}

func TestIsRelevantDefaultsTrueOnBackendError(t *testing.T) {
	client := &fakeLLM{complete: func(string) (string, error) {
		return "", errors.New("connection refused")
	}}
	filter := NewRelevanceFilter(client, zerolog.Nop())
	assert.True(t, filter.IsRelevant(context.Background(), "I feel dizzy"))
}

func TestIsRelevantDefaultsTrueOnGarbage(t *testing.T) {
	client := &fakeLLM{complete: func(string) (string, error) {
		return "Sure! I'd be happy to classify that for you.", nil
	}}
	filter := NewRelevanceFilter(client, zerolog.Nop())
	assert.True(t, filter.IsRelevant(context.Background(), "I feel dizzy"))
}

func TestIsRelevantPromptContainsText(t *testing.T) {
	client := &fakeLLM{complete: func(string) (string, error) {
		return `{"is_relevant": true, "reason": "ok"}`, nil
	}}
	filter := NewRelevanceFilter(client, zerolog.Nop())
	filter.IsRelevant(context.Background(), "stomach cramps after eating")
	assert.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], `"stomach cramps after eating"`)
}
