package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the reasoning-backend boundary. It takes a fully rendered prompt
// and returns the model's raw text; everything downstream of the raw text
// (fence stripping, parsing, validation) belongs to the triage package.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config carries the reasoning-backend settings shared by the chat and audio
// clients. Groq exposes an OpenAI-compatible API, so one SDK covers both.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// GroqClient calls Groq's chat completion API for medical reasoning. The low
// temperature and bounded output length are fixed per call, not per request.
type GroqClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewGroqClient constructs a reasoning client. A zero Timeout defaults to 30
// seconds; temperature defaults to 0.1 and max tokens to 2048, which keeps
// the model deterministic enough for structured medical output.
func NewGroqClient(cfg Config) *GroqClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}
	oaCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &GroqClient{
		client:      openai.NewClientWithConfig(oaCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Complete sends the prompt as a single user message and returns the model's
// response text.
func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("groq client not initialized")
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelInfo describes the reasoning backend for the /models endpoint.
func (c *GroqClient) ModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"model":       c.model,
		"provider":    "Groq Cloud",
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"capabilities": []string{
			"Medical reasoning",
			"Symptom analysis",
			"Urgency assessment",
			"Red flag detection",
			"Multilingual support",
		},
	}
}
