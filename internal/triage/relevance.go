package triage

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"triage-desk/internal/llm"
)

// RelevanceFilter gates the pipeline: it asks the reasoning backend whether
// the input concerns health at all, so clearly unrelated text is rejected
// before the expensive triage analysis.
type RelevanceFilter struct {
	llm llm.Client
	log zerolog.Logger
}

// NewRelevanceFilter constructs the filter around a reasoning client.
func NewRelevanceFilter(client llm.Client, log zerolog.Logger) *RelevanceFilter {
	return &RelevanceFilter{llm: client, log: log}
}

type relevanceVerdict struct {
	IsRelevant bool   `json:"is_relevant"`
	Reason     string `json:"reason"`
}

// IsRelevant reports whether text appears to concern health or symptoms.
// Every failure path (transport, malformed response) returns true: blocking
// a real patient is worse than analyzing irrelevant text.
func (f *RelevanceFilter) IsRelevant(ctx context.Context, text string) bool {
	raw, err := f.llm.Complete(ctx, BuildRelevancePrompt(text))
	if err != nil {
		f.log.Warn().Err(err).Msg("relevance check failed, assuming relevant")
		return true
	}
	var verdict relevanceVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &verdict); err != nil {
		f.log.Warn().Err(err).Str("raw", raw).Msg("relevance response unparseable, assuming relevant")
		return true
	}
	if !verdict.IsRelevant {
		f.log.Info().Str("reason", verdict.Reason).Msg("input rejected as not medically relevant")
	}
	return verdict.IsRelevant
}
