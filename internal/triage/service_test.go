package triage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage-desk/pkg"
)

const relevantVerdict = `{"is_relevant": true, "reason": "medical"}`

// routedLLM answers the relevance gate with accept and the triage call with
// the given response, mirroring the two backend round-trips of one analysis.
func routedLLM(triageResponse string, triageErr error) *fakeLLM {
	return &fakeLLM{complete: func(prompt string) (string, error) {
		if strings.Contains(prompt, "relevance classification") {
			return relevantVerdict, nil
		}
		return triageResponse, triageErr
	}}
}

func TestAnalyzeEmergency(t *testing.T) {
	client := routedLLM(`{
		"chief_complaint": "crushing chest pain",
		"urgency_score": 9,
		"red_flags": [{"flag_type": "cardiac", "description": "ACS pattern", "urgency_level": "immediate", "action_required": "call ambulance"}],
		"recommended_specialty": "Cardiology",
		"emergency_detected": true,
		"action_required": "Call emergency services immediately"
	}`, nil)
	svc := NewService(client, nil, nil, zerolog.Nop())

	outcome, err := svc.Analyze(context.Background(), "I have crushing chest pressure and pain radiating to arm")
	require.NoError(t, err)
	assert.Equal(t, FailureNone, outcome.Failure)
	assert.Equal(t, 9, outcome.Result.UrgencyScore)
	assert.Equal(t, pkg.CategoryImmediate, outcome.Result.TriageCategory)
	assert.True(t, outcome.Result.EmergencyDetected)
	assert.Equal(t, "Cardiology", outcome.Result.RecommendedSpecialty)

	// The screener's hits are surfaced to the model inside the triage prompt.
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[1], "EMERGENCY KEYWORDS DETECTED")
	assert.Contains(t, client.prompts[1], "crushing chest pressure")
}

func TestAnalyzeRoutine(t *testing.T) {
	client := routedLLM(`{
		"chief_complaint": "mild headache",
		"urgency_score": 2,
		"recommended_specialty": "General Medicine",
		"emergency_detected": false,
		"action_required": "Rest and hydrate"
	}`, nil)
	svc := NewService(client, nil, nil, zerolog.Nop())

	outcome, err := svc.Analyze(context.Background(), "mild headache since this morning")
	require.NoError(t, err)
	assert.Equal(t, pkg.CategoryStandard, outcome.Result.TriageCategory)
	assert.False(t, outcome.Result.EmergencyDetected)
	assert.NotContains(t, client.prompts[1], "EMERGENCY KEYWORDS DETECTED")
}

func TestAnalyzeRelevanceRejection(t *testing.T) {
	client := &fakeLLM{complete: func(prompt string) (string, error) {
		if strings.Contains(prompt, "relevance classification") {
			return `{"is_relevant": false, "reason": "about the weather"}`, nil
		}
		t.Fatal("triage call must not run after rejection")
		return "", nil
	}}
	svc := NewService(client, nil, nil, zerolog.Nop())

	outcome, err := svc.Analyze(context.Background(), "what is the weather today")
	assert.ErrorIs(t, err, ErrNotRelevant)
	assert.Equal(t, FailureRelevanceRejected, outcome.Failure)
	assert.Len(t, client.prompts, 1)
}

func TestAnalyzeBackendFailure(t *testing.T) {
	// A failed reasoning call degrades into the neutral fallback. The
	// emergency bit is false here even with screener hits in the text; only
	// the parse-failure path carries the screener signal.
	client := routedLLM("", errors.New("upstream timeout"))
	svc := NewService(client, nil, nil, zerolog.Nop())

	outcome, err := svc.Analyze(context.Background(), "chest pain for an hour")
	require.NoError(t, err)
	assert.Equal(t, FailureBackendUnavailable, outcome.Failure)
	assert.Equal(t, 5, outcome.Result.UrgencyScore)
	assert.Equal(t, pkg.CategoryStandard, outcome.Result.TriageCategory)
	assert.False(t, outcome.Result.EmergencyDetected)
	assert.Equal(t, "upstream timeout", outcome.Result.Error)
	assert.Equal(t, "chest pain for an hour", outcome.Result.ChiefComplaint)
}

func TestAnalyzeParseFailurePreservesScreenerFlag(t *testing.T) {
	client := routedLLM("The patient is probably fine, no JSON for you.", nil)
	svc := NewService(client, nil, nil, zerolog.Nop())

	outcome, err := svc.Analyze(context.Background(), "severe bleeding from my leg")
	require.NoError(t, err)
	assert.Equal(t, FailureParseFailed, outcome.Failure)
	assert.Equal(t, 5, outcome.Result.UrgencyScore)
	assert.True(t, outcome.Result.EmergencyDetected)
	assert.Equal(t, parseErrorMessage, outcome.Result.Error)
}

func TestAnalyzeParseFailureWithoutScreenerHits(t *testing.T) {
	client := routedLLM("```json\nbroken", nil)
	svc := NewService(client, nil, nil, zerolog.Nop())

	outcome, err := svc.Analyze(context.Background(), "my knee aches a bit")
	require.NoError(t, err)
	assert.Equal(t, FailureParseFailed, outcome.Failure)
	assert.False(t, outcome.Result.EmergencyDetected)
}

func TestAnalyzeFencedResponse(t *testing.T) {
	client := routedLLM("```json\n{\"chief_complaint\": \"sore throat\", \"urgency_score\": 3}\n```", nil)
	svc := NewService(client, nil, nil, zerolog.Nop())

	outcome, err := svc.Analyze(context.Background(), "sore throat")
	require.NoError(t, err)
	assert.Equal(t, FailureNone, outcome.Failure)
	assert.Equal(t, "sore throat", outcome.Result.ChiefComplaint)
	assert.Equal(t, 3, outcome.Result.UrgencyScore)
}

type fakeTranscriber struct {
	voice pkg.VoiceInput
	err   error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _, _, _ string) (pkg.VoiceInput, error) {
	return f.voice, f.err
}

func TestVoiceTriage(t *testing.T) {
	client := routedLLM(`{"chief_complaint": "fever", "urgency_score": 4}`, nil)
	tr := &fakeTranscriber{voice: pkg.VoiceInput{
		TranscribedText: "I have had a fever for two days",
		Language:        "hi",
		Confidence:      0.91,
	}}
	svc := NewService(client, tr, nil, zerolog.Nop())

	voice, outcome, err := svc.VoiceTriage(context.Background(), "/tmp/clip.wav", "hi")
	require.NoError(t, err)
	assert.Equal(t, "I have had a fever for two days", voice.TranscribedText)
	assert.Equal(t, 4, outcome.Result.UrgencyScore)
}

func TestVoiceTriageNoSpeech(t *testing.T) {
	client := routedLLM("", nil)
	tr := &fakeTranscriber{voice: pkg.VoiceInput{TranscribedText: "   "}}
	svc := NewService(client, tr, nil, zerolog.Nop())

	_, _, err := svc.VoiceTriage(context.Background(), "/tmp/clip.wav", "en")
	assert.ErrorIs(t, err, ErrNoSpeech)
	assert.Empty(t, client.prompts)
}

func TestVoiceTriageTranscriberError(t *testing.T) {
	client := routedLLM("", nil)
	tr := &fakeTranscriber{err: errors.New("decode failed")}
	svc := NewService(client, tr, nil, zerolog.Nop())

	_, _, err := svc.VoiceTriage(context.Background(), "/tmp/clip.wav", "en")
	assert.EqualError(t, err, "decode failed")
}

func TestVoiceTriageNotConfigured(t *testing.T) {
	svc := NewService(routedLLM("", nil), nil, nil, zerolog.Nop())
	_, _, err := svc.VoiceTriage(context.Background(), "/tmp/clip.wav", "en")
	assert.Error(t, err)
}
