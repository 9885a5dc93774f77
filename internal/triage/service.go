package triage

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"triage-desk/internal/llm"
	"triage-desk/pkg"
)

// ErrNotRelevant is returned when the relevance gate rejects the input. It
// is the only pipeline failure propagated as an error; everything else
// degrades into a fallback result.
var ErrNotRelevant = errors.New("input does not appear to be medically relevant")

// ErrNoSpeech is returned when transcription produced no usable text.
var ErrNoSpeech = errors.New("no speech detected in audio")

// Outcome pairs a triage result with the failure mode, if any, that shaped
// it. Failure is FailureNone on a clean run; a degraded run still carries a
// well-typed, actionable result.
type Outcome struct {
	Result  pkg.TriageResult
	Failure FailureReason
}

// Service runs the triage pipeline: screener and relevance gate, prompt
// construction, the reasoning call, normalization and result building, and
// referral assembly on top. One instance is shared across requests; all its
// state is read-only configuration.
type Service struct {
	llm         llm.Client
	transcriber llm.Transcriber
	relevance   *RelevanceFilter
	facilities  FacilityRecommender
	log         zerolog.Logger
}

// NewService wires the pipeline. transcriber and facilities may be nil when
// voice input or facility search are not configured.
func NewService(client llm.Client, transcriber llm.Transcriber, facilities FacilityRecommender, log zerolog.Logger) *Service {
	return &Service{
		llm:         client,
		transcriber: transcriber,
		relevance:   NewRelevanceFilter(client, log),
		facilities:  facilities,
		log:         log,
	}
}

// Analyze runs the full text pipeline. The screener and the relevance gate
// both see the raw text; the screener's findings feed the prompt, the gate
// decides whether the expensive analysis runs at all. Backend and parse
// failures degrade into the fixed fallback result instead of erroring.
func (s *Service) Analyze(ctx context.Context, text string) (Outcome, error) {
	detected := Screen(text)

	if !s.relevance.IsRelevant(ctx, text) {
		return Outcome{Failure: FailureRelevanceRejected}, ErrNotRelevant
	}

	raw, err := s.llm.Complete(ctx, BuildTriagePrompt(text, detected))
	if err != nil {
		// The screener result is deliberately not consulted here; only the
		// parse-failure path below carries it.
		s.log.Error().Err(err).Msg("reasoning backend call failed")
		fallback := FallbackAssessment(text, false, err.Error())
		return Outcome{Result: BuildResult(fallback, text), Failure: FailureBackendUnavailable}, nil
	}

	parsed, reason := Normalize(raw)
	if reason != FailureNone {
		s.log.Error().Str("reason", string(reason)).Str("raw", raw).Msg("could not parse model assessment")
		fallback := FallbackAssessment(text, len(detected) > 0, parseErrorMessage)
		return Outcome{Result: BuildResult(fallback, text), Failure: reason}, nil
	}

	result := BuildResult(parsed, text)
	s.log.Info().
		Int("urgency_score", result.UrgencyScore).
		Str("category", string(result.TriageCategory)).
		Bool("emergency", result.EmergencyDetected).
		Msg("triage assessment complete")
	return Outcome{Result: result}, nil
}

// VoiceTriage transcribes the audio file at audioPath and runs the text
// pipeline on the transcript. The caller owns the audio file and must remove
// it on every exit path.
func (s *Service) VoiceTriage(ctx context.Context, audioPath, language string) (pkg.VoiceInput, Outcome, error) {
	if s.transcriber == nil {
		return pkg.VoiceInput{}, Outcome{}, errors.New("transcription not configured")
	}
	voice, err := s.transcriber.Transcribe(ctx, audioPath, language, "")
	if err != nil {
		return pkg.VoiceInput{}, Outcome{}, err
	}
	if strings.TrimSpace(voice.TranscribedText) == "" {
		return voice, Outcome{}, ErrNoSpeech
	}
	outcome, err := s.Analyze(ctx, voice.TranscribedText)
	return voice, outcome, err
}

// ReasoningInfo exposes the reasoning model description when the underlying
// client provides one.
func (s *Service) ReasoningInfo() map[string]interface{} {
	if c, ok := s.llm.(interface{ ModelInfo() map[string]interface{} }); ok {
		return c.ModelInfo()
	}
	return map[string]interface{}{}
}

// TranscriberInfo exposes the transcription model description when
// configured.
func (s *Service) TranscriberInfo() map[string]interface{} {
	if c, ok := s.transcriber.(interface{ ModelInfo() map[string]interface{} }); ok {
		return c.ModelInfo()
	}
	return map[string]interface{}{}
}
