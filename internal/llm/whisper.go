package llm

import (
	"context"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"triage-desk/pkg"
)

// Transcriber is the speech-to-text boundary. The audio lives in a
// request-scoped file owned by the caller; the caller is responsible for
// removing it on every exit path.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language, prompt string) (pkg.VoiceInput, error)
}

// supportedLanguages maps the 22 official Indic languages (plus English) to
// the ISO codes Whisper understands.
var supportedLanguages = map[string]string{
	"hindi":     "hi",
	"english":   "en",
	"bengali":   "bn",
	"telugu":    "te",
	"marathi":   "mr",
	"tamil":     "ta",
	"gujarati":  "gu",
	"urdu":      "ur",
	"kannada":   "kn",
	"odia":      "or",
	"malayalam": "ml",
	"punjabi":   "pa",
	"assamese":  "as",
	"nepali":    "ne",
	"sanskrit":  "sa",
	"konkani":   "gom",
	"manipuri":  "mni",
	"bodo":      "brx",
	"dogri":     "doi",
	"kashmiri":  "ks",
	"maithili":  "mai",
	"santali":   "sat",
}

// SupportedLanguages returns a copy of the language name to ISO code map.
func SupportedLanguages() map[string]string {
	out := make(map[string]string, len(supportedLanguages))
	for name, code := range supportedLanguages {
		out[name] = code
	}
	return out
}

// LanguageName resolves an ISO code back to a display name, falling back to
// the upper-cased code for anything unknown.
func LanguageName(code string) string {
	for name, c := range supportedLanguages {
		if c == code {
			return strings.ToUpper(name[:1]) + name[1:]
		}
	}
	return strings.ToUpper(code)
}

// WhisperClient transcribes audio through the Groq/OpenAI audio API.
type WhisperClient struct {
	client *openai.Client
	model  string
}

// NewWhisperClient constructs a transcription client sharing the reasoning
// backend's credentials and endpoint.
func NewWhisperClient(cfg Config) *WhisperClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}
	return &WhisperClient{
		client: openai.NewClientWithConfig(oaCfg),
		model:  cfg.Model,
	}
}

// Transcribe runs speech-to-text on the audio file at audioPath. language is
// an ISO code hint and may be empty for auto-detection; prompt optionally
// steers the transcription vocabulary.
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath, language, prompt string) (pkg.VoiceInput, error) {
	start := time.Now()
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Language: language,
		Prompt:   prompt,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return pkg.VoiceInput{}, err
	}

	lang := resp.Language
	if lang == "" {
		lang = language
	}

	// Whisper reports no direct confidence; derive one from the per-segment
	// average log-probabilities.
	var confidence float64
	if n := len(resp.Segments); n > 0 {
		var sum float64
		for _, seg := range resp.Segments {
			sum += math.Exp(seg.AvgLogprob)
		}
		confidence = sum / float64(n)
	}

	return pkg.VoiceInput{
		TranscribedText: strings.TrimSpace(resp.Text),
		Language:        lang,
		Confidence:      confidence,
		ProcessingTime:  time.Since(start).Seconds(),
	}, nil
}

// ModelInfo describes the transcription backend for the /models endpoint.
func (c *WhisperClient) ModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"model":               c.model,
		"supported_languages": len(supportedLanguages),
	}
}
