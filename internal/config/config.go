package config

import "github.com/kelseyhightower/envconfig"

// Config is the full process configuration, populated from the environment
// once at startup and passed down explicitly. DatabaseURL and the Redis
// settings are optional: with them unset the service runs without referral
// persistence and without geocode caching.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	GroqAPIKey     string `envconfig:"GROQ_API_KEY" required:"true"`
	GroqBaseURL    string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	ReasoningModel string `envconfig:"TRIAGE_REASONING_MODEL" default:"llama-3.3-70b-versatile"`
	WhisperModel   string `envconfig:"TRIAGE_WHISPER_MODEL" default:"whisper-large-v3"`
	LLMTimeoutSecs int    `envconfig:"TRIAGE_LLM_TIMEOUT_SECONDS" default:"30"`

	NominatimURL       string `envconfig:"TRIAGE_NOMINATIM_URL" default:"https://nominatim.openstreetmap.org"`
	NominatimUserAgent string `envconfig:"TRIAGE_NOMINATIM_USER_AGENT" default:"triage-desk"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	RedisHost string `envconfig:"TRIAGE_REDIS_HOST"`
	RedisPort string `envconfig:"TRIAGE_REDIS_PORT" default:"6379"`
}

// Read populates a Config from the environment.
func Read() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
