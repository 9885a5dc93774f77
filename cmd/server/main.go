package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"triage-desk/internal/config"
	"triage-desk/internal/db"
	"triage-desk/internal/facility"
	httpserver "triage-desk/internal/http"
	"triage-desk/internal/llm"
	"triage-desk/internal/logger"
	"triage-desk/internal/triage"
)

func main() {
	logger.SetupLogging()
	log := logger.NewLogger("Main")

	cfg, err := config.Read()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read environment")
	}

	// Collaborator clients. The reasoning and transcription backends share
	// credentials and endpoint; the timeout applies per call.
	timeout := time.Duration(cfg.LLMTimeoutSecs) * time.Second
	reasoning := llm.NewGroqClient(llm.Config{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.ReasoningModel,
		Timeout: timeout,
	})
	whisper := llm.NewWhisperClient(llm.Config{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.WhisperModel,
	})

	// Facility search, with an optional redis geocode cache.
	var cache *facility.GeocodeCache
	if cfg.RedisHost != "" {
		cache = facility.NewGeocodeCache(cfg.RedisHost+":"+cfg.RedisPort, logger.NewLogger("GeocodeCache"))
		log.Info().Msg("geocode caching enabled")
	}
	nominatim := facility.NewNominatimClient(cfg.NominatimURL, cfg.NominatimUserAgent, logger.NewLogger("Nominatim"))
	engine := facility.NewEngine(nominatim, nominatim, cache, logger.NewLogger("FacilityEngine"))

	// Optional referral persistence.
	var repo *db.Repository
	var notifier *db.Notifier
	if cfg.DatabaseURL != "" {
		dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := dbConn.PingContext(ctx); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("failed to ping database")
		}
		cancel()
		if err := db.Migrate(context.Background(), dbConn); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		repo = db.NewRepository(dbConn)
		notifier = db.NewNotifier(dbConn, "referral_alerts")
		log.Info().Msg("referral persistence enabled")
	}

	svc := triage.NewService(reasoning, whisper, engine, logger.NewLogger("TriageService"))
	srv := httpserver.NewServer(svc, engine, repo, notifier, logger.NewLogger("HTTP"))

	handler := withCORS(srv.Routes())

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("listening")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// withCORS allows browser frontends to talk to the API directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
