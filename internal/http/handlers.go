package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"triage-desk/internal/db"
	"triage-desk/internal/facility"
	"triage-desk/internal/llm"
	"triage-desk/internal/triage"
	"triage-desk/pkg"
)

// Server bundles the dependencies required by the HTTP handlers. Repo and
// Notifier are optional; with them nil the service runs without referral
// persistence.
type Server struct {
	Triage     *triage.Service
	Facilities *facility.Engine
	Repo       *db.Repository
	Notifier   *db.Notifier
	Log        zerolog.Logger
}

// NewServer constructs a Server.
func NewServer(svc *triage.Service, engine *facility.Engine, repo *db.Repository, notifier *db.Notifier, log zerolog.Logger) *Server {
	return &Server{
		Triage:     svc,
		Facilities: engine,
		Repo:       repo,
		Notifier:   notifier,
		Log:        log,
	}
}

// Routes builds the chi router for the API surface.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/triage/text", s.handleTriageText)
	r.Post("/triage/voice", s.handleTriageVoice)
	r.Post("/triage/referral", s.handleTriageReferral)
	r.Post("/facilities", s.handleFacilities)
	r.Get("/languages", s.handleLanguages)
	r.Get("/models", s.handleModels)
	r.Get("/health", s.handleHealth)
	r.Get("/referrals", s.handleListReferrals)
	r.Get("/referrals/{id}", s.handleGetReferral)
	return r
}

type triageRequest struct {
	Symptoms    string           `json:"symptoms"`
	Location    string           `json:"location,omitempty"`
	Coordinates *pkg.Coordinates `json:"coordinates,omitempty"`
	PatientID   string           `json:"patient_id,omitempty"`
}

type locationRequest struct {
	Location    string           `json:"location"`
	Coordinates *pkg.Coordinates `json:"coordinates,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, reason string) {
	writeJSON(w, status, errorResponse{Error: msg, Reason: reason})
}

// handleTriageText analyzes symptoms from text. When a location or
// coordinates accompany the request, a referral note with facility
// recommendations is assembled and (when persistence is configured) stored;
// the response body is the triage result either way.
func (s *Server) handleTriageText(w http.ResponseWriter, r *http.Request) {
	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if strings.TrimSpace(req.Symptoms) == "" {
		writeError(w, http.StatusBadRequest, "symptoms must not be empty", "")
		return
	}

	ctx := r.Context()
	if req.Location == "" && req.Coordinates == nil {
		outcome, err := s.Triage.Analyze(ctx, req.Symptoms)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error(), string(outcome.Failure))
			return
		}
		writeJSON(w, http.StatusOK, outcome.Result)
		return
	}

	note, outcome, err := s.Triage.CompleteTriage(ctx, req.Symptoms, req.Location, req.PatientID, req.Coordinates)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), string(outcome.Failure))
		return
	}
	s.storeReferral(r, &note)
	writeJSON(w, http.StatusOK, note.TriageResult)
}

// handleTriageReferral runs the full pipeline and returns the complete
// referral note, facilities included.
func (s *Server) handleTriageReferral(w http.ResponseWriter, r *http.Request) {
	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if strings.TrimSpace(req.Symptoms) == "" {
		writeError(w, http.StatusBadRequest, "symptoms must not be empty", "")
		return
	}
	if req.Location == "" && req.Coordinates == nil {
		writeError(w, http.StatusBadRequest, "location or coordinates required", "")
		return
	}

	note, outcome, err := s.Triage.CompleteTriage(r.Context(), req.Symptoms, req.Location, req.PatientID, req.Coordinates)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error(), string(outcome.Failure))
		return
	}
	s.storeReferral(r, &note)
	writeJSON(w, http.StatusOK, note)
}

// handleTriageVoice accepts a multipart audio upload, transcribes it, and
// runs the triage pipeline on the transcript. The uploaded audio lives in a
// request-scoped temp file that is removed on every exit path.
func (s *Server) handleTriageVoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form", "")
		return
	}
	file, _, err := r.FormFile("audio_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio_file is required", "")
		return
	}
	defer file.Close()

	language := normalizeLanguage(r.FormValue("language"))

	tmp, err := os.CreateTemp("", "triage-voice-*.wav")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not buffer audio", "")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, "could not buffer audio", "")
		return
	}
	if err := tmp.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, "could not buffer audio", "")
		return
	}

	voice, outcome, err := s.Triage.VoiceTriage(r.Context(), tmpPath, language)
	switch {
	case errors.Is(err, triage.ErrNoSpeech):
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	case errors.Is(err, triage.ErrNotRelevant):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), string(outcome.Failure))
		return
	case err != nil:
		s.Log.Error().Err(err).Msg("voice triage failed")
		writeError(w, http.StatusInternalServerError, "error processing voice input", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"voice_result":  voice,
		"triage_result": outcome.Result,
	})
}

// handleFacilities returns nearby healthcare facilities for a location,
// without a triage assessment.
func (s *Server) handleFacilities(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	ctx := r.Context()
	var center pkg.Coordinates
	if req.Coordinates != nil {
		center = *req.Coordinates
	} else {
		if strings.TrimSpace(req.Location) == "" {
			writeError(w, http.StatusBadRequest, "location or coordinates required", "")
			return
		}
		var err error
		center, err = s.Facilities.Locate(ctx, req.Location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not geocode location", "")
			return
		}
	}

	facilities, err := s.Facilities.Search(ctx, center, 10.0, "")
	if err != nil {
		s.Log.Error().Err(err).Msg("facility search failed")
		writeError(w, http.StatusInternalServerError, "error finding facilities", "")
		return
	}
	if facilities == nil {
		facilities = []pkg.FacilityInfo{}
	}
	writeJSON(w, http.StatusOK, facilities)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, llm.SupportedLanguages())
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"whisper":   s.Triage.TranscriberInfo(),
		"reasoning": s.Triage.ReasoningInfo(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"triage_agent":    readiness(s.Triage != nil),
		"facility_search": readiness(s.Facilities != nil),
		"persistence":     readiness(s.Repo != nil),
	}
	status := "healthy"
	if s.Triage == nil || s.Facilities == nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"services":  services,
	})
}

func (s *Server) handleGetReferral(w http.ResponseWriter, r *http.Request) {
	if s.Repo == nil {
		writeError(w, http.StatusNotFound, "referral persistence not configured", "")
		return
	}
	id := chi.URLParam(r, "id")
	note, err := s.Repo.GetReferral(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "referral not found", "")
			return
		}
		s.Log.Error().Err(err).Str("id", id).Msg("referral lookup failed")
		writeError(w, http.StatusInternalServerError, "error loading referral", "")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleListReferrals(w http.ResponseWriter, r *http.Request) {
	if s.Repo == nil {
		writeJSON(w, http.StatusOK, []pkg.ReferralNote{})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	notes, err := s.Repo.ListRecentReferrals(r.Context(), limit)
	if err != nil {
		s.Log.Error().Err(err).Msg("referral listing failed")
		writeError(w, http.StatusInternalServerError, "error listing referrals", "")
		return
	}
	if notes == nil {
		notes = []pkg.ReferralNote{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// storeReferral persists a note and raises the emergency notification when
// persistence is configured. Failures are logged, never surfaced: storage is
// best-effort and must not block delivery of the triage result.
func (s *Server) storeReferral(r *http.Request, note *pkg.ReferralNote) {
	if s.Repo == nil {
		return
	}
	ctx := r.Context()
	if err := s.Repo.SaveReferral(ctx, note); err != nil {
		s.Log.Error().Err(err).Str("id", note.ID).Msg("failed to store referral")
		return
	}
	if s.Notifier != nil && note.TriageResult.TriageCategory == pkg.CategoryImmediate {
		if err := s.Notifier.NotifyEmergency(ctx, note.ID); err != nil {
			s.Log.Warn().Err(err).Str("id", note.ID).Msg("emergency notification failed")
		}
	}
}

// normalizeLanguage accepts either a language name ("hindi") or an ISO code
// ("hi") and returns the ISO code Whisper expects.
func normalizeLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if code, ok := llm.SupportedLanguages()[language]; ok {
		return code
	}
	return language
}

func readiness(ready bool) string {
	if ready {
		return "ready"
	}
	return "not_ready"
}
