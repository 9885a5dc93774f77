package pkg

import "time"

// Severity describes how intense a reported symptom is.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// FlagType groups red flags by the organ system or concern they indicate.
type FlagType string

const (
	FlagCardiac      FlagType = "cardiac"
	FlagNeurological FlagType = "neurological"
	FlagRespiratory  FlagType = "respiratory"
	FlagTrauma       FlagType = "trauma"
	FlagMentalHealth FlagType = "mental_health"
	FlagOther        FlagType = "other"
)

// UrgencyLevel is how fast a red flag needs to be acted on.
type UrgencyLevel string

const (
	UrgencyImmediate UrgencyLevel = "immediate"
	UrgencyUrgent    UrgencyLevel = "urgent"
)

// Probability is the model's coarse likelihood estimate for a potential risk.
type Probability string

const (
	ProbabilityLow    Probability = "low"
	ProbabilityMedium Probability = "medium"
	ProbabilityHigh   Probability = "high"
)

// TriageCategory is the canonical disposition derived from the urgency score.
// It is always recomputed from the score and never taken from model output.
type TriageCategory string

const (
	CategoryStandard  TriageCategory = "standard"
	CategoryUrgent    TriageCategory = "urgent"
	CategoryImmediate TriageCategory = "immediate"
)

// Symptom is a single complaint extracted from the patient's description.
type Symptom struct {
	Name               string   `json:"name"`
	Severity           Severity `json:"severity"`
	Duration           string   `json:"duration,omitempty"`
	AssociatedSymptoms []string `json:"associated_symptoms"`
}

// RedFlag marks a symptom pattern that requires fast action. Flags come from
// two sources: the keyword screener (pre-model, used only as prompt context)
// and the model's own output (authoritative in the final result).
type RedFlag struct {
	FlagType       FlagType     `json:"flag_type"`
	Description    string       `json:"description"`
	UrgencyLevel   UrgencyLevel `json:"urgency_level"`
	ActionRequired string       `json:"action_required"`
}

// PotentialRisk is a condition the model considers plausible for the
// presented symptoms.
type PotentialRisk struct {
	Condition       string      `json:"condition"`
	Probability     Probability `json:"probability"`
	SpecialtyNeeded string      `json:"specialty_needed"`
}

// TriageResult is the central assessment artifact. It is constructed fresh
// per request and never mutated after construction.
type TriageResult struct {
	ChiefComplaint       string          `json:"chief_complaint"`
	Symptoms             []Symptom       `json:"symptoms"`
	UrgencyScore         int             `json:"urgency_score"`
	RedFlags             []RedFlag       `json:"red_flags"`
	PotentialRisks       []PotentialRisk `json:"potential_risks"`
	RecommendedSpecialty string          `json:"recommended_specialty"`
	TriageCategory       TriageCategory  `json:"triage_category"`
	EmergencyDetected    bool            `json:"emergency_detected"`
	ActionRequired       string          `json:"action_required"`
	Timestamp            time.Time       `json:"timestamp"`
	Error                string          `json:"error,omitempty"`
}

// VoiceInput carries the outcome of a transcription call. Read-only once
// produced.
type VoiceInput struct {
	TranscribedText string  `json:"transcribed_text"`
	Language        string  `json:"language"`
	Confidence      float64 `json:"confidence"`
	ProcessingTime  float64 `json:"processing_time"`
}

// FacilityType labels who operates a healthcare facility.
type FacilityType string

const (
	FacilityGovernment FacilityType = "government"
	FacilityPrivate    FacilityType = "private"
	FacilityNGO        FacilityType = "ngo"
	FacilityLocal      FacilityType = "local"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FacilityInfo describes one recommended healthcare facility. Built per
// request from the facility search collaborator's raw records.
type FacilityInfo struct {
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	DistanceKM   float64      `json:"distance_km"`
	Specialty    string       `json:"specialty"`
	Services     []string     `json:"services"`
	Contact      string       `json:"contact,omitempty"`
	MapLink      string       `json:"map_link"`
	FacilityType FacilityType `json:"facility_type"`
	Coordinates  Coordinates  `json:"coordinates"`
}

// ReferralNote is the terminal aggregate: one triage assessment plus the
// facilities recommended for it.
type ReferralNote struct {
	ID                    string         `json:"id"`
	PatientID             string         `json:"patient_id,omitempty"`
	TriageResult          TriageResult   `json:"triage_result"`
	RecommendedFacilities []FacilityInfo `json:"recommended_facilities"`
	GeneratedAt           time.Time      `json:"generated_at"`
}
