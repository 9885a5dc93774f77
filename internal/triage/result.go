package triage

import (
	"time"

	"triage-desk/pkg"
)

// Default values applied when the model omits or mangles a field. Every
// fallback the builder performs goes through these, so the defaulting policy
// is one table rather than scattered inline literals.
const (
	defaultSpecialty = "General Medicine"
	defaultAction    = "Consult a healthcare provider"
	defaultScore     = 5
)

// CategoryForScore derives the triage category from an urgency score.
// The category is a pure function of the score: 9 and above is immediate,
// 7-8 urgent, everything below standard. The model's own category label is
// never consulted.
func CategoryForScore(score int) pkg.TriageCategory {
	switch {
	case score >= 9:
		return pkg.CategoryImmediate
	case score >= 7:
		return pkg.CategoryUrgent
	default:
		return pkg.CategoryStandard
	}
}

// BuildResult maps a normalized assessment object into the canonical
// TriageResult. It is total: any shape the object takes produces a valid
// result, with missing or malformed fields replaced by the defaults above.
// A nil object (the normalizer's failure case must be converted to a
// fallback assessment before calling) yields the minimal safe result.
func BuildResult(parsed map[string]interface{}, originalText string) pkg.TriageResult {
	if parsed == nil {
		parsed = FallbackAssessment(originalText, false, "empty assessment")
	}

	score := intField(parsed, "urgency_score", defaultScore)

	return pkg.TriageResult{
		ChiefComplaint:       stringField(parsed, "chief_complaint", originalText),
		Symptoms:             buildSymptoms(listField(parsed, "symptoms")),
		UrgencyScore:         score,
		RedFlags:             buildRedFlags(listField(parsed, "red_flags")),
		PotentialRisks:       buildRisks(listField(parsed, "potential_risks")),
		RecommendedSpecialty: stringField(parsed, "recommended_specialty", defaultSpecialty),
		TriageCategory:       CategoryForScore(score),
		EmergencyDetected:    boolField(parsed, "emergency_detected", false),
		ActionRequired:       stringField(parsed, "action_required", defaultAction),
		Timestamp:            time.Now().UTC(),
		Error:                stringField(parsed, "error", ""),
	}
}

func buildSymptoms(items []map[string]interface{}) []pkg.Symptom {
	symptoms := make([]pkg.Symptom, 0, len(items))
	for _, item := range items {
		symptoms = append(symptoms, pkg.Symptom{
			Name:               stringField(item, "name", ""),
			Severity:           severityField(item, "severity"),
			Duration:           stringField(item, "duration", ""),
			AssociatedSymptoms: stringListField(item, "associated_symptoms"),
		})
	}
	return symptoms
}

func buildRedFlags(items []map[string]interface{}) []pkg.RedFlag {
	flags := make([]pkg.RedFlag, 0, len(items))
	for _, item := range items {
		flags = append(flags, pkg.RedFlag{
			FlagType:       flagTypeField(item, "flag_type"),
			Description:    stringField(item, "description", ""),
			UrgencyLevel:   urgencyField(item, "urgency_level"),
			ActionRequired: stringField(item, "action_required", ""),
		})
	}
	return flags
}

func buildRisks(items []map[string]interface{}) []pkg.PotentialRisk {
	risks := make([]pkg.PotentialRisk, 0, len(items))
	for _, item := range items {
		risks = append(risks, pkg.PotentialRisk{
			Condition:       stringField(item, "condition", ""),
			Probability:     probabilityField(item, "probability"),
			SpecialtyNeeded: stringField(item, "specialty_needed", ""),
		})
	}
	return risks
}

// Field accessors. JSON unmarshals numbers as float64 and everything here
// defends against wrong types, so the builder can never panic on model
// output.

func stringField(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intField(m map[string]interface{}, key string, fallback int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

func boolField(m map[string]interface{}, key string, fallback bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}

func listField(m map[string]interface{}, key string) []map[string]interface{} {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	var out []map[string]interface{}
	for _, item := range raw {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

func stringListField(m map[string]interface{}, key string) []string {
	raw, ok := m[key].([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func severityField(m map[string]interface{}, key string) pkg.Severity {
	switch s := pkg.Severity(stringField(m, key, "")); s {
	case pkg.SeverityMild, pkg.SeverityModerate, pkg.SeveritySevere:
		return s
	default:
		return pkg.SeverityMild
	}
}

func flagTypeField(m map[string]interface{}, key string) pkg.FlagType {
	switch f := pkg.FlagType(stringField(m, key, "")); f {
	case pkg.FlagCardiac, pkg.FlagNeurological, pkg.FlagRespiratory,
		pkg.FlagTrauma, pkg.FlagMentalHealth, pkg.FlagOther:
		return f
	default:
		return pkg.FlagOther
	}
}

func urgencyField(m map[string]interface{}, key string) pkg.UrgencyLevel {
	switch u := pkg.UrgencyLevel(stringField(m, key, "")); u {
	case pkg.UrgencyImmediate, pkg.UrgencyUrgent:
		return u
	default:
		return pkg.UrgencyUrgent
	}
}

func probabilityField(m map[string]interface{}, key string) pkg.Probability {
	switch p := pkg.Probability(stringField(m, key, "")); p {
	case pkg.ProbabilityLow, pkg.ProbabilityMedium, pkg.ProbabilityHigh:
		return p
	default:
		return pkg.ProbabilityLow
	}
}
