package triage

import (
	"encoding/json"
	"strings"
)

// FailureReason tags the degraded outcomes of the pipeline so callers can
// tell failure modes apart instead of string-matching an error field.
type FailureReason string

const (
	FailureNone               FailureReason = ""
	FailureRelevanceRejected  FailureReason = "relevance_rejected"
	FailureBackendUnavailable FailureReason = "backend_unavailable"
	FailureParseFailed        FailureReason = "parse_failed"
	FailureMappingFailed      FailureReason = "mapping_failed"
)

// parseErrorMessage is the fixed error string carried by assessments that
// fell back because the model's output could not be parsed.
const parseErrorMessage = "Failed to parse AI response"

// Normalize turns the reasoning backend's raw text into a loose assessment
// object. It tolerates a single level of markdown code fencing (tagged
// "json" or untagged) around the payload. Invalid JSON yields
// FailureParseFailed; valid JSON that is not an object yields
// FailureMappingFailed. The map is nil exactly when the reason is non-empty.
func Normalize(rawText string) (map[string]interface{}, FailureReason) {
	content := stripFences(strings.TrimSpace(rawText))

	var parsed interface{}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, FailureParseFailed
	}
	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, FailureMappingFailed
	}
	return obj, FailureNone
}

// stripFences removes one surrounding markdown code block: when the text
// starts and ends with triple backticks the first and last lines are dropped.
func stripFences(content string) string {
	if !strings.HasPrefix(content, "```") || !strings.HasSuffix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}

// FallbackAssessment is the degraded-but-valid assessment used when the
// model's output is unusable or the backend call itself failed. The urgency
// score is a fixed neutral 5, independent of screener findings; only the
// emergency_detected bit carries the screener signal, and only on the parse
// failure path — a backend failure passes emergencyDetected false.
func FallbackAssessment(originalText string, emergencyDetected bool, errMsg string) map[string]interface{} {
	return map[string]interface{}{
		"chief_complaint":    originalText,
		"urgency_score":      float64(5),
		"emergency_detected": emergencyDetected,
		"error":              errMsg,
	}
}
