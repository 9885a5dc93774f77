package triage

import (
	"fmt"
	"strings"
)

// prompts.go holds the instruction text sent to the reasoning backend.
// The wording is load-bearing: the triage prompt is the entire behavioral
// contract given to the model, so changes here change what comes back.

const triagePromptTemplate = `
You are an AI medical triage assistant designed for India's healthcare system. Your role is to analyze patient symptoms and provide structured medical triage assessment.

PATIENT INPUT: "%s"
%s
MEDICAL TRIAGE ASSESSMENT REQUIRED:

Please analyze the patient's symptoms and provide a structured assessment in the following JSON format:

{
    "chief_complaint": "Primary complaint in patient's own words",
    "symptoms": [
        {
            "name": "symptom name",
            "severity": "mild|moderate|severe",
            "duration": "time duration if mentioned",
            "associated_symptoms": ["related symptoms"]
        }
    ],
    "urgency_score": 1-10,
    "red_flags": [
        {
            "flag_type": "cardiac|neurological|respiratory|trauma|mental_health|other",
            "description": "description of red flag",
            "urgency_level": "immediate|urgent",
            "action_required": "specific action needed"
        }
    ],
    "potential_risks": [
        {
            "condition": "potential medical condition",
            "probability": "low|medium|high",
            "specialty_needed": "required medical specialty"
        }
    ],
    "recommended_specialty": "primary medical specialty needed",
    "triage_category": "immediate|urgent|standard",
    "emergency_detected": true/false,
    "action_required": "immediate action required"
}

URGENCY SCORING GUIDELINES:
- 1-3: Minor symptoms, self-care possible
- 4-6: Moderate symptoms, see doctor within 24-48 hours
- 7-8: Urgent symptoms, see doctor within 4-6 hours
- 9-10: Emergency symptoms, immediate medical attention required

RED FLAG CRITERIA:
- Cardiac: chest pain, heart attack symptoms, severe palpitations
- Neurological: stroke symptoms, sudden severe headache, loss of consciousness
- Respiratory: severe breathing difficulty, choking, blue lips
- Trauma: severe bleeding, head injury, major trauma
- Mental Health: suicidal thoughts, self-harm intentions

MEDICAL SAFETY:
- If ANY red flags detected, set urgency_score to 9-10
- If emergency_detected is true, recommend immediate action
- Always prioritize patient safety over convenience
- Consider Indian healthcare context and available resources

Respond ONLY with valid JSON. No additional text or explanations.
`

const relevancePromptTemplate = `
You are a medical relevance classification assistant. Your task is to determine if the following text contains any information related to health, symptoms, or medical conditions. The user may be trying to describe a health problem.

TEXT: "%s"

Is this text medically relevant? Respond with ONLY a JSON object in the following format:

{
    "is_relevant": true/false,
    "reason": "brief explanation for your decision"
}

Examples:
- "I have a headache" -> {"is_relevant": true, "reason": "Mentions a common medical symptom."}
- "What is the weather today?" -> {"is_relevant": false, "reason": "This is a general question, not related to health."}
- "My car is broken" -> {"is_relevant": false, "reason": "This is about a car, not a person's health."}
- "I feel sad and tired all the time" -> {"is_relevant": true, "reason": "Describes symptoms related to mental and physical health."}

Respond ONLY with the JSON object.
`

// BuildTriagePrompt composes the structured triage instruction from the
// verbatim patient text and any screener-detected flags. The flags are shown
// to the model as context only; they never enter the final result directly.
func BuildTriagePrompt(patientInput string, detectedFlags []FlaggedKeyword) string {
	emergencyContext := ""
	if len(detectedFlags) > 0 {
		var lines []string
		for _, flag := range detectedFlags {
			lines = append(lines, fmt.Sprintf("- %s: %s", strings.ToUpper(string(flag.Category)), flag.Keyword))
		}
		emergencyContext = "\n⚠️ EMERGENCY KEYWORDS DETECTED:\n" + strings.Join(lines, "\n") + "\n"
	}
	return fmt.Sprintf(triagePromptTemplate, patientInput, emergencyContext)
}

// BuildRelevancePrompt composes the yes/no health-relevance classification
// instruction for the gate in front of the main analysis.
func BuildRelevancePrompt(text string) string {
	return fmt.Sprintf(relevancePromptTemplate, text)
}
