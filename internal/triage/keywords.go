package triage

import (
	"strings"

	"triage-desk/pkg"
)

// FlaggedKeyword is one screener hit: a trigger phrase found in the patient
// text, with the category it belongs to and the tier it implies.
type FlaggedKeyword struct {
	Category pkg.FlagType
	Keyword  string
	Urgency  pkg.UrgencyLevel
}

// categoryKeywords pairs a red-flag category with its trigger phrases.
// Screening iterates these in declaration order so results are stable.
type categoryKeywords struct {
	category pkg.FlagType
	phrases  []string
}

var emergencyKeywords = []categoryKeywords{
	{pkg.FlagCardiac, []string{
		"chest pain", "heart attack", "crushing chest pressure",
		"pain radiating to arm", "pain radiating to jaw",
		"severe palpitations", "heart racing", "cardiac arrest",
	}},
	{pkg.FlagNeurological, []string{
		"stroke", "face drooping", "arm weakness", "slurred speech",
		"sudden severe headache", "loss of consciousness", "seizure",
		"paralysis", "numbness", "confusion", "difficulty speaking",
	}},
	{pkg.FlagRespiratory, []string{
		"can't breathe", "choking", "severe shortness of breath",
		"blue lips", "gasping for air", "respiratory distress",
		"chest tightness", "wheezing",
	}},
	{pkg.FlagTrauma, []string{
		"severe bleeding", "head injury", "broken bone visible",
		"penetrating wound", "unconscious after injury", "major trauma",
		"car accident", "fall from height",
	}},
	{pkg.FlagMentalHealth, []string{
		"suicide", "want to die", "self-harm", "kill myself",
		"suicidal thoughts", "harm myself",
	}},
	{pkg.FlagOther, []string{
		"severe abdominal pain", "pregnancy bleeding",
		"high fever in infant", "allergic reaction swelling",
		"anaphylaxis", "severe allergic reaction",
	}},
}

// Screen scans patient text for emergency trigger phrases. Matching is
// case-insensitive substring matching; every matching phrase yields one
// entry, so several phrases of the same category can each appear. Cardiac,
// neurological and respiratory hits are immediate, everything else urgent.
// Pure and deterministic: no external calls, same input always yields the
// same list in the same order.
func Screen(text string) []FlaggedKeyword {
	lower := strings.ToLower(text)
	var flags []FlaggedKeyword
	for _, ck := range emergencyKeywords {
		urgency := pkg.UrgencyUrgent
		switch ck.category {
		case pkg.FlagCardiac, pkg.FlagNeurological, pkg.FlagRespiratory:
			urgency = pkg.UrgencyImmediate
		}
		for _, phrase := range ck.phrases {
			if strings.Contains(lower, phrase) {
				flags = append(flags, FlaggedKeyword{
					Category: ck.category,
					Keyword:  phrase,
					Urgency:  urgency,
				})
			}
		}
	}
	return flags
}
