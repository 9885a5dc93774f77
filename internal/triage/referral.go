package triage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"triage-desk/pkg"
)

// FacilityRecommender is the facility-search boundary consumed by referral
// assembly. Implementations never return an error: a failed search is an
// empty list.
type FacilityRecommender interface {
	Recommend(ctx context.Context, result pkg.TriageResult, location string, coords *pkg.Coordinates, radiusKM float64) []pkg.FacilityInfo
}

// defaultSearchRadiusKM is the radius handed to the recommender before its
// own urgency-based clamping.
const defaultSearchRadiusKM = 10.0

// GenerateReferral bundles a triage result with facility recommendations
// into the final referral artifact. A failed or unconfigured facility lookup
// yields a note with an empty facility list; the triage result itself is
// always preserved.
func (s *Service) GenerateReferral(ctx context.Context, result pkg.TriageResult, location, patientID string, coords *pkg.Coordinates) pkg.ReferralNote {
	var facilities []pkg.FacilityInfo
	if s.facilities != nil {
		facilities = s.facilities.Recommend(ctx, result, location, coords, defaultSearchRadiusKM)
	}
	if facilities == nil {
		facilities = []pkg.FacilityInfo{}
	}
	return pkg.ReferralNote{
		ID:                    uuid.NewString(),
		PatientID:             patientID,
		TriageResult:          result,
		RecommendedFacilities: facilities,
		GeneratedAt:           time.Now().UTC(),
	}
}

// CompleteTriage runs the full pipeline from raw text to referral note.
// Degraded analysis outcomes still produce a note; only a relevance
// rejection aborts before assembly.
func (s *Service) CompleteTriage(ctx context.Context, text, location, patientID string, coords *pkg.Coordinates) (pkg.ReferralNote, Outcome, error) {
	outcome, err := s.Analyze(ctx, text)
	if err != nil {
		return pkg.ReferralNote{}, outcome, err
	}
	note := s.GenerateReferral(ctx, outcome.Result, location, patientID, coords)
	return note, outcome, nil
}
