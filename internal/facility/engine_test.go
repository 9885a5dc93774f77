package facility

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triage-desk/pkg"
)

type fakeGeocoder struct {
	coords pkg.Coordinates
	err    error
	calls  int
}

func (f *fakeGeocoder) Geocode(_ context.Context, _ string) (pkg.Coordinates, error) {
	f.calls++
	return f.coords, f.err
}

type fakeSearcher struct {
	facilities []pkg.FacilityInfo
	err        error
	gotRadius  float64
	gotCenter  pkg.Coordinates
	gotQuery   string
}

func (f *fakeSearcher) SearchNearby(_ context.Context, center pkg.Coordinates, radiusKM float64, specialty string) ([]pkg.FacilityInfo, error) {
	f.gotCenter = center
	f.gotRadius = radiusKM
	f.gotQuery = specialty
	return f.facilities, f.err
}

func facilityNamed(name string, distance float64, services ...string) pkg.FacilityInfo {
	return pkg.FacilityInfo{Name: name, DistanceKM: distance, Services: services}
}

var mumbai = pkg.Coordinates{Latitude: 19.076, Longitude: 72.8777}

func TestRecommendRadiusClamp(t *testing.T) {
	cases := []struct {
		name       string
		score      int
		radius     float64
		wantRadius float64
	}{
		{"critical shrinks to 5", 9, 10, 5},
		{"score 8 shrinks to 5", 8, 10, 5},
		{"score 6 shrinks to 8", 6, 10, 8},
		{"score 7 shrinks to 8", 7, 10, 8},
		{"low score unchanged", 3, 10, 10},
		{"never widens", 9, 2, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			engine := NewEngine(&fakeGeocoder{coords: mumbai}, searcher, nil, zerolog.Nop())
			engine.Recommend(context.Background(), pkg.TriageResult{UrgencyScore: tc.score}, "Mumbai", nil, tc.radius)
			assert.Equal(t, tc.wantRadius, searcher.gotRadius)
		})
	}
}

func TestRecommendSortsByDistance(t *testing.T) {
	searcher := &fakeSearcher{facilities: []pkg.FacilityInfo{
		facilityNamed("Far Clinic", 7.5),
		facilityNamed("Near Clinic", 1.2),
		facilityNamed("Mid Clinic", 3.9),
	}}
	engine := NewEngine(&fakeGeocoder{coords: mumbai}, searcher, nil, zerolog.Nop())

	got := engine.Recommend(context.Background(), pkg.TriageResult{UrgencyScore: 3}, "Mumbai", nil, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "Near Clinic", got[0].Name)
	assert.Equal(t, "Mid Clinic", got[1].Name)
	assert.Equal(t, "Far Clinic", got[2].Name)
}

func TestRecommendCapsGeneralListAtFive(t *testing.T) {
	var facilities []pkg.FacilityInfo
	for i := 0; i < 8; i++ {
		facilities = append(facilities, facilityNamed("Clinic", float64(i)))
	}
	engine := NewEngine(&fakeGeocoder{coords: mumbai}, &fakeSearcher{facilities: facilities}, nil, zerolog.Nop())

	got := engine.Recommend(context.Background(), pkg.TriageResult{UrgencyScore: 2}, "Mumbai", nil, 10)
	assert.Len(t, got, 5)
}

func TestRecommendEmergencyOverride(t *testing.T) {
	// With an emergency detected, facilities offering emergency or trauma
	// care win outright even when general clinics are closer.
	searcher := &fakeSearcher{facilities: []pkg.FacilityInfo{
		facilityNamed("Corner Clinic", 0.5, "General Consultation"),
		facilityNamed("City ER", 4.0, "General Consultation", "Emergency Care"),
		facilityNamed("Trauma Center", 4.5, "Trauma Surgery"),
		facilityNamed("Another ER", 4.8, "24x7 Emergency Ward"),
		facilityNamed("Fourth ER", 4.9, "Emergency Care"),
	}}
	engine := NewEngine(&fakeGeocoder{coords: mumbai}, searcher, nil, zerolog.Nop())

	result := pkg.TriageResult{UrgencyScore: 9, EmergencyDetected: true}
	got := engine.Recommend(context.Background(), result, "Mumbai", nil, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "City ER", got[0].Name)
	assert.Equal(t, "Trauma Center", got[1].Name)
	assert.Equal(t, "Another ER", got[2].Name)
}

func TestRecommendEmergencyFallsBackToGeneral(t *testing.T) {
	// No facility offers emergency care, so the ordinary ranking applies.
	searcher := &fakeSearcher{facilities: []pkg.FacilityInfo{
		facilityNamed("Corner Clinic", 0.5, "General Consultation"),
		facilityNamed("Mid Clinic", 2.0, "Pharmacy"),
	}}
	engine := NewEngine(&fakeGeocoder{coords: mumbai}, searcher, nil, zerolog.Nop())

	result := pkg.TriageResult{UrgencyScore: 9, EmergencyDetected: true}
	got := engine.Recommend(context.Background(), result, "Mumbai", nil, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "Corner Clinic", got[0].Name)
}

func TestRecommendGeocodeFailure(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.New("location not found")}
	engine := NewEngine(geocoder, &fakeSearcher{}, nil, zerolog.Nop())

	got := engine.Recommend(context.Background(), pkg.TriageResult{UrgencyScore: 5}, "Nowhere", nil, 10)
	assert.Empty(t, got)
}

func TestRecommendSearchFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("upstream 502")}
	engine := NewEngine(&fakeGeocoder{coords: mumbai}, searcher, nil, zerolog.Nop())

	got := engine.Recommend(context.Background(), pkg.TriageResult{UrgencyScore: 5}, "Mumbai", nil, 10)
	assert.Empty(t, got)
}

func TestRecommendUsesProvidedCoordinates(t *testing.T) {
	geocoder := &fakeGeocoder{coords: mumbai}
	searcher := &fakeSearcher{}
	engine := NewEngine(geocoder, searcher, nil, zerolog.Nop())

	delhi := pkg.Coordinates{Latitude: 28.6139, Longitude: 77.209}
	engine.Recommend(context.Background(), pkg.TriageResult{UrgencyScore: 5}, "ignored", &delhi, 10)
	assert.Zero(t, geocoder.calls)
	assert.Equal(t, delhi, searcher.gotCenter)
}

func TestRecommendLowercasesSpecialty(t *testing.T) {
	searcher := &fakeSearcher{}
	engine := NewEngine(&fakeGeocoder{coords: mumbai}, searcher, nil, zerolog.Nop())

	result := pkg.TriageResult{UrgencyScore: 4, RecommendedSpecialty: "Cardiology"}
	engine.Recommend(context.Background(), result, "Mumbai", nil, 10)
	assert.Equal(t, "cardiology", searcher.gotQuery)
}

func TestLocateWithoutCache(t *testing.T) {
	geocoder := &fakeGeocoder{coords: mumbai}
	engine := NewEngine(geocoder, &fakeSearcher{}, nil, zerolog.Nop())

	coords, err := engine.Locate(context.Background(), "Mumbai")
	require.NoError(t, err)
	assert.Equal(t, mumbai, coords)
	assert.Equal(t, 1, geocoder.calls)
}
