package facility

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"triage-desk/pkg"
)

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (pkg.Coordinates, error)
}

// Searcher finds healthcare facilities around a point.
type Searcher interface {
	SearchNearby(ctx context.Context, center pkg.Coordinates, radiusKM float64, specialty string) ([]pkg.FacilityInfo, error)
}

// specialtyQueryKeywords expands a medical specialty into search terms for
// the facility query.
var specialtyQueryKeywords = map[string][]string{
	"cardiology":  {"heart", "cardiac", "cardiovascular"},
	"neurology":   {"brain", "neurological", "stroke", "seizure"},
	"pulmonology": {"lung", "respiratory", "breathing", "asthma"},
	"orthopedics": {"bone", "joint", "fracture", "spine"},
	"pediatrics":  {"child", "pediatric", "infant", "baby"},
	"gynecology":  {"women", "pregnancy", "maternal", "reproductive"},
	"dermatology": {"skin", "dermatological", "rash"},
	"psychiatry":  {"mental", "psychiatric", "depression", "anxiety"},
	"emergency":   {"emergency", "trauma", "urgent", "critical"},
	"general":     {"general", "family", "primary", "clinic"},
}

// facilityTypeKeywords classifies facilities by name/address text. Checked
// in declaration order, first match wins, default local.
var facilityTypeKeywords = []struct {
	facilityType pkg.FacilityType
	keywords     []string
}{
	{pkg.FacilityGovernment, []string{"government", "public", "municipal", "district", "civil"}},
	{pkg.FacilityPrivate, []string{"private", "corporate", "multispecialty", "hospital"}},
	{pkg.FacilityNGO, []string{"ngo", "charitable", "trust", "foundation", "mission"}},
	{pkg.FacilityLocal, []string{"local", "community", "rural", "primary", "health center"}},
}

// NominatimClient talks to an OpenStreetMap Nominatim endpoint for both
// geocoding and facility search.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewNominatimClient constructs a client for the given Nominatim base URL.
// Nominatim's usage policy requires an identifying User-Agent.
func NewNominatimClient(baseURL, userAgent string, log zerolog.Logger) *NominatimClient {
	return &NominatimClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// place is the subset of a Nominatim search record the matcher consumes.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City  string `json:"city"`
		Town  string `json:"town"`
		State string `json:"state"`
	} `json:"address"`
}

func (c *NominatimClient) search(ctx context.Context, params url.Values) ([]place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nominatim: %s - %s", resp.Status, string(body))
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, err
	}
	return places, nil
}

// Geocode resolves a location string to coordinates, taking the first match.
func (c *NominatimClient) Geocode(ctx context.Context, location string) (pkg.Coordinates, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")

	places, err := c.search(ctx, params)
	if err != nil {
		return pkg.Coordinates{}, err
	}
	if len(places) == 0 {
		return pkg.Coordinates{}, fmt.Errorf("location %q not found", location)
	}
	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return pkg.Coordinates{}, err
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return pkg.Coordinates{}, err
	}
	return pkg.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// SearchNearby queries healthcare facilities in a bounding box around the
// center, keeps those within radiusKM, and returns at most 10 sorted by
// distance.
func (c *NominatimClient) SearchNearby(ctx context.Context, center pkg.Coordinates, radiusKM float64, specialty string) ([]pkg.FacilityInfo, error) {
	queryParts := []string{"healthcare", "hospital", "clinic", "medical"}
	if kws, ok := specialtyQueryKeywords[strings.ToLower(specialty)]; ok {
		queryParts = append(queryParts, kws...)
	}

	params := url.Values{}
	params.Set("q", strings.Join(queryParts, " "))
	params.Set("format", "json")
	params.Set("limit", "20")
	params.Set("addressdetails", "1")
	params.Set("extratags", "1")
	params.Set("bounded", "1")
	params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
		center.Longitude-0.1, center.Latitude-0.1, center.Longitude+0.1, center.Latitude+0.1))

	places, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}

	var facilities []pkg.FacilityInfo
	for _, p := range places {
		lat, latErr := strconv.ParseFloat(p.Lat, 64)
		lon, lonErr := strconv.ParseFloat(p.Lon, 64)
		if latErr != nil || lonErr != nil || (lat == 0 && lon == 0) {
			continue
		}
		distance := HaversineKM(center, pkg.Coordinates{Latitude: lat, Longitude: lon})
		if distance > radiusKM {
			continue
		}
		facilities = append(facilities, buildFacility(p, lat, lon, distance, specialty))
	}

	sort.Slice(facilities, func(i, j int) bool {
		return facilities[i].DistanceKM < facilities[j].DistanceKM
	})
	if len(facilities) > 10 {
		facilities = facilities[:10]
	}
	return facilities, nil
}

func buildFacility(p place, lat, lon, distance float64, specialty string) pkg.FacilityInfo {
	name := p.DisplayName
	if idx := strings.Index(name, ","); idx >= 0 {
		name = name[:idx]
	}
	specialtyMatch := strings.ToLower(specialty)
	if specialtyMatch == "" {
		specialtyMatch = "general"
	}
	return pkg.FacilityInfo{
		Name:         name,
		Address:      p.DisplayName,
		DistanceKM:   math.Round(distance*100) / 100,
		Specialty:    specialtyMatch,
		Services:     DetermineServices(name, p.DisplayName, specialtyMatch),
		MapLink:      MapLink(lat, lon),
		FacilityType: ClassifyFacilityType(name, p.DisplayName),
		Coordinates:  pkg.Coordinates{Latitude: lat, Longitude: lon},
	}
}

// ClassifyFacilityType labels a facility by keyword-matching its name and
// address text. First matching type wins; everything else is a local clinic.
func ClassifyFacilityType(name, address string) pkg.FacilityType {
	text := strings.ToLower(name + " " + address)
	for _, entry := range facilityTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.facilityType
			}
		}
	}
	return pkg.FacilityLocal
}

// DetermineServices derives the advertised service list from the facility's
// name and address text.
func DetermineServices(name, address, specialty string) []string {
	services := []string{"General Consultation"}
	text := strings.ToLower(name + " " + address)

	if kws, ok := specialtyQueryKeywords[strings.ToLower(specialty)]; ok {
		for _, kw := range kws {
			if strings.Contains(text, kw) {
				services = append(services, titleCase(specialty)+" Services")
				break
			}
		}
	}
	if strings.Contains(text, "emergency") || strings.Contains(text, "trauma") {
		services = append(services, "Emergency Care")
	}
	if strings.Contains(text, "surgery") || strings.Contains(text, "surgical") {
		services = append(services, "Surgical Services")
	}
	if strings.Contains(text, "lab") || strings.Contains(text, "laboratory") {
		services = append(services, "Laboratory Services")
	}
	if strings.Contains(text, "x-ray") || strings.Contains(text, "imaging") {
		services = append(services, "Imaging Services")
	}
	if strings.Contains(text, "pharmacy") {
		services = append(services, "Pharmacy")
	}
	return services
}

// MapLink builds a Google Maps link for a coordinate pair.
func MapLink(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", lat, lon)
}

const earthRadiusKM = 6371.0

// HaversineKM is the great-circle distance between two points in kilometers.
func HaversineKM(a, b pkg.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
