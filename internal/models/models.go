package models

import "math"

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the pair is a finite point inside lat/lng ranges.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

func (c Coordinates) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// BoundingBox is a lat/lng rectangle, used to pre-filter providers that carry
// coordinates before exact distances are computed.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

type LocationSource string

const (
	SourceGPS     LocationSource = "gps"
	SourceIP      LocationSource = "ip"
	SourceManual  LocationSource = "manual"
	SourceDefault LocationSource = "default"
)

type ResolvedLocation struct {
	Coordinates Coordinates    `json:"coordinates"`
	City        *string        `json:"city"`
	Region      *string        `json:"region"`
	Country     *string        `json:"country"`
	Address     *string        `json:"address"`
	Source      LocationSource `json:"source"`
}

func (l ResolvedLocation) CityName() string {
	if l.City == nil {
		return ""
	}
	return *l.City
}

func (l ResolvedLocation) RegionName() string {
	if l.Region == nil {
		return ""
	}
	return *l.Region
}

type GeocodeResult struct {
	Coordinates      Coordinates `json:"coordinates"`
	FormattedAddress string      `json:"formatted_address"`
	City             string      `json:"city"`
	Region           string      `json:"region"`
	Country          string      `json:"country"`
	Postcode         string      `json:"postcode"`
	Provider         string      `json:"provider"`
}

type ProviderKind string

const (
	KindHospital ProviderKind = "hospital"
	KindDoctor   ProviderKind = "doctor"
)

type Location struct {
	Address     string       `json:"address"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Contact struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// Provider is a hospital or doctor as read from the provider store.
type Provider struct {
	ID                string       `json:"id"`
	Kind              ProviderKind `json:"kind"`
	Name              string       `json:"name"`
	Location          Location     `json:"location"`
	Rating            *float64     `json:"rating"`
	Specialties       []string     `json:"specialties"`
	Specialization    string       `json:"specialization"`
	Qualification     string       `json:"qualification"`
	ExperienceYears   *int         `json:"experience_years"`
	ConsultationFee   *float64     `json:"consultation_fee"`
	HospitalName      string       `json:"hospital_name"`
	Contact           Contact      `json:"contact"`
	EmergencyServices bool         `json:"emergency_services"`
	BedCount          *int         `json:"bed_count"`
}

// HasCoordinates reports whether the provider carries a usable point.
// A stored 0,0 pair is treated as missing.
func (p Provider) HasCoordinates() bool {
	c := p.Location.Coordinates
	return c != nil && c.Valid() && !c.IsZero()
}

type DistanceBasis string

const (
	BasisComputed  DistanceBasis = "computed"
	BasisEstimated DistanceBasis = "estimated"
)

type MatchResult struct {
	Provider      Provider      `json:"provider"`
	DistanceKm    float64       `json:"distance_km"`
	DistanceBasis DistanceBasis `json:"distance_basis"`
}

type ContactSummary struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website,omitempty"`
}

// ProviderSummary is the flat record the UI renders for a nearby provider.
type ProviderSummary struct {
	ID                string         `json:"id"`
	Type              ProviderKind   `json:"type"`
	Name              string         `json:"name"`
	Distance          string         `json:"distance"`
	DistanceKm        float64        `json:"distanceKm"`
	DistanceBasis     DistanceBasis  `json:"distanceBasis"`
	Rating            string         `json:"rating"`
	Specialties       []string       `json:"specialties"`
	Specialization    string         `json:"specialization,omitempty"`
	Qualification     string         `json:"qualification,omitempty"`
	Experience        string         `json:"experience,omitempty"`
	ConsultationFee   string         `json:"consultationFee,omitempty"`
	Hospital          string         `json:"hospital,omitempty"`
	Address           string         `json:"address"`
	City              string         `json:"city"`
	State             string         `json:"state"`
	Coordinates       *Coordinates   `json:"coordinates,omitempty"`
	Contact           ContactSummary `json:"contact"`
	EmergencyServices bool           `json:"emergencyServices"`
	Beds              string         `json:"beds,omitempty"`
}

// CandidateQuery narrows the providers fetched from the store. Empty fields do
// not filter.
type CandidateQuery struct {
	Kind       ProviderKind
	Box        *BoundingBox
	Near       *Coordinates
	Cities     []string
	Regions    []string
	Specialty  string
	ExcludeIDs []string
	Limit      int
}
