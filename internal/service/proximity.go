package service

import (
	"math"
	"math/rand"
	"sort"

	"github.com/carefinder/backend/internal/models"
	"github.com/carefinder/backend/internal/utils"
)

type Tier string

const (
	TierCity   Tier = "city"
	TierMetro  Tier = "metro"
	TierRegion Tier = "region"
	TierFar    Tier = "far"
)

// Band is the range an estimated distance is drawn from.
type Band struct {
	MinKm float64
	MaxKm float64
}

// At returns the point at position u in [0,1] along the band.
func (b Band) At(u float64) float64 {
	switch {
	case math.IsNaN(u) || u < 0:
		u = 0
	case u > 1:
		u = 1
	}
	return b.MinKm + (b.MaxKm-b.MinKm)*u
}

type Bands struct {
	City   Band
	Metro  Band
	Region Band
	Far    Band
}

var DefaultBands = Bands{
	City:   Band{MinKm: 2, MaxKm: 17},
	Metro:  Band{MinKm: 2, MaxKm: 20},
	Region: Band{MinKm: 20, MaxKm: 70},
	Far:    Band{MinKm: 100, MaxKm: 300},
}

func (b Bands) For(t Tier) Band {
	switch t {
	case TierCity:
		return b.City
	case TierMetro:
		return b.Metro
	case TierRegion:
		return b.Region
	default:
		return b.Far
	}
}

// Jitter picks where inside a band an estimate lands, as a value in [0,1].
type Jitter interface {
	Position(p models.Provider) float64
}

type RandomJitter struct{}

func (RandomJitter) Position(models.Provider) float64 { return rand.Float64() }

// HashJitter gives each provider a stable position derived from its id.
type HashJitter struct{}

func (HashJitter) Position(p models.Provider) float64 {
	key := p.ID
	if key == "" {
		key = p.Name
	}
	return utils.HashToUnit(key)
}

type MidpointJitter struct{}

func (MidpointJitter) Position(models.Provider) float64 { return 0.5 }

// Matcher computes or estimates how far each candidate provider is from an
// origin and keeps those within a radius. The zero value uses the built-in
// alias table, DefaultBands and HashJitter.
type Matcher struct {
	Aliases *AliasTable
	Jitter  Jitter
	Bands   *Bands
}

func NewMatcher(aliases *AliasTable, jitter Jitter) *Matcher {
	return &Matcher{Aliases: aliases, Jitter: jitter}
}

// Match returns the candidates within radiusKm of origin, nearest first.
// Ties keep input order. A limit of zero or less keeps every match.
func (m *Matcher) Match(origin models.ResolvedLocation, candidates []models.Provider, radiusKm float64, limit int) []models.MatchResult {
	out := make([]models.MatchResult, 0, len(candidates))
	for _, p := range candidates {
		if res, ok := m.matchOne(origin, p, radiusKm); ok {
			out = append(out, res)
		}
	}
	SortMatches(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Tier classifies how closely the provider's city and state text match the
// origin's labels.
func (m *Matcher) Tier(origin models.ResolvedLocation, p models.Provider) Tier {
	aliases := m.aliases()
	city, region := origin.CityName(), origin.RegionName()
	switch {
	case city != "" && aliases.SameCityInRegion(city, region, p.Location.City, p.Location.State):
		return TierCity
	case city != "" && aliases.SameMetro(city, p.Location.City):
		return TierMetro
	case region != "" && aliases.SameRegion(region, p.Location.State):
		return TierRegion
	default:
		return TierFar
	}
}

func (m *Matcher) matchOne(origin models.ResolvedLocation, p models.Provider, radiusKm float64) (models.MatchResult, bool) {
	if origin.Coordinates.Valid() && p.HasCoordinates() {
		d := utils.HaversineKm(origin.Coordinates, *p.Location.Coordinates)
		if !(d <= radiusKm) {
			return models.MatchResult{}, false
		}
		return models.MatchResult{Provider: p, DistanceKm: d, DistanceBasis: models.BasisComputed}, true
	}

	// An estimate is drawn from the part of the band inside the radius, so
	// whether a provider qualifies depends only on its tier.
	band := m.bands().For(m.Tier(origin, p))
	if !(band.MinKm <= radiusKm) {
		return models.MatchResult{}, false
	}
	if band.MaxKm > radiusKm {
		band.MaxKm = radiusKm
	}
	d := band.At(m.jitter().Position(p))
	return models.MatchResult{Provider: p, DistanceKm: d, DistanceBasis: models.BasisEstimated}, true
}

func (m *Matcher) aliases() *AliasTable {
	if m.Aliases == nil {
		return defaultAliases
	}
	return m.Aliases
}

func (m *Matcher) jitter() Jitter {
	if m.Jitter == nil {
		return HashJitter{}
	}
	return m.Jitter
}

func (m *Matcher) bands() Bands {
	if m.Bands == nil {
		return DefaultBands
	}
	return *m.Bands
}

var defaultAliases = DefaultAliasTable()

// SortMatches orders matches by ascending distance, keeping input order on ties.
func SortMatches(matches []models.MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})
}
