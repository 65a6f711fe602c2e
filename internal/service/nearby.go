package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/carefinder/backend/internal/models"
	"github.com/carefinder/backend/internal/utils"
)

const (
	MethodCoordinates = "coordinates"
	MethodCity        = "city"
	MethodState       = "state"
	MethodFallback    = "fallback"
)

type ProviderStore interface {
	FindProviders(ctx context.Context, q models.CandidateQuery) ([]models.Provider, error)
}

type NearbyQuery struct {
	Kind      models.ProviderKind
	Origin    models.ResolvedLocation
	RadiusKm  float64
	Specialty string
	Limit     int
}

type SearchStage struct {
	Name    string `json:"name"`
	Fetched int    `json:"fetched"`
	Matched int    `json:"matched"`
}

type SearchResult struct {
	Matches []models.MatchResult
	Stages  []SearchStage
	// Method is the widest retrieval stage that ran.
	Method string
}

// NearbyService fetches candidates in widening stages (stored coordinates,
// then city, then state, then unrestricted) until enough providers fall
// within the radius, and ranks them with the Matcher.
type NearbyService struct {
	Store   ProviderStore
	Matcher *Matcher
	Logger  zerolog.Logger
}

type stagePlan struct {
	name  string
	apply func(q *models.CandidateQuery)
}

func (s *NearbyService) Search(ctx context.Context, q NearbyQuery) (SearchResult, error) {
	if q.Kind != models.KindHospital && q.Kind != models.KindDoctor {
		return SearchResult{}, fmt.Errorf("%w: unknown provider kind %q", ErrInvalidInput, q.Kind)
	}
	if q.Limit <= 0 {
		return SearchResult{}, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}
	matcher := s.Matcher
	if matcher == nil {
		matcher = &Matcher{}
	}

	var (
		result  SearchResult
		seen    = map[string]bool{}
		matched []models.MatchResult
	)
	for _, stage := range s.plan(q, matcher.aliases()) {
		if len(matched) >= q.Limit {
			break
		}
		cq := models.CandidateQuery{
			Kind:       q.Kind,
			Specialty:  q.Specialty,
			ExcludeIDs: sortedIDs(seen),
			Limit:      q.Limit,
		}
		stage.apply(&cq)

		candidates, err := s.Store.FindProviders(ctx, cq)
		if err != nil {
			s.Logger.Error().Err(err).Str("stage", stage.name).Str("kind", string(q.Kind)).Msg("candidate fetch failed")
			return SearchResult{}, fmt.Errorf("%w: %s stage: %w", ErrCandidateFetchFailed, stage.name, err)
		}
		fresh := make([]models.Provider, 0, len(candidates))
		for _, p := range candidates {
			if p.ID != "" && seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			fresh = append(fresh, p)
		}

		stageMatches := matcher.Match(q.Origin, fresh, q.RadiusKm, 0)
		matched = append(matched, stageMatches...)
		result.Stages = append(result.Stages, SearchStage{
			Name:    stage.name,
			Fetched: len(fresh),
			Matched: len(stageMatches),
		})
		result.Method = stage.name
	}

	SortMatches(matched)
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	result.Matches = matched

	s.Logger.Debug().
		Str("kind", string(q.Kind)).
		Str("method", result.Method).
		Int("matches", len(matched)).
		Msg("nearby search complete")
	return result, nil
}

// SearchBoth runs the hospital and doctor searches concurrently. Either
// failing cancels the other.
func (s *NearbyService) SearchBoth(ctx context.Context, hospitals, doctors NearbyQuery) (SearchResult, SearchResult, error) {
	hospitals.Kind = models.KindHospital
	doctors.Kind = models.KindDoctor

	var hres, dres SearchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hres, err = s.Search(gctx, hospitals)
		return err
	})
	g.Go(func() error {
		var err error
		dres, err = s.Search(gctx, doctors)
		return err
	})
	if err := g.Wait(); err != nil {
		return SearchResult{}, SearchResult{}, err
	}
	return hres, dres, nil
}

func (s *NearbyService) plan(q NearbyQuery, aliases *AliasTable) []stagePlan {
	var stages []stagePlan
	origin := q.Origin
	if origin.Coordinates.Valid() && !origin.Coordinates.IsZero() && q.RadiusKm > 0 {
		box := utils.BoundingBoxAround(origin.Coordinates, q.RadiusKm)
		near := origin.Coordinates
		stages = append(stages, stagePlan{name: MethodCoordinates, apply: func(cq *models.CandidateQuery) {
			cq.Box = &box
			cq.Near = &near
		}})
	}
	if cities := aliases.CityVariants(origin.CityName()); len(cities) > 0 {
		stages = append(stages, stagePlan{name: MethodCity, apply: func(cq *models.CandidateQuery) {
			cq.Cities = cities
		}})
	}
	if regions := aliases.RegionVariants(origin.RegionName()); len(regions) > 0 {
		stages = append(stages, stagePlan{name: MethodState, apply: func(cq *models.CandidateQuery) {
			cq.Regions = regions
		}})
	}
	return append(stages, stagePlan{name: MethodFallback, apply: func(*models.CandidateQuery) {}})
}

func sortedIDs(seen map[string]bool) []string {
	ids := make([]string, 0, len(seen))
	for id := range seen {
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
