package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carefinder/backend/internal/models"
)

// fakeStore serves a fixed provider list per stage, honouring exclusions and
// the limit the way the database store does.
type fakeStore struct {
	mu       sync.Mutex
	byCoords []models.Provider
	byCity   []models.Provider
	byRegion []models.Provider
	anywhere []models.Provider
	failOn   string
	queries  []models.CandidateQuery
}

func (f *fakeStore) FindProviders(_ context.Context, q models.CandidateQuery) ([]models.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)

	var src []models.Provider
	stage := MethodFallback
	switch {
	case q.Box != nil:
		src, stage = f.byCoords, MethodCoordinates
	case len(q.Cities) > 0:
		src, stage = f.byCity, MethodCity
	case len(q.Regions) > 0:
		src, stage = f.byRegion, MethodState
	default:
		src = f.anywhere
	}
	if stage == f.failOn {
		return nil, errors.New("connection reset")
	}

	excluded := map[string]bool{}
	for _, id := range q.ExcludeIDs {
		excluded[id] = true
	}
	var out []models.Provider
	for _, p := range src {
		if p.Kind != q.Kind || excluded[p.ID] {
			continue
		}
		out = append(out, p)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func delhiOrigin() models.ResolvedLocation {
	return models.ResolvedLocation{
		Coordinates: models.Coordinates{Latitude: 28.6139, Longitude: 77.2090},
		City:        strp("Delhi"),
		Region:      strp("Delhi"),
		Source:      models.SourceGPS,
	}
}

func newNearby(store ProviderStore) *NearbyService {
	return &NearbyService{Store: store, Matcher: NewMatcher(nil, MidpointJitter{}), Logger: zerolog.Nop()}
}

func TestSearchStopsWideningOnceLimitReached(t *testing.T) {
	store := &fakeStore{
		byCoords: []models.Provider{hospitalAt("h1", 28.6304, 77.2177)},
		byCity: []models.Provider{
			hospitalAt("h1", 28.6304, 77.2177),
			hospitalIn("h2", "New Delhi", "Delhi"),
			hospitalIn("h3", "Delhi", "Delhi"),
		},
		anywhere: []models.Provider{hospitalIn("h9", "Delhi", "Delhi")},
	}
	svc := newNearby(store)

	res, err := svc.Search(context.Background(), NearbyQuery{
		Kind:     models.KindHospital,
		Origin:   delhiOrigin(),
		RadiusKm: 50,
		Limit:    3,
	})
	require.NoError(t, err)
	assert.Equal(t, MethodCity, res.Method)
	assert.Equal(t, []string{"h1", "h2", "h3"}, ids(res.Matches))
	assert.Equal(t, []SearchStage{
		{Name: MethodCoordinates, Fetched: 1, Matched: 1},
		{Name: MethodCity, Fetched: 2, Matched: 2},
	}, res.Stages)

	require.Len(t, store.queries, 2)
	assert.NotNil(t, store.queries[0].Box)
	assert.NotNil(t, store.queries[0].Near)
	assert.Equal(t, []string{"h1"}, store.queries[1].ExcludeIDs)
	assert.Contains(t, store.queries[1].Cities, "New Delhi")
	assert.Contains(t, store.queries[1].Cities, "दिल्ली")
}

func TestSearchWidensToFallbackInSparseAreas(t *testing.T) {
	store := &fakeStore{
		byRegion: []models.Provider{hospitalIn("r1", "Narela", "NCT of Delhi")},
		anywhere: []models.Provider{
			hospitalIn("r1", "Narela", "NCT of Delhi"),
			hospitalIn("far", "Chennai", "Tamil Nadu"),
			hospitalIn("metro", "Gurgaon", "Haryana"),
		},
	}
	svc := newNearby(store)

	res, err := svc.Search(context.Background(), NearbyQuery{
		Kind:     models.KindHospital,
		Origin:   delhiOrigin(),
		RadiusKm: 50,
		Limit:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, MethodFallback, res.Method)
	require.Len(t, res.Stages, 4)
	// the far provider is fetched but stays outside the radius
	assert.Equal(t, []string{"metro", "r1"}, ids(res.Matches))
	for _, m := range res.Matches {
		assert.LessOrEqual(t, m.DistanceKm, 50.0)
	}
}

func TestSearchWithoutLabelsOrCoordinatesOnlyRunsFallback(t *testing.T) {
	store := &fakeStore{}
	svc := newNearby(store)

	res, err := svc.Search(context.Background(), NearbyQuery{
		Kind:     models.KindDoctor,
		RadiusKm: 50,
		Limit:    20,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Equal(t, MethodFallback, res.Method)
	require.Len(t, store.queries, 1)
	assert.Equal(t, models.KindDoctor, store.queries[0].Kind)
}

func TestSearchPassesSpecialty(t *testing.T) {
	store := &fakeStore{}
	svc := newNearby(store)
	_, err := svc.Search(context.Background(), NearbyQuery{
		Kind:      models.KindDoctor,
		Origin:    delhiOrigin(),
		RadiusKm:  50,
		Specialty: "cardiology",
		Limit:     5,
	})
	require.NoError(t, err)
	for _, q := range store.queries {
		assert.Equal(t, "cardiology", q.Specialty)
	}
}

func TestSearchStoreFailure(t *testing.T) {
	store := &fakeStore{failOn: MethodCity}
	svc := newNearby(store)

	_, err := svc.Search(context.Background(), NearbyQuery{
		Kind:     models.KindHospital,
		Origin:   delhiOrigin(),
		RadiusKm: 50,
		Limit:    5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCandidateFetchFailed)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSearchRejectsBadQuery(t *testing.T) {
	svc := newNearby(&fakeStore{})

	_, err := svc.Search(context.Background(), NearbyQuery{Kind: "clinic", Limit: 5})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Search(context.Background(), NearbyQuery{Kind: models.KindHospital})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSearchBoth(t *testing.T) {
	doctor := models.Provider{
		ID:       "d1",
		Kind:     models.KindDoctor,
		Name:     "Dr. Rao",
		Location: models.Location{City: "New Delhi", State: "Delhi"},
	}
	store := &fakeStore{
		byCity: []models.Provider{hospitalIn("h1", "Delhi", "Delhi"), doctor},
	}
	svc := newNearby(store)

	hres, dres, err := svc.SearchBoth(context.Background(),
		NearbyQuery{Origin: delhiOrigin(), RadiusKm: 50, Limit: 10},
		NearbyQuery{Origin: delhiOrigin(), RadiusKm: 50, Limit: 20},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"h1"}, ids(hres.Matches))
	assert.Equal(t, []string{"d1"}, ids(dres.Matches))
}

func TestSearchBothPropagatesFailure(t *testing.T) {
	svc := newNearby(&fakeStore{failOn: MethodFallback})
	_, _, err := svc.SearchBoth(context.Background(),
		NearbyQuery{RadiusKm: 50, Limit: 10},
		NearbyQuery{RadiusKm: 50, Limit: 20},
	)
	assert.ErrorIs(t, err, ErrCandidateFetchFailed)
}
