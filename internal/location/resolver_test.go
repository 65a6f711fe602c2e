package location

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carefinder/backend/internal/geocode"
	"github.com/carefinder/backend/internal/models"
)

type fakeGeocoder struct {
	reverse      models.GeocodeResult
	reverseErr   error
	forward      models.GeocodeResult
	forwardErr   error
	stall        bool
	reverseCalls atomic.Int32
}

func (f *fakeGeocoder) Forward(_ context.Context, _ string) (models.GeocodeResult, error) {
	return f.forward, f.forwardErr
}

func (f *fakeGeocoder) Reverse(ctx context.Context, _ models.Coordinates) (models.GeocodeResult, error) {
	f.reverseCalls.Add(1)
	if f.stall {
		// ignores ctx on purpose: the resolver must bound the wait itself
		time.Sleep(5 * time.Second)
	}
	return f.reverse, f.reverseErr
}

type fakeIPLocator struct {
	res   models.GeocodeResult
	err   error
	calls atomic.Int32
}

func (f *fakeIPLocator) Locate(_ context.Context, _ string) (models.GeocodeResult, error) {
	f.calls.Add(1)
	return f.res, f.err
}

func newResolver(g Geocoder, ip geocode.IPLocator) *Resolver {
	return &Resolver{Geocoder: g, IPLocator: ip, Logger: zerolog.Nop()}
}

func TestResolveGPSWithReverseGeocode(t *testing.T) {
	g := &fakeGeocoder{reverse: models.GeocodeResult{
		City: "Bengaluru", Region: "Karnataka", Country: "India",
		FormattedAddress: "Bengaluru, Karnataka, India",
	}}
	coords := models.Coordinates{Latitude: 12.9716, Longitude: 77.5946}

	loc := newResolver(g, nil).Resolve(context.Background(), Signal{GPS: &coords})

	assert.Equal(t, coords, loc.Coordinates)
	assert.Equal(t, models.SourceGPS, loc.Source)
	require.NotNil(t, loc.City)
	assert.Equal(t, "Bengaluru", *loc.City)
	require.NotNil(t, loc.Region)
	assert.Equal(t, "Karnataka", *loc.Region)
	require.NotNil(t, loc.Country)
	assert.Equal(t, "India", *loc.Country)
}

func TestResolveGPSReverseTimeoutKeepsCoordinates(t *testing.T) {
	g := &fakeGeocoder{stall: true}
	coords := models.Coordinates{Latitude: 12.9716, Longitude: 77.5946}
	r := newResolver(g, nil)

	start := time.Now()
	loc := r.Resolve(context.Background(), Signal{GPS: &coords})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2500*time.Millisecond)
	assert.Equal(t, coords, loc.Coordinates)
	assert.Equal(t, models.SourceGPS, loc.Source)
	assert.Nil(t, loc.City)
	assert.Nil(t, loc.Region)
	assert.Nil(t, loc.Country)
}

func TestResolveGPSReverseFailureKeepsCoordinates(t *testing.T) {
	g := &fakeGeocoder{reverseErr: geocode.ErrUnavailable}
	coords := models.Coordinates{Latitude: 19.076, Longitude: 72.8777}

	loc := newResolver(g, nil).Resolve(context.Background(), Signal{GPS: &coords, IP: "8.8.8.8"})

	assert.Equal(t, coords, loc.Coordinates)
	assert.Equal(t, models.SourceGPS, loc.Source)
	assert.Nil(t, loc.City)
}

func TestResolveGPSShortCircuitsIP(t *testing.T) {
	ip := &fakeIPLocator{res: models.GeocodeResult{Coordinates: models.Coordinates{Latitude: 1, Longitude: 1}}}
	coords := models.Coordinates{Latitude: 19.076, Longitude: 72.8777}
	loc := newResolver(&fakeGeocoder{}, ip).Resolve(context.Background(), Signal{GPS: &coords, IP: "8.8.8.8"})
	assert.Equal(t, models.SourceGPS, loc.Source)
	assert.Zero(t, ip.calls.Load())
}

func TestResolveInvalidGPSFallsThrough(t *testing.T) {
	bad := models.Coordinates{Latitude: 123, Longitude: 77}
	g := &fakeGeocoder{}
	loc := newResolver(g, nil).Resolve(context.Background(), Signal{GPS: &bad})
	assert.Equal(t, models.SourceDefault, loc.Source)
	assert.Zero(t, g.reverseCalls.Load())
}

func TestResolveManualAddress(t *testing.T) {
	g := &fakeGeocoder{forward: models.GeocodeResult{
		Coordinates: models.Coordinates{Latitude: 18.5204, Longitude: 73.8567},
		City:        "Pune", Region: "Maharashtra", Country: "India",
	}}
	loc := newResolver(g, nil).Resolve(context.Background(), Signal{Address: "Shivajinagar, Pune"})
	assert.Equal(t, models.SourceManual, loc.Source)
	assert.Equal(t, "Pune", loc.CityName())
}

func TestResolveIPSuccess(t *testing.T) {
	ip := &fakeIPLocator{res: models.GeocodeResult{
		Coordinates: models.Coordinates{Latitude: 19.076, Longitude: 72.8777},
		City:        "Mumbai", Region: "Maharashtra", Country: "India",
	}}
	loc := newResolver(nil, ip).Resolve(context.Background(), Signal{IP: "49.36.10.20"})
	assert.Equal(t, models.SourceIP, loc.Source)
	assert.Equal(t, "Mumbai", loc.CityName())
	assert.Equal(t, "Maharashtra", loc.RegionName())
}

func TestResolvePrivateIPUsesDefaultWithoutLookup(t *testing.T) {
	ip := &fakeIPLocator{}
	for _, addr := range []string{"127.0.0.1", "::1", "192.168.1.7", "10.0.0.3"} {
		loc := newResolver(nil, ip).Resolve(context.Background(), Signal{IP: addr})
		assert.Equal(t, models.SourceDefault, loc.Source)
		assert.Equal(t, 28.6139, loc.Coordinates.Latitude)
		assert.Equal(t, 77.2090, loc.Coordinates.Longitude)
	}
	assert.Zero(t, ip.calls.Load())
}

func TestResolveIPFailureUsesDefault(t *testing.T) {
	ip := &fakeIPLocator{err: errors.New("ip-api down")}
	loc := newResolver(nil, ip).Resolve(context.Background(), Signal{IP: "49.36.10.20"})
	assert.Equal(t, models.SourceDefault, loc.Source)
	assert.EqualValues(t, 1, ip.calls.Load())
}

func TestResolveEmptySignalUsesDefault(t *testing.T) {
	loc := newResolver(nil, nil).Resolve(context.Background(), Signal{})
	assert.Equal(t, DefaultLocation(), loc)
	assert.True(t, loc.Coordinates.Valid())
}

func TestResolveUsesConfiguredFallback(t *testing.T) {
	r := newResolver(nil, nil)
	r.Fallback = FixedLocation(models.Coordinates{Latitude: 19.076, Longitude: 72.8777}, "Mumbai", "Maharashtra", "India")
	loc := r.Resolve(context.Background(), Signal{})
	assert.Equal(t, models.SourceDefault, loc.Source)
	assert.Equal(t, "Mumbai", loc.CityName())
	require.NotNil(t, loc.Address)
	assert.Equal(t, "Mumbai, Maharashtra, India", *loc.Address)
}
