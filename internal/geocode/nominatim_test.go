package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carefinder/backend/internal/models"
)

func TestParseNominatimItemCityFallback(t *testing.T) {
	item := nominatimItem{
		Lat:         "12.9716",
		Lon:         "77.5946",
		DisplayName: "Bengaluru, Karnataka, India",
		Address:     nominatimAddress{Town: "Yelahanka", Suburb: "Ward 4", State: "Karnataka", Country: "India", Postcode: "560064"},
	}
	res, err := parseNominatimItem(item)
	require.NoError(t, err)
	assert.Equal(t, 12.9716, res.Coordinates.Latitude)
	assert.Equal(t, 77.5946, res.Coordinates.Longitude)
	assert.Equal(t, "Yelahanka", res.City)
	assert.Equal(t, "Karnataka", res.Region)
	assert.Equal(t, "India", res.Country)
	assert.Equal(t, "560064", res.Postcode)

	item.Address.Town = ""
	res, err = parseNominatimItem(item)
	require.NoError(t, err)
	assert.Equal(t, "Ward 4", res.City)
}

func TestParseNominatimItemEmptyIsNotFound(t *testing.T) {
	_, err := parseNominatimItem(nominatimItem{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNominatimForwardSendsUserAgent(t *testing.T) {
	var gotUA, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		assert.Equal(t, "AIIMS New Delhi", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"lat":"28.5672","lon":"77.2100","display_name":"AIIMS, New Delhi, Delhi, India",
			"address":{"city":"New Delhi","state":"Delhi","country":"India","postcode":"110029"}}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "carefinder-test/1.0", 100, srv.Client())
	res, err := g.Forward(context.Background(), "AIIMS New Delhi")
	require.NoError(t, err)
	assert.Equal(t, "carefinder-test/1.0", gotUA)
	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, "New Delhi", res.City)
	assert.Equal(t, "Delhi", res.Region)
	assert.Equal(t, "nominatim", res.Provider)
}

func TestNominatimForwardNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "", 100, srv.Client())
	_, err := g.Forward(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNominatimReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "12.9716", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"lat":"12.97","lon":"77.59","display_name":"Bengaluru, Karnataka, India",
			"address":{"city":"Bengaluru","state":"Karnataka","country":"India"}}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "", 100, srv.Client())
	coords := models.Coordinates{Latitude: 12.9716, Longitude: 77.5946}
	res, err := g.Reverse(context.Background(), coords)
	require.NoError(t, err)
	assert.Equal(t, coords, res.Coordinates)
	assert.Equal(t, "Bengaluru", res.City)
}

func TestNominatimReverseErrorBodyIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "", 100, srv.Client())
	_, err := g.Reverse(context.Background(), models.Coordinates{Latitude: 0.1, Longitude: -20})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNominatimHTTPErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "", 100, srv.Client())
	_, err := g.Forward(context.Background(), "Mumbai")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
