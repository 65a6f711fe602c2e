package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/carefinder/backend/internal/models"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocoder uses the Google Maps Geocoding API. Without an API key it
// reports itself unconfigured and the gateway skips it.
type GoogleGeocoder struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func (g *GoogleGeocoder) Name() string { return "google" }

func (g *GoogleGeocoder) Configured() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

func (g *GoogleGeocoder) Forward(ctx context.Context, address string) (models.GeocodeResult, error) {
	return g.geocode(ctx, url.Values{"address": []string{address}})
}

func (g *GoogleGeocoder) Reverse(ctx context.Context, coords models.Coordinates) (models.GeocodeResult, error) {
	latlng := fmt.Sprintf("%f,%f", coords.Latitude, coords.Longitude)
	res, err := g.geocode(ctx, url.Values{"latlng": []string{latlng}})
	if err != nil {
		return models.GeocodeResult{}, err
	}
	res.Coordinates = coords
	return res, nil
}

func (g *GoogleGeocoder) geocode(ctx context.Context, params url.Values) (models.GeocodeResult, error) {
	if !g.Configured() {
		return models.GeocodeResult{}, fmt.Errorf("google maps api key is required")
	}
	base := g.BaseURL
	if base == "" {
		base = googleGeocodeURL
	}
	params.Set("key", g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return models.GeocodeResult{}, fmt.Errorf("build geocode request: %w", err)
	}
	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.GeocodeResult{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.GeocodeResult{}, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.GeocodeResult{}, fmt.Errorf("decode geocode response: %w", err)
	}
	return parseGoogleResponse(payload)
}

func parseGoogleResponse(payload googleGeocodeResponse) (models.GeocodeResult, error) {
	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return models.GeocodeResult{}, ErrNotFound
	default:
		if payload.ErrorMessage != "" {
			return models.GeocodeResult{}, fmt.Errorf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage)
		}
		return models.GeocodeResult{}, fmt.Errorf("geocode request failed: %s", payload.Status)
	}
	if len(payload.Results) == 0 {
		return models.GeocodeResult{}, ErrNotFound
	}

	result := payload.Results[0]
	comps := result.AddressComponents
	return models.GeocodeResult{
		Coordinates: models.Coordinates{
			Latitude:  result.Geometry.Location.Lat,
			Longitude: result.Geometry.Location.Lng,
		},
		FormattedAddress: result.FormattedAddress,
		City: component(comps, "locality", "postal_town", "administrative_area_level_3",
			"sublocality_level_1", "sublocality", "administrative_area_level_2"),
		Region:   component(comps, "administrative_area_level_1"),
		Country:  component(comps, "country"),
		Postcode: component(comps, "postal_code"),
		Provider: "google",
	}, nil
}

// component returns the long name of the first component matching any of the
// types, in preference order.
func component(components []googleAddressComponent, types ...string) string {
	for _, want := range types {
		for _, comp := range components {
			for _, t := range comp.Types {
				if t == want {
					return comp.LongName
				}
			}
		}
	}
	return ""
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress  string                   `json:"formatted_address"`
	AddressComponents []googleAddressComponent `json:"address_components"`
	Geometry          struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type googleAddressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}
