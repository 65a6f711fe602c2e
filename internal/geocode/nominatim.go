package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/carefinder/backend/internal/models"
)

const (
	defaultNominatimURL       = "https://nominatim.openstreetmap.org"
	defaultNominatimUserAgent = "carefinder-backend"
)

// NominatimGeocoder talks to an OpenStreetMap Nominatim instance. The public
// instance allows one request per second and requires a descriptive
// User-Agent.
type NominatimGeocoder struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client

	limiter *rate.Limiter
}

func NewNominatimGeocoder(baseURL, userAgent string, requestsPerSec float64, client *http.Client) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	if userAgent == "" {
		userAgent = defaultNominatimUserAgent
	}
	if requestsPerSec <= 0 {
		requestsPerSec = 1
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &NominatimGeocoder{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
		Client:    client,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSec), 1),
	}
}

func (g *NominatimGeocoder) Name() string { return "nominatim" }

type nominatimAddress struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Suburb       string `json:"suburb"`
	CityDistrict string `json:"city_district"`
	County       string `json:"county"`
	State        string `json:"state"`
	Region       string `json:"region"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
}

type nominatimItem struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Importance  float64          `json:"importance"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

func (g *NominatimGeocoder) Forward(ctx context.Context, address string) (models.GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	var items []nominatimItem
	if err := g.get(ctx, "/search", params, &items); err != nil {
		return models.GeocodeResult{}, err
	}
	if len(items) == 0 {
		return models.GeocodeResult{}, ErrNotFound
	}
	return parseNominatimItem(items[0])
}

func (g *NominatimGeocoder) Reverse(ctx context.Context, coords models.Coordinates) (models.GeocodeResult, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	var item nominatimItem
	if err := g.get(ctx, "/reverse", params, &item); err != nil {
		return models.GeocodeResult{}, err
	}
	if item.Error != "" {
		return models.GeocodeResult{}, ErrNotFound
	}
	res, err := parseNominatimItem(item)
	if err != nil {
		return models.GeocodeResult{}, err
	}
	res.Coordinates = coords
	return res, nil
}

func (g *NominatimGeocoder) get(ctx context.Context, path string, params url.Values, out any) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	endpoint := fmt.Sprintf("%s%s?%s", g.BaseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", g.UserAgent)
	req.Header.Set("Accept-Language", "en")

	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("nominatim http error: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func parseNominatimItem(item nominatimItem) (models.GeocodeResult, error) {
	if item.Lat == "" && item.Lon == "" && item.DisplayName == "" {
		return models.GeocodeResult{}, ErrNotFound
	}
	lat, err := strconv.ParseFloat(item.Lat, 64)
	if err != nil {
		return models.GeocodeResult{}, fmt.Errorf("nominatim lat: %w", err)
	}
	lon, err := strconv.ParseFloat(item.Lon, 64)
	if err != nil {
		return models.GeocodeResult{}, fmt.Errorf("nominatim lon: %w", err)
	}
	a := item.Address
	return models.GeocodeResult{
		Coordinates:      models.Coordinates{Latitude: lat, Longitude: lon},
		FormattedAddress: item.DisplayName,
		City:             firstNonEmpty(a.City, a.Town, a.Village, a.Municipality, a.Suburb, a.CityDistrict),
		Region:           firstNonEmpty(a.State, a.Region),
		Country:          a.Country,
		Postcode:         a.Postcode,
		Provider:         "nominatim",
	}, nil
}
