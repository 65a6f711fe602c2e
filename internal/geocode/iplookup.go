package geocode

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/carefinder/backend/internal/models"
)

const defaultIPAPIURL = "http://ip-api.com/json"

// IPLocator maps a public IP address to an approximate location.
type IPLocator interface {
	Locate(ctx context.Context, ip string) (models.GeocodeResult, error)
}

// IPAPILocator queries ip-api.com, which reports success through a status
// field rather than the HTTP status code.
type IPAPILocator struct {
	BaseURL string
	Client  *http.Client
}

func (l *IPAPILocator) Locate(ctx context.Context, ip string) (models.GeocodeResult, error) {
	base := strings.TrimRight(l.BaseURL, "/")
	if base == "" {
		base = defaultIPAPIURL
	}
	params := url.Values{}
	params.Set("fields", "status,message,lat,lon,city,regionName,country,zip,query")
	endpoint := fmt.Sprintf("%s/%s?%s", base, url.PathEscape(ip), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.GeocodeResult{}, err
	}
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.GeocodeResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.GeocodeResult{}, fmt.Errorf("ip-api http error: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return models.GeocodeResult{}, err
	}
	return parseIPAPIBody(body)
}

func parseIPAPIBody(body []byte) (models.GeocodeResult, error) {
	if !gjson.ValidBytes(body) {
		return models.GeocodeResult{}, fmt.Errorf("ip-api: malformed response")
	}
	doc := gjson.ParseBytes(body)
	if doc.Get("status").String() != "success" {
		msg := doc.Get("message").String()
		if msg == "" {
			msg = "lookup failed"
		}
		return models.GeocodeResult{}, fmt.Errorf("%w: ip-api: %s", ErrNotFound, msg)
	}
	lat, lon := doc.Get("lat"), doc.Get("lon")
	if !lat.Exists() || !lon.Exists() {
		return models.GeocodeResult{}, fmt.Errorf("%w: ip-api: missing coordinates", ErrNotFound)
	}
	city := doc.Get("city").String()
	region := doc.Get("regionName").String()
	country := doc.Get("country").String()
	return models.GeocodeResult{
		Coordinates:      models.Coordinates{Latitude: lat.Float(), Longitude: lon.Float()},
		FormattedAddress: BuildGeocodeQuery(city, region, country),
		City:             city,
		Region:           region,
		Country:          country,
		Postcode:         doc.Get("zip").String(),
		Provider:         "ip-api",
	}, nil
}

// IsPrivateIP reports whether ip cannot be geolocated: unparseable, loopback,
// private, link-local or unspecified.
func IsPrivateIP(ip string) bool {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return true
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() ||
		parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast()
}
