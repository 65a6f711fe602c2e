package geocode

import (
	"context"
	"errors"
	"strings"

	"github.com/carefinder/backend/internal/models"
)

var (
	ErrNotFound    = errors.New("geocode not found")
	ErrUnavailable = errors.New("geocoding unavailable")
)

// Provider is one geocoding backend. Implementations return ErrNotFound when
// the backend answered but had no match; any other error counts as the
// backend being unavailable.
type Provider interface {
	Name() string
	Forward(ctx context.Context, address string) (models.GeocodeResult, error)
	Reverse(ctx context.Context, coords models.Coordinates) (models.GeocodeResult, error)
}

// configurable is implemented by providers that need a credential.
type configurable interface {
	Configured() bool
}

func BuildGeocodeQuery(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// CacheKey normalizes free-text address input for cache lookups.
func CacheKey(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
