// Package location turns whatever the client sent about its position into a
// usable ResolvedLocation. Resolution never fails: every step that cannot
// produce coordinates falls through to the next, ending at a fixed default.
package location

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carefinder/backend/internal/geocode"
	"github.com/carefinder/backend/internal/models"
)

const (
	DefaultReverseTimeout = 2 * time.Second
	DefaultIPTimeout      = 3 * time.Second
)

// Signal is the raw location information attached to a request.
type Signal struct {
	GPS     *models.Coordinates
	Address string
	IP      string
}

type Geocoder interface {
	Forward(ctx context.Context, address string) (models.GeocodeResult, error)
	Reverse(ctx context.Context, coords models.Coordinates) (models.GeocodeResult, error)
}

type Resolver struct {
	Geocoder       Geocoder
	IPLocator      geocode.IPLocator
	Fallback       models.ResolvedLocation
	ReverseTimeout time.Duration
	IPTimeout      time.Duration
	Logger         zerolog.Logger
}

// DefaultLocation is central New Delhi.
func DefaultLocation() models.ResolvedLocation {
	return FixedLocation(models.Coordinates{Latitude: 28.6139, Longitude: 77.2090}, "New Delhi", "Delhi", "India")
}

// FixedLocation builds a default-sourced location from configured values.
func FixedLocation(coords models.Coordinates, city, region, country string) models.ResolvedLocation {
	return models.ResolvedLocation{
		Coordinates: coords,
		City:        strPtr(city),
		Region:      strPtr(region),
		Country:     strPtr(country),
		Address:     strPtr(geocode.BuildGeocodeQuery(city, region, country)),
		Source:      models.SourceDefault,
	}
}

// Resolve walks GPS, manual address, IP and finally the default location.
func (r *Resolver) Resolve(ctx context.Context, sig Signal) models.ResolvedLocation {
	if sig.GPS != nil {
		if sig.GPS.Valid() {
			return r.fromGPS(ctx, *sig.GPS)
		}
		r.Logger.Debug().Float64("lat", sig.GPS.Latitude).Float64("lng", sig.GPS.Longitude).Msg("ignoring out of range gps signal")
	}

	if addr := strings.TrimSpace(sig.Address); addr != "" && r.Geocoder != nil {
		res, err := r.Geocoder.Forward(ctx, addr)
		if err == nil && res.Coordinates.Valid() {
			return FromGeocode(res, models.SourceManual)
		}
		r.Logger.Warn().Err(err).Str("address", addr).Msg("manual address lookup failed")
	}

	if sig.IP != "" {
		if loc, ok := r.fromIP(ctx, sig.IP); ok {
			return loc
		}
	}

	return r.defaultLocation()
}

// fromGPS keeps the caller's coordinates no matter what; reverse geocoding
// only adds labels and is abandoned once ReverseTimeout elapses.
func (r *Resolver) fromGPS(ctx context.Context, coords models.Coordinates) models.ResolvedLocation {
	loc := models.ResolvedLocation{Coordinates: coords, Source: models.SourceGPS}
	if r.Geocoder == nil {
		return loc
	}

	timeout := r.ReverseTimeout
	if timeout <= 0 {
		timeout = DefaultReverseTimeout
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		res models.GeocodeResult
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		res, err := r.Geocoder.Reverse(rctx, coords)
		ch <- reply{res, err}
	}()

	select {
	case rep := <-ch:
		if rep.err != nil {
			r.Logger.Warn().Err(rep.err).Msg("reverse geocode failed, using raw gps coordinates")
			return loc
		}
		loc.City = strPtr(rep.res.City)
		loc.Region = strPtr(rep.res.Region)
		loc.Country = strPtr(rep.res.Country)
		loc.Address = strPtr(rep.res.FormattedAddress)
		return loc
	case <-rctx.Done():
		r.Logger.Warn().Dur("timeout", timeout).Msg("reverse geocode timed out, using raw gps coordinates")
		return loc
	}
}

func (r *Resolver) fromIP(ctx context.Context, ip string) (models.ResolvedLocation, bool) {
	if geocode.IsPrivateIP(ip) {
		r.Logger.Debug().Str("ip", ip).Msg("private or loopback ip, skipping ip lookup")
		return models.ResolvedLocation{}, false
	}
	if r.IPLocator == nil {
		return models.ResolvedLocation{}, false
	}
	timeout := r.IPTimeout
	if timeout <= 0 {
		timeout = DefaultIPTimeout
	}
	ictx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := r.IPLocator.Locate(ictx, ip)
	if err != nil || !res.Coordinates.Valid() {
		r.Logger.Warn().Err(err).Str("ip", ip).Msg("ip geolocation failed")
		return models.ResolvedLocation{}, false
	}
	return FromGeocode(res, models.SourceIP), true
}

func (r *Resolver) defaultLocation() models.ResolvedLocation {
	loc := r.Fallback
	if loc.Source == "" && loc.Coordinates.IsZero() {
		loc = DefaultLocation()
	}
	loc.Source = models.SourceDefault
	return loc
}

// FromGeocode converts a geocoder answer into a location with the given source.
func FromGeocode(res models.GeocodeResult, source models.LocationSource) models.ResolvedLocation {
	return models.ResolvedLocation{
		Coordinates: res.Coordinates,
		City:        strPtr(res.City),
		Region:      strPtr(res.Region),
		Country:     strPtr(res.Country),
		Address:     strPtr(res.FormattedAddress),
		Source:      source,
	}
}

func strPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
