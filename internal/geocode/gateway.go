package geocode

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carefinder/backend/internal/models"
)

const DefaultTimeout = 10 * time.Second

// Gateway tries its providers in order until one answers. Provider specific
// errors never leave the gateway: callers see a result, ErrNotFound or
// ErrUnavailable.
type Gateway struct {
	Providers []Provider
	Cache     Cache
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// Forward geocodes free text. Successful lookups are cached under the
// normalized address.
func (g *Gateway) Forward(ctx context.Context, address string) (models.GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return models.GeocodeResult{}, ErrNotFound
	}
	key := CacheKey(address)
	if g.Cache != nil {
		if cached, ok := g.Cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	res, err := g.try(ctx, "forward", func(ctx context.Context, p Provider) (models.GeocodeResult, error) {
		return p.Forward(ctx, address)
	})
	if err != nil {
		return models.GeocodeResult{}, err
	}
	if g.Cache != nil {
		g.Cache.Put(ctx, key, res)
	}
	return res, nil
}

// Reverse is never cached; nearby coordinates rarely repeat key for key.
func (g *Gateway) Reverse(ctx context.Context, coords models.Coordinates) (models.GeocodeResult, error) {
	res, err := g.try(ctx, "reverse", func(ctx context.Context, p Provider) (models.GeocodeResult, error) {
		return p.Reverse(ctx, coords)
	})
	if err != nil {
		return models.GeocodeResult{}, err
	}
	if res.Coordinates.IsZero() {
		res.Coordinates = coords
	}
	return res, nil
}

// try gives each configured provider in turn at most Timeout. Under a caller
// deadline, an attempt is also capped at an even share of what is left, so a
// hanging provider cannot starve the ones after it.
func (g *Gateway) try(ctx context.Context, op string, call func(context.Context, Provider) (models.GeocodeResult, error)) (models.GeocodeResult, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var providers []Provider
	for _, p := range g.Providers {
		if c, ok := p.(configurable); ok && !c.Configured() {
			continue
		}
		providers = append(providers, p)
	}

	notFound := false
	for i, p := range providers {
		if ctx.Err() != nil {
			break
		}
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout(ctx, timeout, len(providers)-i))
		start := time.Now()
		res, err := call(attemptCtx, p)
		cancel()
		if err == nil {
			if res.Provider == "" {
				res.Provider = p.Name()
			}
			g.Logger.Debug().Str("op", op).Str("provider", p.Name()).Dur("latency", time.Since(start)).Msg("geocode ok")
			return res, nil
		}
		if errors.Is(err, ErrNotFound) {
			notFound = true
		}
		g.Logger.Warn().Err(err).Str("op", op).Str("provider", p.Name()).Dur("latency", time.Since(start)).Msg("geocode provider failed")
	}

	if notFound {
		return models.GeocodeResult{}, ErrNotFound
	}
	return models.GeocodeResult{}, ErrUnavailable
}

func attemptTimeout(ctx context.Context, limit time.Duration, remaining int) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok || remaining <= 1 {
		return limit
	}
	if share := time.Until(deadline) / time.Duration(remaining); share < limit {
		return share
	}
	return limit
}
