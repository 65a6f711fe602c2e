package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/carefinder/backend/internal/config"
	"github.com/carefinder/backend/internal/db"
	"github.com/carefinder/backend/internal/geocode"
	httpapi "github.com/carefinder/backend/internal/http"
	"github.com/carefinder/backend/internal/location"
	"github.com/carefinder/backend/internal/models"
	"github.com/carefinder/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	base := log.Logger
	if cfg.Env == "dev" {
		base = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	logger := base.Level(level).With().Str("service", "carefinder-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate db")
	}

	cache, backend, closeCache := buildCache(cfg, logger)
	defer closeCache()

	client := &http.Client{Timeout: cfg.GeocodeTimeout + time.Second}
	gateway := &geocode.Gateway{
		Providers: []geocode.Provider{
			&geocode.GoogleGeocoder{APIKey: cfg.GoogleMapsAPIKey, BaseURL: cfg.GoogleGeocodeURL, Client: client},
			geocode.NewNominatimGeocoder(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.NominatimRPS, client),
		},
		Cache:   cache,
		Timeout: cfg.GeocodeTimeout,
		Logger:  logger.With().Str("component", "geocode").Logger(),
	}
	if cfg.GoogleMapsAPIKey == "" {
		logger.Info().Msg("no google maps key, geocoding through nominatim only")
	}

	resolver := &location.Resolver{
		Geocoder:  gateway,
		IPLocator: &geocode.IPAPILocator{BaseURL: cfg.IPAPIURL, Client: client},
		Fallback: location.FixedLocation(
			models.Coordinates{Latitude: cfg.DefaultLat, Longitude: cfg.DefaultLng},
			cfg.DefaultCity, cfg.DefaultRegion, cfg.DefaultCountry,
		),
		ReverseTimeout: cfg.ReverseGeocodeTimeout,
		IPTimeout:      cfg.IPLookupTimeout,
		Logger:         logger.With().Str("component", "resolver").Logger(),
	}

	aliases := service.DefaultAliasTable()
	if cfg.CityAliasesFile != "" {
		aliases, err = service.LoadAliasTable(cfg.CityAliasesFile)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.CityAliasesFile).Msg("failed to load city aliases")
		}
		logger.Info().Str("path", cfg.CityAliasesFile).Msg("loaded city aliases")
	}
	nearby := &service.NearbyService{
		Store:   store,
		Matcher: service.NewMatcher(aliases, service.RandomJitter{}),
		Logger:  logger.With().Str("component", "nearby").Logger(),
	}

	router := httpapi.Router(cfg, httpapi.Deps{
		Store:        store,
		Providers:    store,
		Resolver:     resolver,
		Geocoder:     gateway,
		Nearby:       nearby,
		Cache:        cache,
		CacheBackend: backend,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("geocode_cache", backend).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

// buildCache picks Redis when REDIS_URL is set, an LRU when a size is
// configured, and the unbounded in-process map otherwise.
func buildCache(cfg config.Config, logger zerolog.Logger) (geocode.Cache, string, func()) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		client := redis.NewClient(opts)
		pctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis not reachable yet, geocode cache will miss until it is")
		}
		cache := &geocode.RedisCache{
			Client: client,
			TTL:    cfg.GeocodeCacheTTL,
			Logger: logger.With().Str("component", "geocode_cache").Logger(),
		}
		return cache, "redis", func() { _ = client.Close() }
	}
	if cfg.GeocodeCacheSize > 0 {
		cache, err := geocode.NewLRUCache(cfg.GeocodeCacheSize)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build lru cache")
		}
		return cache, "lru", func() {}
	}
	return geocode.NewMemoryCache(), "memory", func() {}
}
