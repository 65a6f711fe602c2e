package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/carefinder/backend/internal/db"
	"github.com/carefinder/backend/internal/geocode"
	"github.com/carefinder/backend/internal/location"
	"github.com/carefinder/backend/internal/models"
	"github.com/carefinder/backend/internal/service"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ProviderLookup interface {
	GetProvider(ctx context.Context, id string) (models.Provider, error)
}

type LocationResolver interface {
	Resolve(ctx context.Context, sig location.Signal) models.ResolvedLocation
}

type NearbySearcher interface {
	Search(ctx context.Context, q service.NearbyQuery) (service.SearchResult, error)
	SearchBoth(ctx context.Context, hospitals, doctors service.NearbyQuery) (service.SearchResult, service.SearchResult, error)
}

// NearbyDefaults holds the fallbacks for nearby query parameters.
type NearbyDefaults struct {
	RadiusKm      float64
	HospitalLimit int
	DoctorLimit   int
	MaxLimit      int
}

type Handler struct {
	Store        Pinger
	Providers    ProviderLookup
	Resolver     LocationResolver
	Geocoder     location.Geocoder
	Nearby       NearbySearcher
	Cache        geocode.Cache
	CacheBackend string
	Defaults     NearbyDefaults
	Validator    *validator.Validate
	Logger       zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeServiceError maps the sentinel errors of the geocode and service
// packages onto the HTTP error envelope.
func (h *Handler) writeServiceError(c *gin.Context, err error, notFoundMessage string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", err.Error())
	case errors.Is(err, geocode.ErrNotFound), errors.Is(err, db.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", notFoundMessage, nil)
	case errors.Is(err, geocode.ErrUnavailable):
		writeError(c, http.StatusBadGateway, "GEOCODING_UNAVAILABLE", "Geocoding providers are unavailable", nil)
	case errors.Is(err, service.ErrCandidateFetchFailed):
		writeError(c, http.StatusInternalServerError, "CANDIDATE_FETCH_FAILED", "Failed to load providers", nil)
	default:
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", nil)
	}
}
