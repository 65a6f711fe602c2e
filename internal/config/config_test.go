package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.ReverseGeocodeTimeout)
	assert.Equal(t, 10*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 28.6139, cfg.DefaultLat)
	assert.Equal(t, 77.2090, cfg.DefaultLng)
	assert.Equal(t, "New Delhi", cfg.DefaultCity)
	assert.Equal(t, 50.0, cfg.DefaultRadiusKm)
	assert.Equal(t, 10, cfg.HospitalLimit)
	assert.Equal(t, 20, cfg.DoctorLimit)
	assert.Equal(t, "carefinder-backend", cfg.NominatimUserAgent)
	assert.Zero(t, cfg.GeocodeCacheSize)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GOOGLE_MAPS_API_KEY", "k")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REVERSE_GEOCODE_TIMEOUT", "1500ms")
	t.Setenv("GEOCODE_CACHE_SIZE", "256")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "k", cfg.GoogleMapsAPIKey)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.ReverseGeocodeTimeout)
	assert.Equal(t, 256, cfg.GeocodeCacheSize)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DEFAULT_LAT", "123")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsDefaultLimitAboveMax(t *testing.T) {
	t.Setenv("MAX_LIMIT", "15")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCTOR_LIMIT 20")

	t.Setenv("DOCTOR_LIMIT", "15")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.MaxLimit)
}
