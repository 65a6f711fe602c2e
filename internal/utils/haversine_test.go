package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carefinder/backend/internal/models"
)

var (
	newDelhi  = models.Coordinates{Latitude: 28.6139, Longitude: 77.2090}
	mumbai    = models.Coordinates{Latitude: 19.0760, Longitude: 72.8777}
	bengaluru = models.Coordinates{Latitude: 12.9716, Longitude: 77.5946}
)

func TestHaversineSamePointIsZero(t *testing.T) {
	for _, c := range []models.Coordinates{newDelhi, mumbai, bengaluru, {Latitude: -33.86, Longitude: 151.2}} {
		assert.Equal(t, 0.0, HaversineKm(c, c))
	}
}

func TestHaversineSymmetric(t *testing.T) {
	assert.InDelta(t, HaversineKm(newDelhi, mumbai), HaversineKm(mumbai, newDelhi), 1e-9)
	assert.InDelta(t, HaversineKm(bengaluru, mumbai), HaversineKm(mumbai, bengaluru), 1e-9)
}

func TestHaversineKnownCityPair(t *testing.T) {
	d := HaversineKm(newDelhi, mumbai)
	require.InEpsilon(t, 1153.0, d, 0.01)
}

func TestHaversineNaNPropagates(t *testing.T) {
	d := HaversineKm(models.Coordinates{Latitude: math.NaN()}, newDelhi)
	assert.True(t, math.IsNaN(d))
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	box := BoundingBoxAround(newDelhi, 50)
	north := models.Coordinates{Latitude: box.MaxLat, Longitude: newDelhi.Longitude}
	east := models.Coordinates{Latitude: newDelhi.Latitude, Longitude: box.MaxLng}
	assert.InDelta(t, 50, HaversineKm(newDelhi, north), 0.5)
	assert.GreaterOrEqual(t, HaversineKm(newDelhi, east), 50.0)
	assert.Less(t, box.MinLat, newDelhi.Latitude)
	assert.Less(t, box.MinLng, newDelhi.Longitude)
}

func TestBoundingBoxNearPoleSpansAllLongitudes(t *testing.T) {
	box := BoundingBoxAround(models.Coordinates{Latitude: 89.99, Longitude: 10}, 100)
	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
	assert.Equal(t, 90.0, box.MaxLat)
}

func TestHashToUnitStableAndInRange(t *testing.T) {
	a := HashToUnit("hospital-1")
	assert.Equal(t, a, HashToUnit("hospital-1"))
	assert.GreaterOrEqual(t, a, 0.0)
	assert.Less(t, a, 1.0)
}
