package utils

import (
	"math"

	"github.com/carefinder/backend/internal/models"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between a and b.
// Inputs are not range checked; NaN in, NaN out.
func HaversineKm(a, b models.Coordinates) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLon := degreesToRadians(b.Longitude - a.Longitude)

	lat1R := degreesToRadians(a.Latitude)
	lat2R := degreesToRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1R)*math.Cos(lat2R)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// BoundingBoxAround returns a box slightly larger than radiusKm around
// center. Near the poles the longitude span is widened to the full range.
func BoundingBoxAround(center models.Coordinates, radiusKm float64) models.BoundingBox {
	const kmPerDegree = 111.0
	dLat := radiusKm / kmPerDegree
	box := models.BoundingBox{
		MinLat: math.Max(center.Latitude-dLat, -90),
		MaxLat: math.Min(center.Latitude+dLat, 90),
		MinLng: -180,
		MaxLng: 180,
	}
	cosLat := math.Cos(degreesToRadians(center.Latitude))
	if cosLat > 0.01 {
		dLng := radiusKm / (kmPerDegree * cosLat)
		if dLng < 180 {
			box.MinLng = center.Longitude - dLng
			box.MaxLng = center.Longitude + dLng
		}
	}
	return box
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
