package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carefinder/backend/internal/location"
	"github.com/carefinder/backend/internal/models"
	"github.com/carefinder/backend/internal/service"
)

const maxRadiusKm = 500

type NearbyMeta struct {
	UserLocation models.ResolvedLocation `json:"userLocation"`
	SearchRadius float64                 `json:"searchRadius"`
	Count        int                     `json:"count"`
	SearchTime   string                  `json:"searchTime"`
	SearchMethod string                  `json:"searchMethod"`
	Stages       []service.SearchStage   `json:"stages"`
}

type HospitalsResponse struct {
	Hospitals []models.ProviderSummary `json:"hospitals"`
	NearbyMeta
}

type DoctorsResponse struct {
	Doctors []models.ProviderSummary `json:"doctors"`
	NearbyMeta
}

type HealthcareCounts struct {
	Hospitals int `json:"hospitals"`
	Doctors   int `json:"doctors"`
	Total     int `json:"total"`
}

type HealthcareResponse struct {
	Hospitals    []models.ProviderSummary `json:"hospitals"`
	Doctors      []models.ProviderSummary `json:"doctors"`
	UserLocation models.ResolvedLocation  `json:"userLocation"`
	SearchRadius float64                  `json:"searchRadius"`
	Counts       HealthcareCounts         `json:"counts"`
	SearchTime   string                   `json:"searchTime"`
}

type nearbyParams struct {
	origin    models.Coordinates
	radiusKm  float64
	specialty string
}

// @Summary Nearby hospitals
// @Tags nearby
// @Produce json
// @Param lat query number true "latitude"
// @Param lng query number true "longitude"
// @Param radius query number false "radius in km" default(50)
// @Param specialty query string false "specialty filter"
// @Param limit query int false "max results" default(10)
// @Success 200 {object} HospitalsResponse
// @Failure 400 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/nearby/hospitals [get]
func (h *Handler) NearbyHospitals(c *gin.Context) {
	h.nearby(c, models.KindHospital, h.Defaults.HospitalLimit)
}

// @Summary Nearby doctors
// @Tags nearby
// @Produce json
// @Param lat query number true "latitude"
// @Param lng query number true "longitude"
// @Param radius query number false "radius in km" default(50)
// @Param specialty query string false "specialization filter"
// @Param limit query int false "max results" default(20)
// @Success 200 {object} DoctorsResponse
// @Failure 400 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/nearby/doctors [get]
func (h *Handler) NearbyDoctors(c *gin.Context) {
	h.nearby(c, models.KindDoctor, h.Defaults.DoctorLimit)
}

func (h *Handler) nearby(c *gin.Context, kind models.ProviderKind, defaultLimit int) {
	start := time.Now()
	params, ok := h.parseNearby(c)
	if !ok {
		return
	}
	limit := parseIntParam(c.Query("limit"), defaultLimit, 1, h.maxLimit())

	ctx := c.Request.Context()
	origin := h.Resolver.Resolve(ctx, location.Signal{GPS: &params.origin})
	res, err := h.Nearby.Search(ctx, service.NearbyQuery{
		Kind:      kind,
		Origin:    origin,
		RadiusKm:  params.radiusKm,
		Specialty: params.specialty,
		Limit:     limit,
	})
	if err != nil {
		h.writeServiceError(c, err, "No providers found")
		return
	}

	summaries := service.Format(res.Matches)
	meta := NearbyMeta{
		UserLocation: origin,
		SearchRadius: params.radiusKm,
		Count:        len(summaries),
		SearchTime:   elapsed(start),
		SearchMethod: res.Method,
		Stages:       res.Stages,
	}
	if kind == models.KindHospital {
		c.JSON(http.StatusOK, HospitalsResponse{Hospitals: summaries, NearbyMeta: meta})
		return
	}
	c.JSON(http.StatusOK, DoctorsResponse{Doctors: summaries, NearbyMeta: meta})
}

// @Summary Nearby hospitals and doctors
// @Tags nearby
// @Produce json
// @Param lat query number true "latitude"
// @Param lng query number true "longitude"
// @Param radius query number false "radius in km" default(50)
// @Param specialty query string false "specialty filter"
// @Param hospitalLimit query int false "max hospitals" default(10)
// @Param doctorLimit query int false "max doctors" default(20)
// @Success 200 {object} HealthcareResponse
// @Failure 400 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/nearby/healthcare [get]
func (h *Handler) NearbyHealthcare(c *gin.Context) {
	start := time.Now()
	params, ok := h.parseNearby(c)
	if !ok {
		return
	}
	hospitalLimit := parseIntParam(c.Query("hospitalLimit"), h.Defaults.HospitalLimit, 1, h.maxLimit())
	doctorLimit := parseIntParam(c.Query("doctorLimit"), h.Defaults.DoctorLimit, 1, h.maxLimit())

	ctx := c.Request.Context()
	origin := h.Resolver.Resolve(ctx, location.Signal{GPS: &params.origin})
	base := service.NearbyQuery{Origin: origin, RadiusKm: params.radiusKm, Specialty: params.specialty}
	hq, dq := base, base
	hq.Limit, dq.Limit = hospitalLimit, doctorLimit

	hres, dres, err := h.Nearby.SearchBoth(ctx, hq, dq)
	if err != nil {
		h.writeServiceError(c, err, "No providers found")
		return
	}

	hospitals := service.Format(hres.Matches)
	doctors := service.Format(dres.Matches)
	c.JSON(http.StatusOK, HealthcareResponse{
		Hospitals:    hospitals,
		Doctors:      doctors,
		UserLocation: origin,
		SearchRadius: params.radiusKm,
		Counts: HealthcareCounts{
			Hospitals: len(hospitals),
			Doctors:   len(doctors),
			Total:     len(hospitals) + len(doctors),
		},
		SearchTime: elapsed(start),
	})
}

// parseNearby reads lat, lng, radius and specialty. It writes a 400 and
// reports false when the coordinates are missing or out of range.
func (h *Handler) parseNearby(c *gin.Context) (nearbyParams, bool) {
	lat, latOK := parseFloatParam(c.Query("lat"))
	lng, lngOK := parseFloatParam(c.Query("lng"))
	if !latOK || !lngOK {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lng query parameters are required", nil)
		return nearbyParams{}, false
	}
	origin := models.Coordinates{Latitude: lat, Longitude: lng}
	if !origin.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat must be in [-90,90] and lng in [-180,180]", gin.H{"lat": lat, "lng": lng})
		return nearbyParams{}, false
	}

	radius := h.Defaults.RadiusKm
	if radius <= 0 {
		radius = 50
	}
	if r, ok := parseFloatParam(c.Query("radius")); ok && r > 0 {
		radius = math.Min(r, maxRadiusKm)
	}
	return nearbyParams{
		origin:    origin,
		radiusKm:  radius,
		specialty: strings.TrimSpace(c.Query("specialty")),
	}, true
}

func (h *Handler) maxLimit() int {
	if h.Defaults.MaxLimit < 1 {
		return 100
	}
	return h.Defaults.MaxLimit
}

// parseFloatParam reports false for empty, malformed or non-finite input.
func parseFloatParam(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseIntParam clamps to [min, max]; empty or malformed input means
// defaultVal, which is clamped too.
func parseIntParam(raw string, defaultVal, min, max int) int {
	val, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		val = defaultVal
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func elapsed(start time.Time) string {
	return fmt.Sprintf("%dms", time.Since(start).Milliseconds())
}
