package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carefinder/backend/internal/location"
	"github.com/carefinder/backend/internal/models"
)

type ReverseGeocodeRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

type GeocodeRequest struct {
	Address string `json:"address" validate:"required,max=500"`
}

type GeocodeResponse struct {
	Coordinates models.Coordinates `json:"coordinates"`
	Address     string             `json:"address"`
	City        string             `json:"city"`
	State       string             `json:"state"`
	Country     string             `json:"country"`
	Postcode    string             `json:"postcode"`
}

type LocationResponse struct {
	Location models.ResolvedLocation `json:"location"`
}

// @Summary Current location
// @Description Best-effort location from optional GPS coordinates or address, else the client IP, else the default location
// @Tags location
// @Produce json
// @Param lat query number false "latitude"
// @Param lng query number false "longitude"
// @Param address query string false "free-text address"
// @Success 200 {object} LocationResponse
// @Router /api/location/current [get]
func (h *Handler) CurrentLocation(c *gin.Context) {
	sig := location.Signal{
		Address: strings.TrimSpace(c.Query("address")),
		IP:      c.ClientIP(),
	}
	lat, latOK := parseFloatParam(c.Query("lat"))
	lng, lngOK := parseFloatParam(c.Query("lng"))
	if latOK && lngOK {
		sig.GPS = &models.Coordinates{Latitude: lat, Longitude: lng}
	}

	loc := h.Resolver.Resolve(c.Request.Context(), sig)
	c.JSON(http.StatusOK, LocationResponse{Location: loc})
}

// @Summary Reverse geocode
// @Tags location
// @Accept json
// @Produce json
// @Param request body ReverseGeocodeRequest true "coordinates"
// @Success 200 {object} LocationResponse
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/location/reverse-geocode [post]
func (h *Handler) ReverseGeocode(c *gin.Context) {
	var req ReverseGeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lng are required", err.Error())
		return
	}

	coords := models.Coordinates{Latitude: *req.Lat, Longitude: *req.Lng}
	res, err := h.Geocoder.Reverse(c.Request.Context(), coords)
	if err != nil {
		h.writeServiceError(c, err, "No address found for these coordinates")
		return
	}
	c.JSON(http.StatusOK, LocationResponse{Location: location.FromGeocode(res, models.SourceGPS)})
}

// @Summary Forward geocode
// @Tags location
// @Accept json
// @Produce json
// @Param request body GeocodeRequest true "address"
// @Success 200 {object} GeocodeResponse
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/location/geocode [post]
func (h *Handler) Geocode(c *gin.Context) {
	var req GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	req.Address = strings.TrimSpace(req.Address)
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "address is required", err.Error())
		return
	}

	res, err := h.Geocoder.Forward(c.Request.Context(), req.Address)
	if err != nil {
		h.writeServiceError(c, err, "Address not found")
		return
	}
	c.JSON(http.StatusOK, GeocodeResponse{
		Coordinates: res.Coordinates,
		Address:     res.FormattedAddress,
		City:        res.City,
		State:       res.Region,
		Country:     res.Country,
		Postcode:    res.Postcode,
	})
}
