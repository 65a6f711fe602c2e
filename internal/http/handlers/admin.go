package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carefinder/backend/internal/geocode"
)

type CacheStatsResponse struct {
	Backend string `json:"backend"`
	// Entries is null when the backend cannot count its keys.
	Entries *int `json:"entries"`
}

// @Summary Geocode cache stats
// @Tags admin
// @Produce json
// @Param X-Admin-Key header string true "admin key"
// @Success 200 {object} CacheStatsResponse
// @Failure 401 {object} map[string]any
// @Router /api/admin/geocode-cache [get]
func (h *Handler) CacheStats(c *gin.Context) {
	resp := CacheStatsResponse{Backend: h.CacheBackend}
	if sizer, ok := h.Cache.(geocode.Sizer); ok {
		n, err := sizer.Len(c.Request.Context())
		if err != nil {
			writeError(c, http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", "Failed to read cache size", err.Error())
			return
		}
		resp.Entries = &n
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Purge geocode cache
// @Tags admin
// @Produce json
// @Param X-Admin-Key header string true "admin key"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 501 {object} map[string]any
// @Router /api/admin/geocode-cache [delete]
func (h *Handler) PurgeCache(c *gin.Context) {
	purger, ok := h.Cache.(geocode.Purger)
	if !ok {
		writeError(c, http.StatusNotImplemented, "NOT_SUPPORTED", "Cache backend cannot be purged", gin.H{"backend": h.CacheBackend})
		return
	}
	if err := purger.Purge(c.Request.Context()); err != nil {
		writeError(c, http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", "Failed to purge cache", err.Error())
		return
	}
	h.Logger.Info().Str("backend", h.CacheBackend).Msg("geocode cache purged")
	c.JSON(http.StatusOK, gin.H{"status": "purged"})
}
