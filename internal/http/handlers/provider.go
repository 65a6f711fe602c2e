package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carefinder/backend/internal/models"
)

type ProviderResponse struct {
	Provider models.Provider `json:"provider"`
}

// @Summary Provider details
// @Tags providers
// @Produce json
// @Param id path string true "provider id"
// @Success 200 {object} ProviderResponse
// @Failure 404 {object} map[string]any
// @Router /api/providers/{id} [get]
func (h *Handler) GetProvider(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "id is required", nil)
		return
	}
	p, err := h.Providers.GetProvider(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err, "Provider not found")
		return
	}
	c.JSON(http.StatusOK, ProviderResponse{Provider: p})
}
