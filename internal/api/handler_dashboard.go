package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/dashboard"
	"geoguard-backend/internal/response"
)

type dashboardResponse struct {
	Success bool `json:"success"`
	dashboard.Dashboard
}

// GetLiveDashboard returns the traffic-light view of every active worker at a site.
func (h *Handler) GetLiveDashboard(c *gin.Context) {
	siteID, err := uuid.Parse(c.Param("siteId"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid site id"))
		return
	}

	view, err := h.dashboard.Live(c.Request.Context(), siteID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboardResponse{Success: true, Dashboard: view})
}
