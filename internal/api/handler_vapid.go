package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/response"
)

var errVAPIDUnset = apperror.New(apperror.CodeUpstreamUnavailable, "vapid keys are not configured", http.StatusServiceUnavailable)

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		response.Error(c, errVAPIDUnset)
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}

// Healthz reports whether the database answers.
func (h *Handler) Healthz(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		response.Error(c, apperror.Wrap(err, apperror.CodeUpstreamUnavailable, "database unavailable", http.StatusServiceUnavailable))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
