package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"geoguard-backend/config"
	"geoguard-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Dashboard responses are short-lived so managers see near-live state.
	ttl := time.Duration(cfg.DashboardCacheSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)
	admin := mw.AdminSecret(cfg.AdminSecret)

	r.GET("/healthz", handler.Healthz)

	// The SMS gateway posts every inbound message from the same address, so
	// webhooks sit outside the per-IP limiter.
	webhooks := r.Group("/api")
	{
		webhooks.POST("/webhooks/sms", handler.SMSWebhook)
		webhooks.POST("/track/sms", handler.CellReport)
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/track/heartbeat", handler.PostHeartbeat)
		api.POST("/track/heartbeat/batch", handler.PostHeartbeatBatch)
		api.POST("/attendance/location", handler.PostLocation)

		api.GET("/manager/live-dashboard/:siteId", admin, caching, handler.GetLiveDashboard)

		api.GET("/subscriptions", admin, handler.GetSubscription)
		api.PUT("/subscriptions", admin, handler.PutSubscription)
		api.DELETE("/subscriptions", admin, handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
