package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/model"
	"geoguard-backend/internal/notification"
	"geoguard-backend/internal/response"
)

var errSubscriptionNotFound = apperror.NotFound("subscription not found")

type putSubscriptionRequest struct {
	Endpoint        string   `json:"endpoint" binding:"required"`
	P256DH          string   `json:"p256dh" binding:"required"`
	Auth            string   `json:"auth" binding:"required"`
	SubscribedSites []string `json:"subscribed_sites" binding:"dive,uuid"`
}

// PutSubscription creates or replaces a manager's push subscription and the
// sites it follows.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.MapValidationError(err))
		return
	}

	siteIDs := make([]uuid.UUID, len(req.SubscribedSites))
	for i, s := range req.SubscribedSites {
		siteIDs[i] = uuid.MustParse(s)
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}

	err := h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&subscription).Error; err != nil {
			return err
		}

		var sites []*model.Site
		if len(siteIDs) > 0 {
			if err := tx.Where("id IN ?", siteIDs).Find(&sites).Error; err != nil {
				return err
			}
			if len(sites) != len(siteIDs) {
				return apperror.ErrSiteNotFound
			}
		}

		return tx.Model(&subscription).Association("Sites").Replace(&sites)
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes a subscription and its site mappings.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.MapValidationError(err))
		return
	}

	if err := notification.DeleteSubscription(h.store.DB(), req.Endpoint); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// rawQueryParam reads key from the raw query without URL decoding; push
// endpoints are opaque and must match byte for byte.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetSubscription returns the sites a subscription follows.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		response.Error(c, apperror.Validation("endpoint is required"))
		return
	}

	var subscription model.PushSubscription
	if err := h.store.DB().Preload("Sites").First(&subscription, "endpoint = ?", raw).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, errSubscriptionNotFound)
		} else {
			response.Error(c, err)
		}
		return
	}

	siteIDs := make([]string, len(subscription.Sites))
	for i, site := range subscription.Sites {
		siteIDs[i] = site.ID.String()
	}

	c.JSON(http.StatusOK, gin.H{"subscribed_sites": siteIDs})
}
