package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"geoguard-backend/internal/model"
	"geoguard-backend/internal/tracking"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Payload is the JSON body delivered to the manager's service worker.
type Payload struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	SiteID   string `json:"siteId"`
	WorkerID string `json:"workerId"`
}

// WorkerPool delivers geofence exit alerts to the managers subscribed to a site.
type WorkerPool struct {
	size    int
	jobs    chan tracking.ExitEvent
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool. queueSize bounds the number of
// pending alerts; further alerts are dropped.
func NewWorkerPool(size, queueSize int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan tracking.ExitEvent, queueSize),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("[push] worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			wp.sendExitAlerts(ctx, ev)
		case <-ctx.Done():
			log.Printf("[push] worker %d shutting down", id)
			return
		}
	}
}

// NotifyExit queues an alert without blocking. It implements tracking.ExitNotifier.
func (wp *WorkerPool) NotifyExit(ev tracking.ExitEvent) {
	select {
	case wp.jobs <- ev:
	default:
		log.Printf("[push] alert queue full; dropping exit alert for worker %s", ev.WorkerID)
	}
}

// sendExitAlerts fetches the site's subscriptions and sends one alert to each.
func (wp *WorkerPool) sendExitAlerts(ctx context.Context, ev tracking.ExitEvent) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_site_mapping ssm ON ssm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("ssm.site_id = ?", ev.SiteID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("[push] error fetching subscriptions for site %s: %v", ev.SiteID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(exitPayload(ev))
	if err != nil {
		log.Printf("[push] failed to encode alert: %v", err)
		return
	}

	log.Printf("[push] sending %d exit alerts for worker %s", len(subscriptions), ev.WorkerID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func exitPayload(ev tracking.ExitEvent) Payload {
	name := ev.WorkerName
	if name == "" {
		name = ev.WorkerID.String()
	}
	return Payload{
		Title:    "Geofence exit",
		Body:     fmt.Sprintf("%s left %s (%dm from site)", name, ev.SiteName, int(math.Round(ev.Distance))),
		SiteID:   ev.SiteID.String(),
		WorkerID: ev.WorkerID.String(),
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("[push] error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("[push] subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := DeleteSubscription(wp.db.WithContext(ctx), sub.Endpoint); err != nil {
			log.Printf("[push] failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}

// DeleteSubscription removes a subscription together with its site mappings.
func DeleteSubscription(db *gorm.DB, endpoint string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM subscription_site_mapping WHERE push_subscription_endpoint = ?", endpoint).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error
	})
}
