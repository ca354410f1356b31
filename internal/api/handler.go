package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"geoguard-backend/internal/dashboard"
	"geoguard-backend/internal/sms"
	"geoguard-backend/internal/store"
	"geoguard-backend/internal/tracking"
)

// Tracker records smartphone heartbeats.
type Tracker interface {
	Process(ctx context.Context, hb tracking.Heartbeat) (tracking.Result, error)
	Reconcile(ctx context.Context, workerID uuid.UUID, reports []tracking.BatchReport) tracking.BatchResult
}

// Attendance drives the SMS check-in flow.
type Attendance interface {
	HandleCommand(ctx context.Context, from, text string) (sms.Outcome, error)
	HandleCellReport(ctx context.Context, from, text string) (sms.Outcome, error)
	SubmitLocation(ctx context.Context, sub sms.LocationSubmission) (sms.Outcome, error)
}

// LiveView builds the manager dashboard for a site.
type LiveView interface {
	Live(ctx context.Context, siteID uuid.UUID) (dashboard.Dashboard, error)
}

// Deps are the services the handlers call into.
type Deps struct {
	Store      store.Store
	Tracker    Tracker
	Attendance Attendance
	Dashboard  LiveView
	WebPush    *webpush.Options
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	tracker    Tracker
	attendance Attendance
	dashboard  LiveView
	webpush    *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		store:      d.Store,
		tracker:    d.Tracker,
		attendance: d.Attendance,
		dashboard:  d.Dashboard,
		webpush:    d.WebPush,
	}
}
