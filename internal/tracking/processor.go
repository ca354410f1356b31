// Package tracking turns location reports into attendance log rows and live
// status updates.
package tracking

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/geo"
	"geoguard-backend/internal/model"
	"geoguard-backend/internal/store"
)

// Repository is the subset of the store the processor needs.
type Repository interface {
	store.Directory
	store.LiveStatusStore
	store.AttendanceLog
}

// ExitEvent describes a worker whose live status moved from inside to outside
// their site's geofence.
type ExitEvent struct {
	WorkerID   uuid.UUID
	WorkerName string
	SiteID     uuid.UUID
	SiteName   string
	Distance   float64
	At         time.Time
}

// ExitNotifier receives geofence exit events. Implementations must not block.
type ExitNotifier interface {
	NotifyExit(ev ExitEvent)
}

// Heartbeat is a single location report for a worker.
type Heartbeat struct {
	WorkerID    uuid.UUID
	Coordinate  geo.Point
	Timestamp   time.Time
	Method      model.LocationMethod
	OfflineSync bool
	Battery     *int
	Accuracy    *float64
	Command     model.Command
}

// Result is the outcome of processing one heartbeat.
type Result struct {
	IsInside bool
	Distance float64
	LogID    int64
	// Applied is true when the live status was advanced by this report.
	Applied bool
}

// Processor records heartbeats. It is safe for concurrent use.
type Processor struct {
	repo     Repository
	notifier ExitNotifier
}

// NewProcessor creates a processor. notifier may be nil.
func NewProcessor(repo Repository, notifier ExitNotifier) *Processor {
	return &Processor{repo: repo, notifier: notifier}
}

// recorded carries what a logged heartbeat needs for a later live advance.
type recorded struct {
	result Result
	worker model.Worker
	site   model.Site
	hb     Heartbeat
}

// Process logs the heartbeat and, unless it is an offline sync, advances the
// worker's live status.
func (p *Processor) Process(ctx context.Context, hb Heartbeat) (Result, error) {
	rec, err := p.record(ctx, hb)
	if err != nil {
		return Result{}, err
	}
	if hb.OfflineSync {
		return rec.result, nil
	}

	applied, err := p.advance(ctx, rec)
	if err != nil {
		return Result{}, err
	}
	rec.result.Applied = applied
	return rec.result, nil
}

func (p *Processor) record(ctx context.Context, hb Heartbeat) (recorded, error) {
	if hb.Method == "" {
		hb.Method = model.MethodGPS
	}
	if !hb.Method.Valid() {
		return recorded{}, apperror.Validation("Invalid location method")
	}
	if hb.Timestamp.IsZero() {
		return recorded{}, apperror.Validation("timestamp is required")
	}
	if err := hb.Coordinate.Validate(); err != nil {
		return recorded{}, apperror.Wrap(err, apperror.CodeValidation, "Invalid coordinates", http.StatusBadRequest)
	}

	worker, err := p.repo.FindWorker(ctx, hb.WorkerID)
	if err != nil {
		return recorded{}, err
	}
	// Deactivated workers are treated as unknown on every channel.
	if !worker.IsActive {
		return recorded{}, apperror.ErrWorkerNotFound
	}
	if worker.SiteID == nil {
		return recorded{}, apperror.ErrWorkerUnassigned
	}
	site, err := p.repo.FindSite(ctx, *worker.SiteID)
	if err != nil {
		return recorded{}, err
	}

	fence, err := geo.CheckGeofence(hb.Coordinate, geo.Point{Lat: site.CenterLat, Lng: site.CenterLng}, site.RadiusMeters)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidArgument) {
			return recorded{}, apperror.Wrap(err, apperror.CodeValidation, "Invalid geofence", http.StatusUnprocessableEntity)
		}
		return recorded{}, err
	}

	entry := model.AttendanceLogEntry{
		WorkerID:       worker.ID,
		EventTime:      hb.Timestamp,
		Lat:            hb.Coordinate.Lat,
		Lng:            hb.Coordinate.Lng,
		DistanceMeters: fence.Distance,
		IsInside:       fence.IsInside,
		Method:         hb.Method,
		IsOfflineSync:  hb.OfflineSync,
		Command:        hb.Command,
		AccuracyMeters: hb.Accuracy,
	}
	if err := p.repo.AppendLog(ctx, &entry); err != nil {
		return recorded{}, err
	}

	return recorded{
		result: Result{IsInside: fence.IsInside, Distance: fence.Distance, LogID: entry.ID},
		worker: worker,
		site:   site,
		hb:     hb,
	}, nil
}

// advance moves the live status forward and emits an exit event when the
// worker crossed from inside to outside.
func (p *Processor) advance(ctx context.Context, rec recorded) (bool, error) {
	var (
		prev    model.LiveStatus
		hadPrev bool
	)
	if p.notifier != nil {
		var err error
		prev, hadPrev, err = p.repo.GetLiveStatus(ctx, rec.worker.ID)
		if err != nil {
			log.Printf("[tracking] could not read previous status for worker %s: %v", rec.worker.ID, err)
			hadPrev = false
		}
	}

	applied, err := p.repo.Advance(ctx, store.LiveUpdate{
		WorkerID:     rec.worker.ID,
		Lat:          rec.hb.Coordinate.Lat,
		Lng:          rec.hb.Coordinate.Lng,
		IsInside:     rec.result.IsInside,
		Timestamp:    rec.hb.Timestamp,
		BatteryLevel: rec.hb.Battery,
	})
	if err != nil {
		return false, err
	}

	if applied && hadPrev && prev.IsInside && !rec.result.IsInside {
		p.notifier.NotifyExit(ExitEvent{
			WorkerID:   rec.worker.ID,
			WorkerName: rec.worker.Name,
			SiteID:     rec.site.ID,
			SiteName:   rec.site.Name,
			Distance:   rec.result.Distance,
			At:         rec.hb.Timestamp,
		})
	}
	return applied, nil
}
