package tracking

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/geo"
	"geoguard-backend/internal/model"
)

// BatchReport is one entry of an offline upload. Any field may be missing.
type BatchReport struct {
	Lat       *float64
	Lng       *float64
	Timestamp *time.Time
}

// EntryResult is the per-entry outcome of a batch.
type EntryResult struct {
	Index    int     `json:"index"`
	Success  bool    `json:"success"`
	IsInside bool    `json:"isInside,omitempty"`
	Distance float64 `json:"distance,omitempty"`
	LogID    int64   `json:"logId,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// BatchResult summarises a reconciled batch.
type BatchResult struct {
	Results     []EntryResult
	Processed   int
	Total       int
	LiveApplied bool
}

// Reconcile logs every valid report as an offline sync, then advances the live
// status once using the newest successfully logged report. A failing entry does
// not stop the batch.
func (p *Processor) Reconcile(ctx context.Context, workerID uuid.UUID, reports []BatchReport) BatchResult {
	out := BatchResult{
		Results: make([]EntryResult, 0, len(reports)),
		Total:   len(reports),
	}

	var (
		newest recorded
		found  bool
	)
	for i, r := range reports {
		if r.Lat == nil || r.Lng == nil || r.Timestamp == nil {
			out.Results = append(out.Results, EntryResult{Index: i, Error: "Missing lat, lng or timestamp"})
			continue
		}

		rec, err := p.record(ctx, Heartbeat{
			WorkerID:    workerID,
			Coordinate:  geo.Point{Lat: *r.Lat, Lng: *r.Lng},
			Timestamp:   *r.Timestamp,
			Method:      model.MethodGPS,
			OfflineSync: true,
		})
		if err != nil {
			out.Results = append(out.Results, EntryResult{Index: i, Error: apperror.From(err).Message})
			continue
		}

		out.Processed++
		out.Results = append(out.Results, EntryResult{
			Index:    i,
			Success:  true,
			IsInside: rec.result.IsInside,
			Distance: rec.result.Distance,
			LogID:    rec.result.LogID,
		})
		if !found || rec.hb.Timestamp.After(newest.hb.Timestamp) {
			newest = rec
			found = true
		}
	}

	if !found {
		return out
	}
	applied, err := p.advance(ctx, newest)
	if err != nil {
		log.Printf("[tracking] batch live update failed for worker %s: %v", workerID, err)
		return out
	}
	out.LiveApplied = applied
	return out
}
