// Package dashboard builds the manager's live view of a site.
package dashboard

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"geoguard-backend/internal/model"
)

// Color is the traffic-light state shown for a worker.
type Color string

const (
	Green Color = "GREEN"
	Red   Color = "RED"
)

const (
	staleAfterMinutes   = 30
	lowBatteryThreshold = 20
	offlineSuffix       = " (OFFLINE?)"
)

// WorkerStatus pairs a worker with its live snapshot. Live is nil for a
// worker that has never reported.
type WorkerStatus struct {
	Worker model.Worker
	Live   *model.LiveStatus
}

// WorkerView is one dashboard row.
type WorkerView struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Type           model.PhoneType `json:"type"`
	Status         Color           `json:"status"`
	LastSeenText   string          `json:"lastSeenText"`
	BatteryWarning bool            `json:"batteryWarning"`
	BatteryLevel   *int            `json:"batteryLevel"`
}

// Summary counts workers by color.
type Summary struct {
	Total   int `json:"total"`
	Inside  int `json:"inside"`
	Outside int `json:"outside"`
}

// Dashboard is the projected live view of one site.
type Dashboard struct {
	SiteID      uuid.UUID    `json:"siteId"`
	SiteName    string       `json:"siteName"`
	Workers     []WorkerView `json:"workers"`
	Summary     Summary      `json:"summary"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Project derives the dashboard for site from worker snapshots as of now.
// It performs no I/O.
func Project(site model.Site, statuses []WorkerStatus, now time.Time) Dashboard {
	d := Dashboard{
		SiteID:      site.ID,
		SiteName:    site.Name,
		Workers:     make([]WorkerView, 0, len(statuses)),
		GeneratedAt: now,
	}

	for _, ws := range statuses {
		v := WorkerView{
			ID:           ws.Worker.ID,
			Name:         ws.Worker.Name,
			Type:         ws.Worker.PhoneType,
			Status:       Red,
			LastSeenText: "Never",
		}
		smart := ws.Worker.PhoneType == model.PhoneSmart

		if ws.Live != nil {
			text, stale := Freshness(ws.Live.LastSeen, now)
			if stale && smart {
				text += offlineSuffix
			}
			v.LastSeenText = text
			if ws.Live.IsInside && !stale {
				v.Status = Green
			}
			v.BatteryLevel = ws.Live.BatteryLevel
			v.BatteryWarning = smart && ws.Live.BatteryLevel != nil && *ws.Live.BatteryLevel < lowBatteryThreshold
		}

		if v.Status == Green {
			d.Summary.Inside++
		} else {
			d.Summary.Outside++
		}
		d.Workers = append(d.Workers, v)
	}
	d.Summary.Total = len(d.Workers)
	return d
}

// Freshness renders how long ago lastSeen was and whether that is stale.
func Freshness(lastSeen, now time.Time) (string, bool) {
	minutes := int(now.Sub(lastSeen) / time.Minute)
	switch {
	case minutes < 1:
		return "Just now", false
	case minutes < 60:
		return fmt.Sprintf("%d %s ago", minutes, plural(minutes, "min")), minutes > staleAfterMinutes
	default:
		hours := minutes / 60
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour")), true
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
