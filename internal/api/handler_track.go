package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/geo"
	"geoguard-backend/internal/model"
	"geoguard-backend/internal/response"
	"geoguard-backend/internal/tracking"
)

// maxBatchSize bounds a single offline upload.
const maxBatchSize = 1000

type heartbeatRequest struct {
	WorkerID  string     `json:"workerId" binding:"required,uuid"`
	Lat       *float64   `json:"lat" binding:"required"`
	Lng       *float64   `json:"lng" binding:"required"`
	Timestamp *time.Time `json:"timestamp" binding:"required"`
	Method    string     `json:"method"`
	Battery   *int       `json:"battery" binding:"omitempty,min=0,max=100"`
	Accuracy  *float64   `json:"accuracy" binding:"omitempty,gte=0"`
}

type heartbeatResponse struct {
	Success  bool    `json:"success"`
	IsInside bool    `json:"isInside"`
	Distance float64 `json:"distance"`
	LogID    int64   `json:"logId"`
	Applied  bool    `json:"applied"`
}

// PostHeartbeat records one live location report from a smartphone.
func (h *Handler) PostHeartbeat(c *gin.Context) {
	var req heartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.MapValidationError(err))
		return
	}

	res, err := h.tracker.Process(c.Request.Context(), tracking.Heartbeat{
		WorkerID:   uuid.MustParse(req.WorkerID),
		Coordinate: geo.Point{Lat: *req.Lat, Lng: *req.Lng},
		Timestamp:  *req.Timestamp,
		Method:     model.LocationMethod(strings.ToUpper(req.Method)),
		Battery:    req.Battery,
		Accuracy:   req.Accuracy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, heartbeatResponse{
		Success:  true,
		IsInside: res.IsInside,
		Distance: res.Distance,
		LogID:    res.LogID,
		Applied:  res.Applied,
	})
}

type batchEntry struct {
	Lat       *float64   `json:"lat"`
	Lng       *float64   `json:"lng"`
	Timestamp *time.Time `json:"timestamp"`
}

type batchRequest struct {
	WorkerID string       `json:"workerId" binding:"required,uuid"`
	Logs     []batchEntry `json:"logs" binding:"required,min=1"`
}

type batchResponse struct {
	Success     bool                   `json:"success"`
	Processed   int                    `json:"processed"`
	Total       int                    `json:"total"`
	Message     string                 `json:"message"`
	LiveApplied bool                   `json:"liveApplied"`
	Results     []tracking.EntryResult `json:"results"`
}

// PostHeartbeatBatch reconciles reports buffered while a phone was offline.
// Entries are validated one by one; the response lists each outcome.
func (h *Handler) PostHeartbeatBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.MapValidationError(err))
		return
	}
	if len(req.Logs) > maxBatchSize {
		response.Error(c, apperror.Validation(fmt.Sprintf("Batch exceeds %d logs", maxBatchSize)))
		return
	}

	reports := make([]tracking.BatchReport, len(req.Logs))
	for i, l := range req.Logs {
		reports[i] = tracking.BatchReport{Lat: l.Lat, Lng: l.Lng, Timestamp: l.Timestamp}
	}

	out := h.tracker.Reconcile(c.Request.Context(), uuid.MustParse(req.WorkerID), reports)

	c.JSON(http.StatusOK, batchResponse{
		Success:     true,
		Processed:   out.Processed,
		Total:       out.Total,
		Message:     fmt.Sprintf("Processed %d of %d logs", out.Processed, out.Total),
		LiveApplied: out.LiveApplied,
		Results:     out.Results,
	})
}
