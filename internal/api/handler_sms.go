package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/geo"
	"geoguard-backend/internal/model"
	"geoguard-backend/internal/response"
	"geoguard-backend/internal/sms"
)

// inboundSMS accepts the field names used by the gateways we have integrated.
type inboundSMS struct {
	Sender  string `json:"sender" form:"sender"`
	From    string `json:"from" form:"from"`
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`
	Text    string `json:"text" form:"text"`
	Body    string `json:"body" form:"body"`
}

func (m inboundSMS) sender() string {
	return firstNonEmpty(m.Sender, m.From, m.Phone)
}

func (m inboundSMS) text() string {
	return firstNonEmpty(m.Message, m.Text, m.Body)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var errMissingSMSFields = apperror.Validation("Missing required fields: sender, message")

// SMSWebhook receives worker commands (CHECKIN, CHECKOUT, STATUS, HELP).
func (h *Handler) SMSWebhook(c *gin.Context) {
	h.handleInbound(c, h.attendance.HandleCommand)
}

// CellReport receives the cell tower report a feature phone sends back.
func (h *Handler) CellReport(c *gin.Context) {
	h.handleInbound(c, h.attendance.HandleCellReport)
}

func (h *Handler) handleInbound(c *gin.Context, handle func(ctx context.Context, from, text string) (sms.Outcome, error)) {
	var req inboundSMS
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, apperror.MapValidationError(err))
		return
	}
	from, text := req.sender(), req.text()
	if from == "" || text == "" {
		response.Error(c, errMissingSMSFields)
		return
	}

	out, err := handle(c.Request.Context(), from, text)
	if err != nil && out.Status == sms.StatusError {
		c.JSON(http.StatusInternalServerError, out)
		return
	}
	c.JSON(http.StatusOK, out)
}

type locationRequest struct {
	Session  string   `json:"session" binding:"required"`
	Lat      *float64 `json:"lat" binding:"required"`
	Lng      *float64 `json:"lng" binding:"required"`
	Accuracy *float64 `json:"accuracy" binding:"omitempty,gte=0"`
	Method   string   `json:"method"`
}

type locationResponse struct {
	Success bool `json:"success"`
	sms.Outcome
}

// PostLocation fulfils an SMS session with the position the browser captured.
func (h *Handler) PostLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.MapValidationError(err))
		return
	}

	out, err := h.attendance.SubmitLocation(c.Request.Context(), sms.LocationSubmission{
		Token:    strings.TrimSpace(req.Session),
		Point:    geo.Point{Lat: *req.Lat, Lng: *req.Lng},
		Accuracy: req.Accuracy,
		Method:   model.LocationMethod(strings.ToUpper(req.Method)),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, locationResponse{Success: true, Outcome: out})
}
