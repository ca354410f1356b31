package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"geoguard-backend/config"
)

// unwiredRequest is the Unwired Labs geolocation payload.
type unwiredRequest struct {
	Token   string        `json:"token"`
	Radio   string        `json:"radio"`
	MCC     int           `json:"mcc"`
	MNC     int           `json:"mnc"`
	Cells   []unwiredCell `json:"cells"`
	Address int           `json:"address"`
}

type unwiredCell struct {
	LAC int `json:"lac"`
	CID int `json:"cid"`
}

type unwiredResponse struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Accuracy *float64 `json:"accuracy"`
}

// UnwiredClient calls the Unwired Labs LocationAPI.
type UnwiredClient struct {
	cfg     config.ResolverConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewUnwiredClient creates a client with the configured timeout and outbound rate.
func NewUnwiredClient(cfg config.ResolverConfig) *UnwiredClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 2
	}
	return &UnwiredClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Resolve looks up q. Zero MCC/MNC fall back to the configured defaults.
func (c *UnwiredClient) Resolve(ctx context.Context, q CellQuery) (Location, error) {
	if c.cfg.APIKey == "" {
		return Location{}, fmt.Errorf("%w: api key not configured", ErrAuth)
	}
	if q.MCC == 0 {
		q.MCC = c.cfg.DefaultMCC
	}
	if q.MNC == 0 {
		q.MNC = c.cfg.DefaultMNC
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	payload := unwiredRequest{
		Token:   c.cfg.APIKey,
		Radio:   c.cfg.Radio,
		MCC:     q.MCC,
		MNC:     q.MNC,
		Cells:   []unwiredCell{{LAC: q.LAC, CID: q.CID}},
		Address: 0,
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return Location{}, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return Location{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[resolver] resolving CID %d LAC %d MCC %d MNC %d", q.CID, q.LAC, q.MCC, q.MNC)
	resp, err := c.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Location{}, fmt.Errorf("%w: failed to read response body: %v", ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return Location{}, ErrAuth
	case http.StatusTooManyRequests:
		return Location{}, ErrRateLimited
	case http.StatusBadRequest:
		return Location{}, fmt.Errorf("%w: %s", ErrBadCellData, upstreamMessage(body))
	default:
		return Location{}, fmt.Errorf("%w: received status code %d", ErrUnavailable, resp.StatusCode)
	}

	var out unwiredResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Location{}, fmt.Errorf("%w: failed to unmarshal response: %v", ErrUnavailable, err)
	}
	if out.Status != "ok" {
		return Location{}, fmt.Errorf("%w: %s", ErrBadCellData, out.Message)
	}
	if out.Lat == 0 && out.Lon == 0 {
		return Location{}, fmt.Errorf("%w: response is missing coordinates", ErrBadCellData)
	}

	log.Printf("[resolver] resolved to %.6f,%.6f", out.Lat, out.Lon)
	return Location{Lat: out.Lat, Lng: out.Lon, Accuracy: out.Accuracy}, nil
}

func upstreamMessage(body []byte) string {
	var out unwiredResponse
	if err := json.Unmarshal(body, &out); err == nil && out.Message != "" {
		return out.Message
	}
	return "bad request"
}
