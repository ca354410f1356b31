// Package sms implements the SMS command channel: outbound gateway, the
// check-in/check-out session state machine, and session cleanup.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"geoguard-backend/config"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, text string) error
}

// NewSender returns a gateway sender, or a log-only sender when the gateway
// is not configured.
func NewSender(cfg config.SMSConfig) Sender {
	if cfg.GatewayURL == "" || cfg.APIKey == "" || cfg.DeviceID == "" {
		log.Println("[sms] gateway not configured; outbound messages will only be logged")
		return LogSender{}
	}
	return NewGatewaySender(cfg)
}

// GatewaySender posts messages to a TextBee-compatible device gateway.
type GatewaySender struct {
	cfg     config.SMSConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewGatewaySender creates a sender with the configured timeout and send rate.
func NewGatewaySender(cfg config.SMSConfig) *GatewaySender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	return &GatewaySender{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

type sendRequest struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

func (g *GatewaySender) Send(ctx context.Context, phone, text string) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("sms rate limiter: %w", err)
	}

	jsonBody, err := json.Marshal(sendRequest{Recipients: []string{phone}, Message: text})
	if err != nil {
		return fmt.Errorf("failed to marshal sms payload: %w", err)
	}

	url := fmt.Sprintf("%s/gateway/devices/%s/sendSMS", strings.TrimRight(g.cfg.GatewayURL, "/"), g.cfg.DeviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// LogSender writes outbound messages to the standard logger.
type LogSender struct{}

func (LogSender) Send(_ context.Context, phone, text string) error {
	log.Printf("[sms] to %s: %q", phone, text)
	return nil
}
