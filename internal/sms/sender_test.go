package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoguard-backend/config"
)

func TestGatewaySender_Send(t *testing.T) {
	var (
		gotPath string
		gotKey  string
		gotBody sendRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"success":true}}`))
	}))
	defer server.Close()

	s := NewGatewaySender(config.SMSConfig{
		GatewayURL: server.URL + "/api/v1/",
		APIKey:     "secret",
		DeviceID:   "dev-1",
		Timeout:    time.Second,
		RatePerSec: 100,
	})

	err := s.Send(context.Background(), "+919876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/gateway/devices/dev-1/sendSMS", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, []string{"+919876543210"}, gotBody.Recipients)
	assert.Equal(t, "hello", gotBody.Message)
}

func TestGatewaySender_Send_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer server.Close()

	s := NewGatewaySender(config.SMSConfig{GatewayURL: server.URL, APIKey: "bad", DeviceID: "dev-1"})

	err := s.Send(context.Background(), "+919876543210", "hello")
	assert.ErrorContains(t, err, "401")
	assert.ErrorContains(t, err, "invalid api key")
}

func TestNewSender_FallsBackToLog(t *testing.T) {
	s := NewSender(config.SMSConfig{})
	_, ok := s.(LogSender)
	assert.True(t, ok)
	assert.NoError(t, s.Send(context.Background(), "+91", "x"))

	s = NewSender(config.SMSConfig{GatewayURL: "http://gw", APIKey: "k", DeviceID: "d"})
	_, ok = s.(*GatewaySender)
	assert.True(t, ok)
}
