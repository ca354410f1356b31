package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"geoguard-backend/config"
	"geoguard-backend/internal/dashboard"
	"geoguard-backend/internal/db"
	"geoguard-backend/internal/sms"
	"geoguard-backend/internal/store"
	"geoguard-backend/internal/tracking"
)

const testAdminSecret = "s3cret"

func init() {
	gin.SetMode(gin.TestMode)
}

type mockTracker struct {
	ProcessFunc   func(ctx context.Context, hb tracking.Heartbeat) (tracking.Result, error)
	ReconcileFunc func(ctx context.Context, workerID uuid.UUID, reports []tracking.BatchReport) tracking.BatchResult
}

func (m *mockTracker) Process(ctx context.Context, hb tracking.Heartbeat) (tracking.Result, error) {
	return m.ProcessFunc(ctx, hb)
}

func (m *mockTracker) Reconcile(ctx context.Context, workerID uuid.UUID, reports []tracking.BatchReport) tracking.BatchResult {
	return m.ReconcileFunc(ctx, workerID, reports)
}

type mockAttendance struct {
	HandleCommandFunc    func(ctx context.Context, from, text string) (sms.Outcome, error)
	HandleCellReportFunc func(ctx context.Context, from, text string) (sms.Outcome, error)
	SubmitLocationFunc   func(ctx context.Context, sub sms.LocationSubmission) (sms.Outcome, error)
}

func (m *mockAttendance) HandleCommand(ctx context.Context, from, text string) (sms.Outcome, error) {
	return m.HandleCommandFunc(ctx, from, text)
}

func (m *mockAttendance) HandleCellReport(ctx context.Context, from, text string) (sms.Outcome, error) {
	return m.HandleCellReportFunc(ctx, from, text)
}

func (m *mockAttendance) SubmitLocation(ctx context.Context, sub sms.LocationSubmission) (sms.Outcome, error) {
	return m.SubmitLocationFunc(ctx, sub)
}

type mockLiveView struct {
	LiveFunc func(ctx context.Context, siteID uuid.UUID) (dashboard.Dashboard, error)
}

func (m *mockLiveView) Live(ctx context.Context, siteID uuid.UUID) (dashboard.Dashboard, error) {
	return m.LiveFunc(ctx, siteID)
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		AdminSecret:           testAdminSecret,
		RateLimitPerSec:       1000,
		RateLimitBurst:        1000,
		DashboardCacheSeconds: 15,
	}
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	gdb, err := db.OpenSQLiteMemory(uuid.NewString())
	require.NoError(t, err)
	return store.NewGormStore(gdb)
}

func newTestRouter(d Deps) *gin.Engine {
	return NewRouter(NewHandler(d), testServerConfig())
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
