package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"geoguard-backend/internal/tracking"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func exitEvent(siteID uuid.UUID) tracking.ExitEvent {
	return tracking.ExitEvent{
		WorkerID:   uuid.New(),
		WorkerName: "Ravi",
		SiteID:     siteID,
		SiteName:   "Chennai Central",
		Distance:   528.4,
		At:         time.Now(),
	}
}

const subscriptionQuery = `SELECT .* FROM "push_subscriptions".*JOIN subscription_site_mapping.*WHERE ssm\.site_id = \$1`

func TestWorkerPool_NotifyExit(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, 1, db, &webpush.Options{})
	ev := exitEvent(uuid.New())

	wp.NotifyExit(ev)

	select {
	case job := <-wp.jobs:
		assert.Equal(t, ev.WorkerID, job.WorkerID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_NotifyExit_DropsWhenFull(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, 1, db, &webpush.Options{})

	done := make(chan struct{})
	go func() {
		wp.NotifyExit(exitEvent(uuid.New()))
		wp.NotifyExit(exitEvent(uuid.New()))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyExit blocked on a full queue")
	}
	assert.Len(t, wp.jobs, 1)
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, 4, gormDB, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends alert to site subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		siteID := uuid.New()
		ev := exitEvent(siteID)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "test_p256dh", sub.Keys.P256dh)

				var got Payload
				assert.NoError(t, json.Unmarshal(payload, &got))
				assert.Equal(t, "Geofence exit", got.Title)
				assert.Equal(t, "Ravi left Chennai Central (528m from site)", got.Body)
				assert.Equal(t, siteID.String(), got.SiteID)
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(subscriptionQuery).
			WithArgs(siteID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/push", "test_p256dh", "test_auth", time.Now()))

		wp.NotifyExit(ev)
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		siteID := uuid.New()
		sent := make(chan struct{})

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				close(sent)
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(subscriptionQuery).
			WithArgs(siteID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/expired", "p", "a", time.Now()))
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM subscription_site_mapping WHERE push_subscription_endpoint = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.NotifyExit(exitEvent(siteID))
		<-sent

		assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
	})

	t.Run("no subscriptions sends nothing", func(t *testing.T) {
		siteID := uuid.New()
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("unexpected send")
				return nil, nil
			},
		}

		mock.ExpectQuery(subscriptionQuery).
			WithArgs(siteID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}))

		wp.NotifyExit(exitEvent(siteID))
		assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
	})
}

func TestExitPayload_FallsBackToWorkerID(t *testing.T) {
	ev := exitEvent(uuid.New())
	ev.WorkerName = ""

	p := exitPayload(ev)
	assert.Contains(t, p.Body, ev.WorkerID.String())
}
