package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/model"
)

type mockReader struct {
	FindSiteFunc         func(ctx context.Context, id uuid.UUID) (model.Site, error)
	ListSiteWorkersFunc  func(ctx context.Context, siteID uuid.UUID) ([]model.Worker, error)
	ListLiveStatusesFunc func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.LiveStatus, error)
}

func (m *mockReader) FindSite(ctx context.Context, id uuid.UUID) (model.Site, error) {
	return m.FindSiteFunc(ctx, id)
}

func (m *mockReader) ListSiteWorkers(ctx context.Context, siteID uuid.UUID) ([]model.Worker, error) {
	return m.ListSiteWorkersFunc(ctx, siteID)
}

func (m *mockReader) ListLiveStatuses(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.LiveStatus, error) {
	return m.ListLiveStatusesFunc(ctx, ids)
}

func TestService_Live(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	site := model.Site{ID: uuid.New(), Name: "Guindy Plant"}
	seen := model.Worker{ID: uuid.New(), Name: "Ravi", PhoneType: model.PhoneSmart}
	unseen := model.Worker{ID: uuid.New(), Name: "Arun", PhoneType: model.PhoneFeature}

	repo := &mockReader{
		FindSiteFunc: func(_ context.Context, id uuid.UUID) (model.Site, error) {
			assert.Equal(t, site.ID, id)
			return site, nil
		},
		ListSiteWorkersFunc: func(context.Context, uuid.UUID) ([]model.Worker, error) {
			return []model.Worker{seen, unseen}, nil
		},
		ListLiveStatusesFunc: func(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.LiveStatus, error) {
			assert.ElementsMatch(t, []uuid.UUID{seen.ID, unseen.ID}, ids)
			return map[uuid.UUID]model.LiveStatus{
				seen.ID: {WorkerID: seen.ID, IsInside: true, LastSeen: now.Add(-3 * time.Minute)},
			}, nil
		},
	}

	svc := NewService(repo)
	svc.now = func() time.Time { return now }

	d, err := svc.Live(context.Background(), site.ID)
	require.NoError(t, err)
	require.Len(t, d.Workers, 2)
	assert.Equal(t, Green, d.Workers[0].Status)
	assert.Equal(t, "3 mins ago", d.Workers[0].LastSeenText)
	assert.Equal(t, "Never", d.Workers[1].LastSeenText)
	assert.Equal(t, Summary{Total: 2, Inside: 1, Outside: 1}, d.Summary)
}

func TestService_Live_SiteNotFound(t *testing.T) {
	repo := &mockReader{
		FindSiteFunc: func(context.Context, uuid.UUID) (model.Site, error) {
			return model.Site{}, apperror.ErrSiteNotFound
		},
	}

	_, err := NewService(repo).Live(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrSiteNotFound)
}

func TestService_Live_CollapsesConcurrentLoads(t *testing.T) {
	var loads int32
	release := make(chan struct{})
	site := model.Site{ID: uuid.New(), Name: "Guindy Plant"}

	repo := &mockReader{
		FindSiteFunc: func(context.Context, uuid.UUID) (model.Site, error) {
			atomic.AddInt32(&loads, 1)
			<-release
			return site, nil
		},
		ListSiteWorkersFunc: func(context.Context, uuid.UUID) ([]model.Worker, error) {
			return nil, nil
		},
		ListLiveStatusesFunc: func(context.Context, []uuid.UUID) (map[uuid.UUID]model.LiveStatus, error) {
			return map[uuid.UUID]model.LiveStatus{}, nil
		},
	}
	svc := NewService(repo)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := svc.Live(context.Background(), site.ID)
			assert.NoError(t, err)
			assert.Equal(t, "Guindy Plant", d.SiteName)
		}()
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&loads) == 1 }, time.Second, time.Millisecond)
	// Callers arriving while the first load is blocked join it.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	close(release)
	wg.Wait()
}

func TestService_Live_CancelledLeaderDoesNotFailFollowers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	site := model.Site{ID: uuid.New(), Name: "Guindy Plant"}

	var (
		loadErr atomic.Value
		once    sync.Once
	)
	repo := &mockReader{
		FindSiteFunc: func(ctx context.Context, _ uuid.UUID) (model.Site, error) {
			once.Do(func() { close(started) })
			<-release
			if err := ctx.Err(); err != nil {
				loadErr.Store(err)
				return model.Site{}, err
			}
			return site, nil
		},
		ListSiteWorkersFunc: func(context.Context, uuid.UUID) ([]model.Worker, error) {
			return nil, nil
		},
		ListLiveStatusesFunc: func(context.Context, []uuid.UUID) (map[uuid.UUID]model.LiveStatus, error) {
			return map[uuid.UUID]model.LiveStatus{}, nil
		},
	}
	svc := NewService(repo)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.Live(leaderCtx, site.ID)
		leaderErr <- err
	}()
	<-started

	type result struct {
		d   Dashboard
		err error
	}
	follower := make(chan result, 1)
	go func() {
		d, err := svc.Live(context.Background(), site.ID)
		follower <- result{d, err}
	}()
	// Give the follower time to join the in-flight load.
	time.Sleep(20 * time.Millisecond)

	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(release)
	got := <-follower
	require.NoError(t, got.err)
	assert.Equal(t, "Guindy Plant", got.d.SiteName)
	assert.Nil(t, loadErr.Load(), "shared load must not inherit the leader's cancellation")
}
