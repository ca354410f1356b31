package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"geoguard-backend/internal/model"
)

// Reader is the read-only store surface the dashboard needs.
type Reader interface {
	FindSite(ctx context.Context, id uuid.UUID) (model.Site, error)
	ListSiteWorkers(ctx context.Context, siteID uuid.UUID) ([]model.Worker, error)
	ListLiveStatuses(ctx context.Context, workerIDs []uuid.UUID) (map[uuid.UUID]model.LiveStatus, error)
}

// Service loads and projects site dashboards. Concurrent requests for the
// same site share one database round trip.
type Service struct {
	repo Reader
	sf   *singleflight.Group
	now  func() time.Time
}

func NewService(repo Reader) *Service {
	return &Service{repo: repo, sf: &singleflight.Group{}, now: time.Now}
}

// loadTimeout bounds a shared dashboard load.
const loadTimeout = 10 * time.Second

// Live returns the current dashboard for a site. A caller whose ctx ends
// stops waiting, but the shared load keeps running for the others.
func (s *Service) Live(ctx context.Context, siteID uuid.UUID) (Dashboard, error) {
	ch := s.sf.DoChan(siteID.String(), func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.load(loadCtx, siteID)
	})

	select {
	case <-ctx.Done():
		return Dashboard{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Dashboard{}, res.Err
		}
		return res.Val.(Dashboard), nil
	}
}

func (s *Service) load(ctx context.Context, siteID uuid.UUID) (Dashboard, error) {
	site, err := s.repo.FindSite(ctx, siteID)
	if err != nil {
		return Dashboard{}, err
	}
	workers, err := s.repo.ListSiteWorkers(ctx, siteID)
	if err != nil {
		return Dashboard{}, err
	}

	ids := make([]uuid.UUID, len(workers))
	for i, w := range workers {
		ids[i] = w.ID
	}
	live, err := s.repo.ListLiveStatuses(ctx, ids)
	if err != nil {
		return Dashboard{}, err
	}

	statuses := make([]WorkerStatus, len(workers))
	for i, w := range workers {
		statuses[i] = WorkerStatus{Worker: w}
		if ls, ok := live[w.ID]; ok {
			statuses[i].Live = &ls
		}
	}
	return Project(site, statuses, s.now()), nil
}
