package sms

import (
	"context"
	"log"
	"time"

	"geoguard-backend/internal/store"
)

// Sweeper periodically deletes SMS sessions that expired more than a
// retention period ago. Stop it via its context or Stop.
type Sweeper struct {
	store     store.SessionStore
	retention time.Duration
	interval  time.Duration
	logger    *log.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewSweeper creates a sweeper but does not start it.
func NewSweeper(s store.SessionStore, retention, interval time.Duration, logger *log.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{
		store:     s,
		retention: retention,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval until ctx is
// cancelled or Stop is called.
func (w *Sweeper) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
	w.logger.Printf("[sms] session sweeper started (retention=%s, interval=%s)", w.retention, w.interval)
}

// Stop signals the sweeper to exit and waits for it to finish.
func (w *Sweeper) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}

func (w *Sweeper) loop(ctx context.Context) {
	defer close(w.done)

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-w.retention)
	deleted, err := w.store.DeleteSessionsBefore(ctx, cutoff)
	if err != nil {
		w.logger.Printf("[sms] session sweep error: %v", err)
		return
	}
	if deleted > 0 {
		w.logger.Printf("[sms] session sweep: deleted %d sessions expired before %s", deleted, cutoff.Format(time.RFC3339))
	}
}
