package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/session/metrics"
	"github.com/aussiebroadwan/sessiond/internal/session/store"
)

// HousekeepingService periodically deletes expired renewal records. Renewal
// already deletes expired records lazily; the sweeper catches the ones nobody
// presents again.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time
	Metrics  *metrics.Metrics

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a sweeper. A non-positive interval defaults
// to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the sweeper in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweepAndLog()

	for {
		select {
		case <-ticker.C:
			s.sweepAndLog()
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes every renewal record expired as of now.
func (s *HousekeepingService) Sweep(ctx context.Context) (int64, error) {
	return s.Store.RenewalTokens().DeleteExpired(ctx, s.Now())
}

func (s *HousekeepingService) sweepAndLog() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.Sweep(ctx)
	if err != nil {
		s.Logger.Error("failed to delete expired renewal tokens", "error", err)
		return
	}
	s.Metrics.Swept(n)
	s.Logger.Info("housekeeping sweep completed", "deleted", n)
}
