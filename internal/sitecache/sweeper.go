package sitecache

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// SweeperConfig defines expired-entry sweeper configuration
type SweeperConfig struct {
	Enabled     bool
	IntervalSec int
}

// Sweeper periodically removes expired cache entries from disk.
type Sweeper struct {
	store       Store
	ttl         func() time.Duration
	config      SweeperConfig
	log         *logrus.Entry
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewSweeper creates a sweeper; ttl is read on every run so setting changes
// apply without a restart.
func NewSweeper(store Store, ttl func() time.Duration, config SweeperConfig, log *logrus.Entry) *Sweeper {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Sweeper{
		store:       store,
		ttl:         ttl,
		config:      config,
		log:         log.WithField("component", "sitemap-cache-sweeper"),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start starts the sweeper
func (s *Sweeper) Start() {
	if !s.config.Enabled || s.config.IntervalSec <= 0 {
		s.log.Info("Disabled, skipping")
		close(s.stoppedChan)
		return
	}

	s.log.Infof("Starting with interval=%ds, store=%s", s.config.IntervalSec, s.store.Name())
	go s.run()
}

// Stop stops the sweeper
func (s *Sweeper) Stop() {
	if !s.config.Enabled || s.config.IntervalSec <= 0 {
		return
	}
	close(s.stopChan)
	<-s.stoppedChan
	s.log.Info("Stopped")
}

func (s *Sweeper) run() {
	defer close(s.stoppedChan)

	ticker := time.NewTicker(time.Duration(s.config.IntervalSec) * time.Second)
	defer ticker.Stop()

	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopChan:
			return
		}
	}
}

// RunOnce sweeps once and returns the number of removed entries.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	removed, err := s.store.SweepExpired(ctx, s.ttl())
	if err != nil {
		s.log.WithError(err).Error("Failed to sweep expired entries")
	}
	if removed > 0 {
		s.log.Infof("Removed %d expired entries", removed)
	}
	return removed
}
