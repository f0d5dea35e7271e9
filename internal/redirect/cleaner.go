package redirect

import (
	"context"
	"time"

	"go_polyseo/internal/metrics"

	"github.com/sirupsen/logrus"
)

// CleanerConfig defines redirect cleaner configuration
type CleanerConfig struct {
	Enabled       bool
	IntervalSec   int
	RetentionDays int
}

// Cleaner periodically deletes "changed" redirects past the retention
// window. Gone records are kept.
type Cleaner struct {
	store       *Store
	config      CleanerConfig
	metrics     metrics.Publisher
	log         *logrus.Entry
	now         func() time.Time
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewCleaner creates a new redirect cleaner
func NewCleaner(store *Store, config CleanerConfig, pub metrics.Publisher, log *logrus.Entry) *Cleaner {
	if config.RetentionDays <= 0 {
		config.RetentionDays = 90
	}
	if pub == nil {
		pub = metrics.NoOpPublisher{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Cleaner{
		store:       store,
		config:      config,
		metrics:     pub,
		log:         log.WithField("component", "redirect-cleaner"),
		now:         time.Now,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// WithClock overrides the clock used for the cutoff.
func (c *Cleaner) WithClock(now func() time.Time) *Cleaner {
	c.now = now
	return c
}

// Start starts the cleaner
func (c *Cleaner) Start() {
	if !c.config.Enabled || c.config.IntervalSec <= 0 {
		c.log.Info("Disabled, skipping")
		close(c.stoppedChan)
		return
	}

	c.log.Infof("Starting with interval=%ds, retention_days=%d", c.config.IntervalSec, c.config.RetentionDays)
	go c.run()
}

// Stop stops the cleaner
func (c *Cleaner) Stop() {
	if !c.config.Enabled || c.config.IntervalSec <= 0 {
		return
	}
	c.log.Info("Stopping...")
	close(c.stopChan)
	<-c.stoppedChan
	c.log.Info("Stopped")
}

func (c *Cleaner) run() {
	defer close(c.stoppedChan)

	ticker := time.NewTicker(time.Duration(c.config.IntervalSec) * time.Second)
	defer ticker.Stop()

	// Run immediately on start
	c.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			c.RunOnce(context.Background())
		case <-c.stopChan:
			return
		}
	}
}

// RunOnce deletes expired records and returns how many were removed.
func (c *Cleaner) RunOnce(ctx context.Context) int64 {
	cutoff := c.now().Add(-time.Duration(c.config.RetentionDays) * 24 * time.Hour)
	n, err := c.store.DeleteChangedOlderThan(ctx, cutoff)
	if err != nil {
		c.log.WithError(err).Error("Failed to clean old redirects")
		return 0
	}
	if n > 0 {
		c.metrics.Count("redirect.cleanup", n)
		c.log.Infof("Cleaned %d redirects older than %v", n, cutoff)
	}
	return n
}
