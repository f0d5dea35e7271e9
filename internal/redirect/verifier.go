package redirect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go_polyseo/internal/metrics"
	"go_polyseo/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ProbeHeader marks verification probes so the site answers them without
// the stored redirects.
const ProbeHeader = "X-Polyseo-Probe"

// VerifierConfig defines redirect verifier configuration
type VerifierConfig struct {
	Enabled     bool
	IntervalSec int
	BatchSize   int
	TimeoutSec  int
	Concurrency int
}

// VerifyResult summarizes one verification batch.
type VerifyResult struct {
	Checked   int `json:"checked"`
	Confirmed int `json:"confirmed"`
	Failed    int `json:"failed"`
}

// Verifier probes "changed" redirects and flags the ones the host already
// serves natively.
type Verifier struct {
	store       *Store
	siteURL     string
	client      *http.Client
	config      VerifierConfig
	metrics     metrics.Publisher
	log         *logrus.Entry
	now         func() time.Time
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewVerifier creates a new redirect verifier
func NewVerifier(store *Store, siteURL string, config VerifierConfig, pub metrics.Publisher, log *logrus.Entry) *Verifier {
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if config.TimeoutSec <= 0 {
		config.TimeoutSec = 5
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if pub == nil {
		pub = metrics.NoOpPublisher{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Verifier{
		store:   store,
		siteURL: siteURL,
		client: &http.Client{
			Timeout: time.Duration(config.TimeoutSec) * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		config:      config,
		metrics:     pub,
		log:         log.WithField("component", "redirect-verifier"),
		now:         time.Now,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// WithClock overrides the clock used for checked_at stamps.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// Start starts the verifier
func (v *Verifier) Start() {
	if !v.config.Enabled || v.config.IntervalSec <= 0 {
		v.log.Info("Disabled, skipping")
		close(v.stoppedChan)
		return
	}

	v.log.Infof("Starting with interval=%ds, batch=%d, concurrency=%d", v.config.IntervalSec, v.config.BatchSize, v.config.Concurrency)
	go v.run()
}

// Stop stops the verifier
func (v *Verifier) Stop() {
	if !v.config.Enabled || v.config.IntervalSec <= 0 {
		return
	}
	v.log.Info("Stopping...")
	close(v.stopChan)
	<-v.stoppedChan
	v.log.Info("Stopped")
}

func (v *Verifier) run() {
	defer close(v.stoppedChan)

	ticker := time.NewTicker(time.Duration(v.config.IntervalSec) * time.Second)
	defer ticker.Stop()

	v.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			v.RunOnce(context.Background())
		case <-v.stopChan:
			return
		}
	}
}

// RunOnce verifies one batch. Each record is stamped independently, so an
// interrupted batch leaves consistent state.
func (v *Verifier) RunOnce(ctx context.Context) VerifyResult {
	var res VerifyResult

	records, err := v.store.ListUnverified(ctx, v.config.BatchSize)
	if err != nil {
		v.log.WithError(err).Error("Failed to load unverified redirects")
		return res
	}
	if len(records) == 0 {
		return res
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.config.Concurrency)
	for i := range records {
		rec := records[i]
		g.Go(func() error {
			native, err := v.probe(gctx, &rec)
			result := "mismatch"
			switch {
			case err != nil:
				result = "error"
				v.log.WithError(err).WithField("old_url", rec.OldURL).Debug("Probe failed")
			case native:
				result = "native"
			}
			v.metrics.Incr("redirect.verify", metrics.Tag("result", result))

			if err := v.store.MarkChecked(ctx, rec.ID, native, v.now()); err != nil {
				v.log.WithError(err).WithField("id", rec.ID).Error("Failed to store verification")
			}

			mu.Lock()
			res.Checked++
			if native {
				res.Confirmed++
			}
			if err != nil {
				res.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	v.log.WithFields(logrus.Fields{
		"checked":   res.Checked,
		"confirmed": res.Confirmed,
		"failed":    res.Failed,
	}).Info("Verification batch done")
	return res
}

// probe requests old_url without following redirects and reports whether the
// answer is a 301 to new_url.
func (v *Verifier) probe(ctx context.Context, rec *model.Redirect) (bool, error) {
	target := rec.OldURL
	if isLocal(target, v.siteURL) && !isAbsolute(target) {
		target = v.siteURL + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("build probe: %w", err)
	}
	req.Header.Set(ProbeHeader, "1")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusMovedPermanently {
		return false, nil
	}
	loc, err := resp.Location()
	if err != nil {
		return false, nil
	}
	return SameTarget(loc.String(), rec.Destination(), v.siteURL), nil
}
