// Package metrics publishes operational counters to DataDog StatsD.
package metrics

import (
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/sirupsen/logrus"
)

// Publisher records counters and timings.
type Publisher interface {
	Incr(name string, tags ...string)
	Count(name string, value int64, tags ...string)
	Timing(name string, d time.Duration, tags ...string)
	Close() error
}

// StatsdPublisher implements Publisher using the DataDog StatsD client.
type StatsdPublisher struct {
	client *statsd.Client
	log    *logrus.Entry
}

// NewPublisher creates a StatsD publisher, or a NoOpPublisher when disabled.
func NewPublisher(enabled bool, addr, prefix string, log *logrus.Entry) (Publisher, error) {
	if !enabled {
		return NoOpPublisher{}, nil
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	client, err := statsd.New(addr, statsd.WithNamespace(prefix+"."))
	if err != nil {
		return nil, fmt.Errorf("failed to create statsd client: %w", err)
	}

	log.WithFields(logrus.Fields{"address": addr, "prefix": prefix}).Info("DataDog publisher initialized")
	return &StatsdPublisher{client: client, log: log.WithField("component", "datadog")}, nil
}

// Incr increments a counter by one.
func (p *StatsdPublisher) Incr(name string, tags ...string) {
	if err := p.client.Incr(name, tags, 1); err != nil {
		p.log.Debugf("incr %s: %v", name, err)
	}
}

// Count adds value to a counter.
func (p *StatsdPublisher) Count(name string, value int64, tags ...string) {
	if err := p.client.Count(name, value, tags, 1); err != nil {
		p.log.Debugf("count %s: %v", name, err)
	}
}

// Timing records a duration.
func (p *StatsdPublisher) Timing(name string, d time.Duration, tags ...string) {
	if err := p.client.Timing(name, d, tags, 1); err != nil {
		p.log.Debugf("timing %s: %v", name, err)
	}
}

// Close flushes and closes the client.
func (p *StatsdPublisher) Close() error {
	return p.client.Close()
}

// NoOpPublisher discards everything.
type NoOpPublisher struct{}

func (NoOpPublisher) Incr(string, ...string)                 {}
func (NoOpPublisher) Count(string, int64, ...string)         {}
func (NoOpPublisher) Timing(string, time.Duration, ...string) {}
func (NoOpPublisher) Close() error                           { return nil }

// Tag creates a formatted DataDog tag string in "key:value" format.
func Tag(key, value string) string {
	return fmt.Sprintf("%s:%s", key, value)
}

var (
	_ Publisher = (*StatsdPublisher)(nil)
	_ Publisher = NoOpPublisher{}
)
