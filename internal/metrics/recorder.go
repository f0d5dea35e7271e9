package metrics

import (
	"sync"
	"time"
)

// Recorder is an in-memory Publisher for tests.
type Recorder struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{counts: map[string]int64{}}
}

func key(name string, tags []string) string {
	k := name
	for _, t := range tags {
		k += "|" + t
	}
	return k
}

func (r *Recorder) Incr(name string, tags ...string) { r.Count(name, 1, tags...) }

func (r *Recorder) Count(name string, value int64, tags ...string) {
	r.mu.Lock()
	r.counts[key(name, tags)] += value
	r.mu.Unlock()
}

func (r *Recorder) Timing(name string, _ time.Duration, tags ...string) {
	r.Count(name+".timing", 1, tags...)
}

func (r *Recorder) Close() error { return nil }

// Get returns the accumulated value for name with exactly the given tags.
func (r *Recorder) Get(name string, tags ...string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key(name, tags)]
}
