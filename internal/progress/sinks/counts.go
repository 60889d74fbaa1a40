package sinks

import (
	"context"
	"sync"
	"time"

	"github.com/sellence/leadfinder/internal/progress"
)

// Snapshot is a point-in-time view of batch progress, served as JSON by
// the status endpoint.
type Snapshot struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Checked   int64     `json:"checked"`
	Qualified int64     `json:"qualified"`
	Negative  int64     `json:"negative"`
	Errors    int64     `json:"errors"`
	Skipped   int64     `json:"skipped"`
	Done      bool      `json:"done"`
}

// CountSink maintains running totals for the current batch.
type CountSink struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewCountSink creates an empty CountSink.
func NewCountSink() *CountSink {
	return &CountSink{}
}

// Consume folds each event into the running snapshot.
func (s *CountSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageBatchStart:
			s.snap = Snapshot{RunID: evt.RunID.String(), StartedAt: evt.TS}
		case progress.StageBatchDone:
			s.snap.Done = true
		case progress.StageCompanyDone:
			s.snap.Checked++
			switch evt.Verdict {
			case progress.VerdictQualified:
				s.snap.Qualified++
			case progress.VerdictNegative:
				s.snap.Negative++
			case progress.VerdictError:
				s.snap.Errors++
			case progress.VerdictSkipped:
				s.snap.Skipped++
			}
		}
	}
	return nil
}

// Snapshot returns a copy of the current totals.
func (s *CountSink) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Close implements the Sink interface; it performs no action.
func (s *CountSink) Close(context.Context) error {
	return nil
}
