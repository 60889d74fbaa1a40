package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu      sync.Mutex
	batches [][]Event
	closed  bool
}

func (s *captureSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []Event
	for _, b := range s.batches {
		all = append(all, b...)
	}
	return all
}

func companyEvent(runID uuid.UUID, name string) Event {
	return Event{
		RunID:   runID,
		TS:      time.Now().UTC(),
		Stage:   StageCompanyDone,
		Company: name,
		Verdict: VerdictQualified,
	}
}

func TestHubFlushesOnBatchSize(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchEvents: 3, MaxBatchWait: time.Hour}, sink)
	defer hub.Close(context.Background())

	runID := uuid.New()
	for i := 0; i < 3; i++ {
		hub.Emit(companyEvent(runID, "acme"))
	}

	require.Eventually(t, func() bool {
		return len(sink.events()) == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubFlushesOnTimer(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchEvents: 100, MaxBatchWait: 20 * time.Millisecond}, sink)
	defer hub.Close(context.Background())

	hub.Emit(companyEvent(uuid.New(), "acme"))

	require.Eventually(t, func() bool {
		return len(sink.events()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubCloseDrains(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchEvents: 1000, MaxBatchWait: time.Hour}, sink)

	runID := uuid.New()
	for i := 0; i < 17; i++ {
		hub.Emit(companyEvent(runID, "acme"))
	}
	require.NoError(t, hub.Close(context.Background()))

	require.Len(t, sink.events(), 17)
	require.True(t, sink.closed)

	// emits after close are ignored, and closing again is a no-op
	hub.Emit(companyEvent(runID, "late"))
	require.NoError(t, hub.Close(context.Background()))
	require.Len(t, sink.events(), 17)
}

func TestHubDiscardsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{}, sink)

	hub.Emit(Event{Stage: StageCompanyDone}) // missing run id and verdict
	require.NoError(t, hub.Close(context.Background()))
	require.Empty(t, sink.events())
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	valid := companyEvent(uuid.New(), "acme")
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Event)
	}{
		{"nil run id", func(e *Event) { e.RunID = uuid.Nil }},
		{"zero timestamp", func(e *Event) { e.TS = time.Time{} }},
		{"unknown stage", func(e *Event) { e.Stage = "WAT" }},
		{"done without verdict", func(e *Event) { e.Verdict = "" }},
		{"negative duration", func(e *Event) { e.Dur = -time.Second }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			evt := valid
			tc.mutate(&evt)
			require.Error(t, evt.Validate())
		})
	}
}
