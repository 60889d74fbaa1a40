package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sellence/leadfinder/internal/progress"
)

// PrometheusSink exports qualification progress metrics. It owns all
// collectors for batches and per-company check outcomes.
type PrometheusSink struct {
	batchesStarted prometheus.Counter
	batchRuntime   prometheus.Histogram
	companiesDone  *prometheus.CounterVec
	checkDuration  *prometheus.HistogramVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		batchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadfinder_batches_started_total",
			Help: "Total qualification batches started.",
		}),
		batchRuntime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leadfinder_batch_runtime_seconds",
			Help:    "Wall time per completed batch.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		companiesDone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadfinder_companies_checked_total",
			Help: "Company checks completed partitioned by verdict.",
		}, []string{"verdict"}),
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leadfinder_company_check_duration_seconds",
			Help:    "Per-company inspection duration partitioned by verdict.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"verdict"}),
	}
	for _, collector := range []prometheus.Collector{
		s.batchesStarted,
		s.batchRuntime,
		s.companiesDone,
		s.checkDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors using the provided batch. Safe for
// concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageBatchStart:
			s.batchesStarted.Inc()
		case progress.StageBatchDone:
			if evt.Dur > 0 {
				s.batchRuntime.Observe(evt.Dur.Seconds())
			}
		case progress.StageCompanyDone:
			verdict := string(evt.Verdict)
			s.companiesDone.WithLabelValues(verdict).Inc()
			if evt.Dur > 0 {
				s.checkDuration.WithLabelValues(verdict).Observe(evt.Dur.Seconds())
			}
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
