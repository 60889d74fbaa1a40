// Package progress defines the event stream emitted by the batch runner.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageBatchStart   Stage = "BATCH_START"
	StageBatchDone    Stage = "BATCH_DONE"
	StageCompanyStart Stage = "COMPANY_START"
	StageCompanyDone  Stage = "COMPANY_DONE"
)

// Verdict is the per-company outcome attached to COMPANY_DONE events.
type Verdict string

// Supported company verdicts.
const (
	VerdictQualified Verdict = "qualified"
	VerdictNegative  Verdict = "negative"
	VerdictError     Verdict = "error"
	VerdictSkipped   Verdict = "skipped"
)

// Event captures a single milestone of a qualification run.
type Event struct {
	// RunID identifies the batch run this event belongs to.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Company is the company name for per-company events.
	Company string
	// Website is the company website for per-company events.
	Website string
	// Verdict carries the outcome for COMPANY_DONE events.
	Verdict Verdict
	// Dur captures execution latency for completions.
	Dur time.Duration
	// Note lets emitters attach low-volume context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == uuid.Nil {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageBatchStart, StageBatchDone, StageCompanyStart:
	case StageCompanyDone:
		if e.Verdict == "" {
			return errors.New("company done requires verdict")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
