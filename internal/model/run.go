package model

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Summary accumulates run-level counters. Counters are atomic because
// terms may be ingested concurrently by the worker pool.
type Summary struct {
	PerfumesCreated     atomic.Int64
	PerfumesSkipped     atomic.Int64
	PerfumesFailed      atomic.Int64
	EquivalencesCreated atomic.Int64
	EquivalencesFailed  atomic.Int64
	TermsFailed         atomic.Int64
}

// Fields renders the summary as structured log fields.
func (s *Summary) Fields() []zap.Field {
	return []zap.Field{
		zap.Int64("perfumes_created", s.PerfumesCreated.Load()),
		zap.Int64("perfumes_skipped", s.PerfumesSkipped.Load()),
		zap.Int64("perfumes_failed", s.PerfumesFailed.Load()),
		zap.Int64("equivalences_created", s.EquivalencesCreated.Load()),
		zap.Int64("equivalences_failed", s.EquivalencesFailed.Load()),
		zap.Int64("terms_failed", s.TermsFailed.Load()),
	}
}

// Run represents a single ingestion run over a term list.
type Run struct {
	ID         string
	Terms      []string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    *Summary
}

// NewRun creates a run with a fresh ID and an empty summary.
func NewRun(terms []string) *Run {
	return &Run{
		ID:        uuid.New().String(),
		Terms:     terms,
		StartedAt: time.Now().UTC(),
		Summary:   &Summary{},
	}
}
