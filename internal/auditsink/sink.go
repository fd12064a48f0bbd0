// Package auditsink provides append-only destinations for audit records.
// Appends are best-effort: a sink failure is reported to the caller for
// diagnostics but must never fail the operation that produced the record.
package auditsink

import (
	"context"
	"sync"

	"github.com/bankapp/account-core/internal/domain"
)

// Sink appends audit records.
type Sink interface {
	Append(ctx context.Context, rec domain.AuditRecord) error
}

// Fanout appends each record to every wrapped sink. It returns the first
// error so the caller can log it, after all sinks were attempted.
type Fanout []Sink

// Append appends the record to every wrapped sink.
func (f Fanout) Append(ctx context.Context, rec domain.AuditRecord) error {
	var firstErr error

	for _, s := range f {
		if err := s.Append(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Recorder captures appended records in memory for tests.
type Recorder struct {
	mu      sync.Mutex
	records []domain.AuditRecord

	// FailWith, when set, is returned by Append after recording.
	FailWith error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append stores the record.
func (r *Recorder) Append(ctx context.Context, rec domain.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, rec)

	return r.FailWith
}

// Records returns a copy of everything appended so far.
func (r *Recorder) Records() []domain.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.AuditRecord, len(r.records))
	copy(out, r.records)

	return out
}
