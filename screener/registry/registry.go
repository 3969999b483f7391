// Package registry implements the pending-warning registry: the single
// source of truth for which subjects are currently under review. The
// registry only holds Open records; closing a record removes it.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/doorman-bot/doorman/screener/gateway"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// CloseReason records why a warning was resolved. Set exactly once, by
// whichever mutator wins the Open->Closed transition.
type CloseReason string

const (
	ReasonAffirmed        CloseReason = "affirmed"
	ReasonDismissed       CloseReason = "dismissed"
	ReasonExternalRemoval CloseReason = "external-removal"
	ReasonExpired         CloseReason = "expired"
)

// WarningRecord tracks one subject under review, pending a ban/dismiss
// decision or external resolution.
type WarningRecord struct {
	SubjectID   string            `json:"subject_id"`
	SubjectName string            `json:"subject_name"`
	NoticeRef   gateway.NoticeRef `json:"notice_ref"`
	OpenedAt    time.Time         `json:"opened_at"`
	Status      Status            `json:"status"`
	CloseReason CloseReason       `json:"close_reason,omitempty"`
}

type Registry interface {
	// Open creates a record for the subject. Returns false if the subject
	// already has an open record.
	Open(ctx context.Context, rec WarningRecord) (bool, error)

	// Get returns a copy of the subject's open record, if any.
	Get(ctx context.Context, subjectID string) (*WarningRecord, bool)

	// List returns copies of all open records.
	List(ctx context.Context) []WarningRecord

	// Close transitions the subject's record from Open to Closed with the
	// given reason, removing it from the registry. This is the
	// compare-and-swap all mutators race on: exactly one caller receives
	// (record, true); every other caller observes the record already
	// closed (or absent) and receives (nil, false).
	Close(ctx context.Context, subjectID string, reason CloseReason) (*WarningRecord, bool)
}

// MemRegistry is the in-process Registry. A single mutex serializes every
// Open->Closed transition; that is the mutual-exclusion discipline which
// makes concurrent closure attempts safe even though each caller performs
// I/O between observing a record and committing a close.
type MemRegistry struct {
	mu      sync.Mutex
	records map[string]*WarningRecord
}

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{
		records: make(map[string]*WarningRecord),
	}
}

func (r *MemRegistry) Open(ctx context.Context, rec WarningRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.SubjectID]; ok {
		return false, nil
	}
	rec.Status = StatusOpen
	rec.CloseReason = ""
	r.records[rec.SubjectID] = &rec
	return true, nil
}

func (r *MemRegistry) Get(ctx context.Context, subjectID string) (*WarningRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[subjectID]
	if !ok {
		return nil, false
	}
	out := *rec
	return &out, true
}

func (r *MemRegistry) List(ctx context.Context) []WarningRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]WarningRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	return out
}

func (r *MemRegistry) Close(ctx context.Context, subjectID string, reason CloseReason) (*WarningRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[subjectID]
	if !ok || rec.Status != StatusOpen {
		return nil, false
	}
	rec.Status = StatusClosed
	rec.CloseReason = reason
	delete(r.records, subjectID)
	out := *rec
	return &out, true
}

var _ Registry = (*MemRegistry)(nil)
