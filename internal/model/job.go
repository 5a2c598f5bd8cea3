package model

import (
	"context"
	"fmt"
	"time"
)

// RetentionWindow is the rolling freshness horizon. Postings older than
// now minus this window are dropped at fetch time and evicted at ingest
// time. The two sides must agree, so it is a constant rather than config.
const RetentionWindow = 24 * time.Hour

// Posting is the normalized unit flowing through the pipeline: one job
// listing as returned by a provider, with its timestamp already in UTC.
type Posting struct {
	Company  string
	Title    string
	Location string // providers may omit this
	URL      string // canonical URL, globally unique, the dedupe key
	PostedAt time.Time
}

// Status is the workflow state of a stored job record.
type Status string

const (
	StatusNew     Status = "new"
	StatusApplied Status = "applied"
	StatusIgnored Status = "ignored"
)

// ParseStatus validates a caller-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusApplied, StatusIgnored:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// JobRecord is the persisted representation of an accepted posting.
// AppliedAt is set when and only when Status is StatusApplied. CreatedAt is
// assigned by the store at insert and never changes.
type JobRecord struct {
	ID        int64      `json:"id"`
	Company   string     `json:"company"`
	Title     string     `json:"title"`
	Location  string     `json:"location,omitempty"`
	URL       string     `json:"url"`
	PostedAt  time.Time  `json:"posted_at"`
	Status    Status     `json:"status"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ProviderAdapter fetches postings for one organization from one provider
// board. Implementations never surface remote failures: a non-2xx response,
// a network error, or an unparseable body all yield an empty slice (with a
// logged warning) so that one broken board cannot abort a batch.
type ProviderAdapter interface {
	FetchPostings(ctx context.Context) []Posting
}

// RecordTx is the set of record mutations available inside one ingestion
// transaction.
type RecordTx interface {
	// EvictBefore deletes every record whose posted timestamp is earlier
	// than cutoff, store-wide, and returns the number deleted.
	EvictBefore(cutoff time.Time) (int64, error)
	// HasURL reports whether a record with this exact URL already exists.
	HasURL(url string) (bool, error)
	// Insert adds a new record with StatusNew and the given creation time.
	Insert(p Posting, createdAt time.Time) error
}

// RecordStore runs record mutations inside a single transaction: fn either
// commits as a whole or leaves the store untouched.
type RecordStore interface {
	InTx(ctx context.Context, fn func(tx RecordTx) error) error
}

// Clock supplies "now" so that freshness filtering, eviction, and scheduling
// can be pinned in tests.
type Clock interface {
	Now() time.Time
}
