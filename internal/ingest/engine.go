// Package ingest turns a batch of normalized postings into stored job
// records: evict expired records, then insert anything not yet seen by URL.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"jobfeed/internal/model"
)

// Stats summarizes one ingestion call. FetchedCount and InsertedCount
// diverging signals already-seen duplicates.
type Stats struct {
	FetchedCount  int `json:"fetched_count"`
	InsertedCount int `json:"inserted_count"`
}

// Engine applies one organization's postings to the record store.
type Engine struct {
	store  model.RecordStore
	clock  model.Clock
	logger *slog.Logger
}

// NewEngine creates an ingestion engine over the given store.
func NewEngine(store model.RecordStore, clock model.Clock, logger *slog.Logger) *Engine {
	return &Engine{store: store, clock: clock, logger: logger}
}

// Ingest runs one ingestion cycle inside a single transaction:
//
//  1. Evict every stored record older than the retention window. This is
//     store-wide and runs even when postings is empty.
//  2. Insert each posting whose URL is not already present, in input order.
//     Re-fetching an existing URL never mutates the stored record.
//
// The eviction and all inserts commit or roll back together; a persistence
// failure propagates to the caller.
func (e *Engine) Ingest(ctx context.Context, postings []model.Posting) (Stats, error) {
	now := e.clock.Now().UTC()
	cutoff := now.Add(-model.RetentionWindow)

	stats := Stats{FetchedCount: len(postings)}
	err := e.store.InTx(ctx, func(tx model.RecordTx) error {
		evicted, err := tx.EvictBefore(cutoff)
		if err != nil {
			return fmt.Errorf("evicting expired records: %w", err)
		}
		if evicted > 0 {
			e.logger.Info("evicted expired records", "count", evicted, "cutoff", cutoff)
		}

		for _, p := range postings {
			seen, err := tx.HasURL(p.URL)
			if err != nil {
				return fmt.Errorf("checking %s: %w", p.URL, err)
			}
			if seen {
				continue
			}
			if err := tx.Insert(p, now); err != nil {
				return fmt.Errorf("inserting %s: %w", p.URL, err)
			}
			stats.InsertedCount++
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}
