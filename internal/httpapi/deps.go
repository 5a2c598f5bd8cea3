// Package httpapi is the read/query surface over the record store, plus the
// manual batch trigger. It is a thin projection: ingestion never goes
// through it, and it never mutates records except for workflow status.
package httpapi

import (
	"context"
	"log/slog"

	"jobfeed/internal/batch"
	"jobfeed/internal/config"
	"jobfeed/internal/model"
	"jobfeed/internal/store"
)

// JobStore is the subset of the record store the API reads from.
type JobStore interface {
	ListJobs(ctx context.Context, opts store.ListOpts) ([]model.JobRecord, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) (model.JobRecord, error)
}

// BatchRunner runs a batch on demand and reports the latest run status.
// *batch.TrackedRunner satisfies this.
type BatchRunner interface {
	Run(ctx context.Context, orgs []config.OrganizationConfig) batch.Result
	Status() batch.RunStatus
}

// Deps carries everything the handlers need.
type Deps struct {
	Store  JobStore
	Runner BatchRunner
	Orgs   []config.OrganizationConfig
	Logger *slog.Logger
}
