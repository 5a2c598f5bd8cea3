// Package batch orchestrates one ingestion run across every configured
// organization.
package batch

import (
	"context"
	"log/slog"

	"jobfeed/internal/config"
	"jobfeed/internal/ingest"
	"jobfeed/internal/model"
)

// OrgResult reports one organization's fetch and insert counts.
type OrgResult struct {
	Organization  string `json:"organization"`
	FetchedCount  int    `json:"fetched_count"`
	InsertedCount int    `json:"inserted_count"`
}

// Result summarizes one batch run. TotalOrganizations counts the full
// configured list; Details holds only organizations that were actually
// processed (unsupported provider types and failed ingests are absent).
type Result struct {
	TotalOrganizations   int         `json:"total_organizations"`
	TotalNewJobsInserted int         `json:"total_new_jobs_inserted"`
	Details              []OrgResult `json:"details"`
}

// Ingestor applies one organization's postings to the record store.
type Ingestor interface {
	Ingest(ctx context.Context, postings []model.Posting) (ingest.Stats, error)
}

// AdapterFunc builds the provider adapter for one organization, or reports
// that its provider type is not supported.
type AdapterFunc func(org config.OrganizationConfig) (model.ProviderAdapter, bool)

// Runner walks the organization list in order, dispatching each entry to
// its provider adapter and handing the postings to the ingestor.
type Runner struct {
	ingestor   Ingestor
	adapterFor AdapterFunc
	logger     *slog.Logger
}

// NewRunner creates a batch runner.
func NewRunner(ingestor Ingestor, adapterFor AdapterFunc, logger *slog.Logger) *Runner {
	return &Runner{ingestor: ingestor, adapterFor: adapterFor, logger: logger}
}

// Run processes every organization sequentially. Failures are isolated per
// organization: an unsupported provider type is skipped, a fetch failure
// surfaces as an empty batch inside the adapter, and an ingest error is
// logged and the loop continues. Run always returns a summary.
func (r *Runner) Run(ctx context.Context, orgs []config.OrganizationConfig) Result {
	res := Result{TotalOrganizations: len(orgs)}

	for _, org := range orgs {
		if ctx.Err() != nil {
			r.logger.Info("batch interrupted", "remaining_after", org.Name)
			return res
		}

		a, ok := r.adapterFor(org)
		if !ok {
			r.logger.Warn("unsupported provider type, skipping",
				"organization", org.Name,
				"provider", org.Provider,
			)
			continue
		}

		postings := a.FetchPostings(ctx)
		stats, err := r.ingestor.Ingest(ctx, postings)
		if err != nil {
			r.logger.Error("ingest failed, continuing with remaining organizations",
				"organization", org.Name,
				"error", err,
			)
			continue
		}

		res.Details = append(res.Details, OrgResult{
			Organization:  org.Name,
			FetchedCount:  stats.FetchedCount,
			InsertedCount: stats.InsertedCount,
		})
		res.TotalNewJobsInserted += stats.InsertedCount

		r.logger.Info("organization processed",
			"organization", org.Name,
			"fetched", stats.FetchedCount,
			"inserted", stats.InsertedCount,
		)
	}

	return res
}
