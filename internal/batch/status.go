package batch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"jobfeed/internal/config"
	"jobfeed/internal/model"
)

// RunStatus describes the most recent batch run. The scheduled and manual
// trigger paths both flow through the same TrackedRunner, so either one is
// visible here.
type RunStatus struct {
	Running        bool   `json:"running"`
	LastStartedAt  string `json:"last_started_at,omitempty"`
	LastFinishedAt string `json:"last_finished_at,omitempty"`
	LastNewJobs    int    `json:"last_new_jobs"`
}

// TrackedRunner wraps a Runner and records run status for the status
// endpoint. Concurrent runs are allowed; the status reflects whichever
// finished last.
type TrackedRunner struct {
	runner *Runner
	clock  model.Clock
	status atomic.Value // RunStatus
}

// NewTrackedRunner wraps runner with status tracking.
func NewTrackedRunner(runner *Runner, clock model.Clock) *TrackedRunner {
	t := &TrackedRunner{runner: runner, clock: clock}
	t.status.Store(RunStatus{})
	return t
}

// Run delegates to the wrapped runner, updating the run status around it.
func (t *TrackedRunner) Run(ctx context.Context, orgs []config.OrganizationConfig) Result {
	st := t.Status()
	st.Running = true
	st.LastStartedAt = t.clock.Now().UTC().Format(time.RFC3339)
	t.status.Store(st)

	res := t.runner.Run(ctx, orgs)

	st = t.Status()
	st.Running = false
	st.LastFinishedAt = t.clock.Now().UTC().Format(time.RFC3339)
	st.LastNewJobs = res.TotalNewJobsInserted
	t.status.Store(st)

	return res
}

// Status returns the latest recorded run status.
func (t *TrackedRunner) Status() RunStatus {
	return t.status.Load().(RunStatus)
}

// LogSummary writes one structured line summarizing a batch result.
func LogSummary(logger *slog.Logger, res Result) {
	logger.Info("batch complete",
		"organizations", res.TotalOrganizations,
		"processed", len(res.Details),
		"new_jobs", res.TotalNewJobsInserted,
	)
}
