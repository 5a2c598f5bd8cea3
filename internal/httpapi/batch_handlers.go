package httpapi

import (
	"net/http"

	"jobfeed/internal/config"
)

// BatchHandler exposes the manual batch trigger and run status.
type BatchHandler struct {
	Runner BatchRunner
	Orgs   []config.OrganizationConfig
}

// Run handles POST /batch/run: executes a full batch synchronously and
// returns the summary. Partial failures (skipped organizations, failed
// ingests) never fail the call; they are simply absent from the details.
// Invoking this while the daily schedule fires is safe: each ingest call is
// one store transaction.
func (h BatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	res := h.Runner.Run(r.Context(), h.Orgs)
	writeJSON(w, http.StatusOK, res)
}

// Status handles GET /batch/status.
func (h BatchHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Runner.Status())
}
