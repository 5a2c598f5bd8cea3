package batch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"jobfeed/internal/adapter"
	"jobfeed/internal/clockutil"
	"jobfeed/internal/config"
	"jobfeed/internal/filter"
	"jobfeed/internal/ingest"
	"jobfeed/internal/model"
	"jobfeed/internal/store"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Full pipeline over a real store: a board with two fresh jobs and one stale
// one yields fetched 2, inserted 2, and a second run inserts nothing.
func TestRunEndToEnd(t *testing.T) {
	payload := `{
		"jobs": [
			{"title": "Engineer", "location": {"name": "Remote"}, "absolute_url": "https://boards.greenhouse.io/acme/jobs/1", "updated_at": "2024-01-02T09:00:00Z"},
			{"title": "Designer", "location": {"name": "NYC"}, "absolute_url": "https://boards.greenhouse.io/acme/jobs/2", "updated_at": "2024-01-02T10:00:00Z"},
			{"title": "Stale Role", "location": {"name": "NYC"}, "absolute_url": "https://boards.greenhouse.io/acme/jobs/3", "updated_at": "2023-12-30T09:00:00Z"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}

	clock := clockutil.Fixed(testNow)
	st, err := store.Open(filepath.Join(t.TempDir(), "jobs.db"), clock)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	logger := discardLogger()
	fresh := filter.NewFreshness(clock, model.RetentionWindow)
	adapterFor := func(org config.OrganizationConfig) (model.ProviderAdapter, bool) {
		if org.Provider != config.ProviderGreenhouse {
			return nil, false
		}
		return adapter.NewGreenhouseAdapter(org.Slug, org.Name, client, nil, fresh, logger), true
	}
	r := NewRunner(ingest.NewEngine(st, clock, logger), adapterFor, logger)

	cfgOrgs := []config.OrganizationConfig{{Name: "Acme", Slug: "acme", Provider: config.ProviderGreenhouse}}

	res := r.Run(context.Background(), cfgOrgs)
	if len(res.Details) != 1 {
		t.Fatalf("details = %+v, want 1 entry", res.Details)
	}
	if res.Details[0].FetchedCount != 2 || res.Details[0].InsertedCount != 2 {
		t.Errorf("first run counts = %+v, want fetched 2 inserted 2", res.Details[0])
	}
	if res.TotalNewJobsInserted != 2 {
		t.Errorf("total new jobs = %d, want 2", res.TotalNewJobsInserted)
	}

	// Same board again: everything is already stored.
	res = r.Run(context.Background(), cfgOrgs)
	if res.Details[0].FetchedCount != 2 || res.Details[0].InsertedCount != 0 {
		t.Errorf("second run counts = %+v, want fetched 2 inserted 0", res.Details[0])
	}

	jobs, err := st.ListJobs(context.Background(), store.ListOpts{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("stored %d jobs, want 2", len(jobs))
	}
	for _, j := range jobs {
		if j.Status != model.StatusNew {
			t.Errorf("job %s status = %q, want new", j.URL, j.Status)
		}
		if j.PostedAt.Before(testNow.Add(-24 * time.Hour)) {
			t.Errorf("stale job %s survived the window", j.URL)
		}
	}
}
