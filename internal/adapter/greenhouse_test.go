package adapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobfeed/internal/clockutil"
	"jobfeed/internal/filter"
	"jobfeed/internal/model"
)

// Batch cycles in these tests are pinned to this instant.
var testNow = time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFreshness() *filter.Freshness {
	return filter.NewFreshness(clockutil.Fixed(testNow), model.RetentionWindow)
}

// roundTripFunc adapts a function into an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// rewriteClient returns a client that redirects every request to srv.
func rewriteClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

func newTestGreenhouse(srv *httptest.Server, slug, company string) *GreenhouseAdapter {
	return NewGreenhouseAdapter(slug, company, rewriteClient(srv), nil, testFreshness(), discardLogger())
}

func TestGreenhouseFetchPostings_NormalizesAndFilters(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"title": "Software Engineer",
				"location": {"name": "San Francisco, CA"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/1",
				"updated_at": "2024-01-02T09:00:00Z"
			},
			{
				"title": "Backend Engineer",
				"location": {"name": "Remote, US"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/2",
				"updated_at": "2024-01-01T13:00:00Z"
			},
			{
				"title": "Stale Role",
				"location": {"name": "NYC"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/3",
				"updated_at": "2023-12-30T09:00:00Z"
			},
			{
				"title": "No Timestamp",
				"location": {"name": "NYC"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/4"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := newTestGreenhouse(srv, "acme", "Acme")

	postings := a.FetchPostings(context.Background())
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings (stale and timestampless dropped), got %d", len(postings))
	}

	p := postings[0]
	if p.Company != "Acme" {
		t.Errorf("company = %q, want Acme", p.Company)
	}
	if p.Title != "Software Engineer" {
		t.Errorf("title = %q, want Software Engineer", p.Title)
	}
	if p.Location != "San Francisco, CA" {
		t.Errorf("location = %q, want San Francisco, CA", p.Location)
	}
	if p.URL != "https://boards.greenhouse.io/acme/jobs/1" {
		t.Errorf("url = %q", p.URL)
	}
	want := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	if !p.PostedAt.Equal(want) {
		t.Errorf("posted_at = %v, want %v", p.PostedAt, want)
	}
	if p.PostedAt.Location() != time.UTC {
		t.Errorf("posted_at not normalized to UTC: %v", p.PostedAt.Location())
	}
}

func TestGreenhouseFetchPostings_WindowBoundary(t *testing.T) {
	// 23h old stays, 25h old goes.
	payload := `{
		"jobs": [
			{"title": "Keep", "absolute_url": "https://x/1", "updated_at": "2024-01-01T13:00:00Z"},
			{"title": "Drop", "absolute_url": "https://x/2", "updated_at": "2024-01-01T11:00:00Z"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := newTestGreenhouse(srv, "acme", "Acme")
	postings := a.FetchPostings(context.Background())
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].Title != "Keep" {
		t.Errorf("kept posting = %q, want Keep", postings[0].Title)
	}
}

func TestGreenhouseFetchPostings_HTTPErrorYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newTestGreenhouse(srv, "fail-co", "Fail Co")
	if postings := a.FetchPostings(context.Background()); len(postings) != 0 {
		t.Fatalf("expected empty batch on HTTP 500, got %d postings", len(postings))
	}
}

func TestGreenhouseFetchPostings_MalformedBodyYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid json`))
	}))
	defer srv.Close()

	a := newTestGreenhouse(srv, "bad-co", "Bad Co")
	if postings := a.FetchPostings(context.Background()); len(postings) != 0 {
		t.Fatalf("expected empty batch on malformed JSON, got %d postings", len(postings))
	}
}

func TestGreenhouseFetchPostings_NetworkErrorYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	a := newTestGreenhouse(srv, "down-co", "Down Co")
	if postings := a.FetchPostings(context.Background()); len(postings) != 0 {
		t.Fatalf("expected empty batch on network error, got %d postings", len(postings))
	}
}
