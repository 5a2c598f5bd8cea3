package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"jobfeed/internal/filter"
	"jobfeed/internal/model"
	"jobfeed/internal/ratelimit"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob is a single job in the Greenhouse board API response.
type greenhouseJob struct {
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"` // RFC 3339, Z-suffixed
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseAdapter fetches postings for one organization from the
// Greenhouse public boards API.
type GreenhouseAdapter struct {
	slug    string
	company string
	client  *http.Client
	limiter *ratelimit.HostLimiter
	fresh   *filter.Freshness
	logger  *slog.Logger
}

// NewGreenhouseAdapter creates an adapter for one Greenhouse board.
func NewGreenhouseAdapter(slug, company string, client *http.Client, limiter *ratelimit.HostLimiter, fresh *filter.Freshness, logger *slog.Logger) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		slug:    slug,
		company: company,
		client:  client,
		limiter: limiter,
		fresh:   fresh,
		logger:  logger,
	}
}

// FetchPostings retrieves the board's jobs and normalizes the fresh ones
// into Postings. A remote failure of any kind yields an empty slice; the
// next daily cycle is the retry.
func (a *GreenhouseAdapter) FetchPostings(ctx context.Context) []model.Posting {
	postings, err := a.fetch(ctx)
	if err != nil {
		a.logger.Warn("greenhouse fetch failed, returning empty batch",
			"company", a.company,
			"slug", a.slug,
			"error", err,
		)
		return nil
	}
	return postings
}

func (a *GreenhouseAdapter) fetch(ctx context.Context) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s/jobs", greenhouseBaseURL, a.slug)

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", a.slug, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", a.slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("greenhouse fetch for %s: unexpected status %d", a.slug, resp.StatusCode)
	}

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", a.slug, err)
	}

	postings := make([]model.Posting, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		// A job without a usable timestamp is dropped, never defaulted.
		if gj.UpdatedAt == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, gj.UpdatedAt)
		if err != nil {
			continue
		}
		t = t.UTC()

		if !a.fresh.Keep(t) {
			continue
		}

		postings = append(postings, model.Posting{
			Company:  a.company,
			Title:    gj.Title,
			Location: gj.Location.Name,
			URL:      gj.AbsoluteURL,
			PostedAt: t,
		})
	}

	return postings, nil
}
