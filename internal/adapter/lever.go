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

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories is the categories object in a Lever posting.
type leverCategories struct {
	Location string `json:"location"`
}

// leverPosting is a single job in the Lever API response.
type leverPosting struct {
	Text       string          `json:"text"` // title
	Categories leverCategories `json:"categories"`
	CreatedAt  int64           `json:"createdAt"` // epoch milliseconds
	HostedURL  string          `json:"hostedUrl"`
}

// LeverAdapter fetches postings for one organization from the Lever public
// postings API.
type LeverAdapter struct {
	slug    string
	company string
	client  *http.Client
	limiter *ratelimit.HostLimiter
	fresh   *filter.Freshness
	logger  *slog.Logger
}

// NewLeverAdapter creates an adapter for one Lever board.
func NewLeverAdapter(slug, company string, client *http.Client, limiter *ratelimit.HostLimiter, fresh *filter.Freshness, logger *slog.Logger) *LeverAdapter {
	return &LeverAdapter{
		slug:    slug,
		company: company,
		client:  client,
		limiter: limiter,
		fresh:   fresh,
		logger:  logger,
	}
}

// FetchPostings retrieves the board's postings and normalizes the fresh
// ones. A remote failure of any kind yields an empty slice.
func (a *LeverAdapter) FetchPostings(ctx context.Context) []model.Posting {
	postings, err := a.fetch(ctx)
	if err != nil {
		a.logger.Warn("lever fetch failed, returning empty batch",
			"company", a.company,
			"slug", a.slug,
			"error", err,
		)
		return nil
	}
	return postings
}

func (a *LeverAdapter) fetch(ctx context.Context) ([]model.Posting, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, a.slug)

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", a.slug, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", a.slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lever fetch for %s: unexpected status %d", a.slug, resp.StatusCode)
	}

	var leverPostings []leverPosting
	if err := json.NewDecoder(resp.Body).Decode(&leverPostings); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", a.slug, err)
	}

	postings := make([]model.Posting, 0, len(leverPostings))
	for _, lp := range leverPostings {
		// Lever reports creation time in Unix milliseconds; zero means the
		// field was absent and the posting is dropped.
		if lp.CreatedAt <= 0 {
			continue
		}
		t := time.UnixMilli(lp.CreatedAt).UTC()

		if !a.fresh.Keep(t) {
			continue
		}

		postings = append(postings, model.Posting{
			Company:  a.company,
			Title:    lp.Text,
			Location: lp.Categories.Location,
			URL:      lp.HostedURL,
			PostedAt: t,
		})
	}

	return postings, nil
}
