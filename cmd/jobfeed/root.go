package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"jobfeed/internal/adapter"
	"jobfeed/internal/batch"
	"jobfeed/internal/config"
	"jobfeed/internal/filter"
	"jobfeed/internal/ingest"
	"jobfeed/internal/model"
	"jobfeed/internal/ratelimit"
	"jobfeed/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobfeed",
	Short: "Job-board ingestion service",
	Long:  "jobfeed polls job-board APIs on a daily schedule, stores fresh postings, and serves them over a small query API.",
	// Default to `serve` so invoking the binary directly runs the daemon.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBFEED_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBFEED_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	_ = godotenv.Load()

	if path == "" {
		if env := os.Getenv("JOBFEED_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// buildRunner assembles the ingestion pipeline: provider adapters behind a
// shared per-host rate limiter and freshness filter, the ingestion engine
// over the store, and the batch runner on top.
func buildRunner(cfg *config.Config, st *store.SQLiteStore, clock model.Clock, logger *slog.Logger) *batch.TrackedRunner {
	httpClient := &http.Client{Timeout: cfg.FetchTimeout}
	limiter := ratelimit.NewHostLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	fresh := filter.NewFreshness(clock, model.RetentionWindow)

	adapterFor := func(org config.OrganizationConfig) (model.ProviderAdapter, bool) {
		switch org.Provider {
		case config.ProviderGreenhouse:
			return adapter.NewGreenhouseAdapter(org.Slug, org.Name, httpClient, limiter, fresh, logger), true
		case config.ProviderLever:
			return adapter.NewLeverAdapter(org.Slug, org.Name, httpClient, limiter, fresh, logger), true
		default:
			return nil, false
		}
	}

	engine := ingest.NewEngine(st, clock, logger)
	return batch.NewTrackedRunner(batch.NewRunner(engine, adapterFor, logger), clock)
}
