package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobfeed/internal/batch"
	"jobfeed/internal/clockutil"
	"jobfeed/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one batch now and print the summary",
	Long:  "One-shot batch: polls every configured organization, ingests fresh postings into the store, prints the summary as JSON, and exits.",
	RunE:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	clock := clockutil.System()

	st, err := store.Open(cfg.DBPath, clock)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	runner := buildRunner(cfg, st, clock, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := runner.Run(ctx, cfg.Organizations)
	batch.LogSummary(logger, res)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
