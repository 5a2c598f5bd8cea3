package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jobfeed/internal/batch"
	"jobfeed/internal/clockutil"
	"jobfeed/internal/httpapi"
	"jobfeed/internal/scheduler"
	"jobfeed/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily scheduler and the query API",
	Long:  "Start the daemon: the batch scheduler and the HTTP query API run side by side; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"organizations", len(cfg.Organizations),
		"schedule", fmt.Sprintf("%02d:%02d %s", cfg.Schedule.Hour, cfg.Schedule.Minute, cfg.Schedule.Timezone),
		"db", cfg.DBPath,
	)

	clock := clockutil.System()

	st, err := store.Open(cfg.DBPath, clock)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	runner := buildRunner(cfg, st, clock, logger)

	sched := scheduler.NewDaily(
		cfg.Schedule.Hour, cfg.Schedule.Minute, cfg.Schedule.Location,
		func(ctx context.Context) {
			res := runner.Run(ctx, cfg.Organizations)
			batch.LogSummary(logger, res)
		},
		clock, logger,
	)

	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: httpapi.Handler(httpapi.Deps{
			Store:  st,
			Runner: runner,
			Orgs:   cfg.Organizations,
			Logger: logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("api listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
