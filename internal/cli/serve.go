package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aendu/latin-events/internal/logger"
	"github.com/aendu/latin-events/internal/metrics"
	"github.com/aendu/latin-events/internal/pipeline"
	"github.com/aendu/latin-events/internal/scheduler"
	"github.com/aendu/latin-events/internal/server"
)

const shutdownTimeout = 15 * time.Second

type serveOptions struct {
	addr       string
	schedule   string
	runOnStart bool
}

func newServeCmd(g *globalOptions) *cobra.Command {
	s := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Crawl on a schedule and serve the feed over HTTP",
		Long: `Run the crawl on a cron schedule (with seconds, e.g. "0 15 5 * * *") and
serve the public directory, /healthz and /metrics until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g, s)
		},
	}
	f := cmd.Flags()
	f.StringVar(&s.addr, "addr", "", "Listen address (default \":8080\")")
	f.StringVar(&s.schedule, "schedule", "", "Cron schedule with seconds (default \"0 15 5 * * *\")")
	f.BoolVar(&s.runOnStart, "run-on-start", true, "Crawl once immediately after startup")
	return cmd
}

// scheduledRun returns the job executed on every tick. Overlapping ticks
// are skipped and every outcome is recorded in status.
func scheduledRun(runner *pipeline.Runner, status *server.Status, log *logger.Logger) func(context.Context) {
	return func(ctx context.Context) {
		if !status.Begin() {
			log.Warn("previous run still in progress, skipping", nil)
			return
		}
		res, err := runner.Run(ctx)
		status.End(res, err, time.Now())
		if err != nil {
			log.Error("scheduled run failed", nil, err)
		}
	}
}

func runServe(cmd *cobra.Command, g *globalOptions, s *serveOptions) error {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Serve.Addr = s.addr
	}
	if flags.Changed("schedule") {
		cfg.Serve.Schedule = s.schedule
	}
	if flags.Changed("run-on-start") {
		cfg.Serve.RunOnStart = s.runOnStart
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}
	if err := scheduler.Validate(cfg.Serve.Schedule); err != nil {
		return err
	}
	log, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.New(true)
	runner, store, err := newRunner(cfg, rec, log)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(store.PublicDir(), 0755); err != nil {
		return fmt.Errorf("creating public directory: %w", err)
	}

	status := &server.Status{}
	job := scheduledRun(runner, status, log)

	sched := scheduler.New(ctx, log)
	if _, err := sched.Add(cfg.Serve.Schedule, job); err != nil {
		return err
	}

	srv := server.New(cfg.Serve.Addr, server.NewRouter(store.PublicDir(), status, rec, log), log)
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe()
	}()

	sched.Start()
	var initial sync.WaitGroup
	if cfg.Serve.RunOnStart {
		initial.Add(1)
		go func() {
			defer initial.Done()
			job(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down", nil)
	case err = <-srvErr:
		if err != nil {
			err = fmt.Errorf("http server: %w", err)
		}
	}

	stop()
	sched.Stop()
	initial.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = fmt.Errorf("shutting down http server: %w", shutdownErr)
	}
	return err
}
