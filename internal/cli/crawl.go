package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aendu/latin-events/internal/config"
	"github.com/aendu/latin-events/internal/logger"
	"github.com/aendu/latin-events/internal/metrics"
	"github.com/aendu/latin-events/internal/pipeline"
	"github.com/aendu/latin-events/internal/scraper"
)

func newCrawlCmd(g *globalOptions, c *crawlOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Fetch all sources and publish the combined feed",
		Long: `Fetch every enabled source, store a snapshot per source and publish the
deduplicated feed. A source that fails keeps its previous snapshot; the run
only fails when nothing at all can be published, or with --strict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, g, c)
		},
	}
	addCrawlFlags(cmd, c)
	return cmd
}

func newCombineCmd(g *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Republish the feed from the stored source snapshots",
		Long: `Rebuild events.csv from the per-source snapshots in the data directory
without fetching anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if err := cfg.Finalize(); err != nil {
				return err
			}
			log, err := setupLogger(cfg)
			if err != nil {
				return err
			}

			runner, store, err := newRunner(cfg, nil, log)
			if err != nil {
				return err
			}
			batches, err := pipeline.LoadSnapshots(store, scraper.SourceNames())
			if err != nil {
				return err
			}
			res, err := runner.Combine(batches)
			if err != nil {
				return err
			}
			return WriteOutput(cmd.OutOrStdout(), newOutputResult(res, store), out, g.verbose)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func applyCrawlFlags(cmd *cobra.Command, cfg *config.Config, c *crawlOptions) {
	flags := cmd.Flags()
	if flags.Changed("strict") {
		cfg.Strict = c.strict
	}
	if flags.Changed("metrics-textfile") {
		cfg.MetricsTextfile = c.metricsTextfile
	}
	if flags.Changed("day-span") {
		cfg.DaySpan = c.daySpan
	}
}

func runCrawl(cmd *cobra.Command, g *globalOptions, c *crawlOptions) error {
	out, err := parseFormat(c.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	applyCrawlFlags(cmd, cfg, c)
	if err := cfg.Finalize(); err != nil {
		return err
	}
	log, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.New(false)
	runner, store, err := newRunner(cfg, rec, log)
	if err != nil {
		return err
	}

	res, runErr := runner.Run(ctx)

	// The textfile is written for failed runs too so the collector sees them.
	if cfg.MetricsTextfile != "" {
		if err := rec.WriteTextfile(cfg.MetricsTextfile); err != nil {
			log.Warn("writing metrics textfile failed", logger.Fields{"path": cfg.MetricsTextfile, "error": err.Error()})
		}
	}
	if runErr != nil {
		return runErr
	}
	return WriteOutput(cmd.OutOrStdout(), newOutputResult(res, store), out, g.verbose)
}
