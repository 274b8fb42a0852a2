package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aendu/latin-events/internal/calendar"
	"github.com/aendu/latin-events/internal/config"
	"github.com/aendu/latin-events/internal/logger"
	"github.com/aendu/latin-events/internal/metrics"
	"github.com/aendu/latin-events/internal/pipeline"
	"github.com/aendu/latin-events/internal/scraper"
	"github.com/aendu/latin-events/internal/source"
	"github.com/aendu/latin-events/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	// ExitNoData means the run produced nothing to publish and the previous
	// feed was left untouched.
	ExitNoData = 3
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
	dataDir    string
	publicDir  string
	threshold  float64
	verbose    bool
}

// crawlOptions are used by the root command and by crawl.
type crawlOptions struct {
	strict          bool
	metricsTextfile string
	daySpan         int
	format          string
}

// NewRootCmd creates the root command. Without a subcommand it crawls.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}
	c := &crawlOptions{}

	cmd := &cobra.Command{
		Use:   "latin-events",
		Short: "Aggregate Swiss salsa, bachata and kizomba events into one CSV feed",
		Long: `latin-events crawls the event calendars of latino.ch and bachata-bern.ch,
classifies every listing by region and dance style, removes duplicates and
publishes the combined feed as events.csv in the data and public directories.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, g, c)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&g.dataDir, "data-dir", "", "Directory for the canonical feed and source snapshots (default \"data\")")
	pf.StringVar(&g.publicDir, "public-dir", "", "Directory for the published mirror of the feed (default \"public\")")
	pf.Float64Var(&g.threshold, "threshold", 0, "Similarity threshold in [0, 1] for duplicate names (default 1)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging and list every published event")

	addCrawlFlags(cmd, c)

	cmd.AddCommand(
		newCrawlCmd(g, c),
		newCombineCmd(g),
		newServeCmd(g),
		newListCmd(g),
		newClassifyCmd(),
	)
	return cmd
}

func addCrawlFlags(cmd *cobra.Command, c *crawlOptions) {
	f := cmd.Flags()
	f.BoolVar(&c.strict, "strict", false, "Fail the run when any source fails")
	f.StringVar(&c.metricsTextfile, "metrics-textfile", "", "Write run metrics in Prometheus text format to this file")
	f.IntVar(&c.daySpan, "day-span", 0, "Number of days ahead to collect (default 90)")
	f.StringVar(&c.format, "format", "text", "Output format: text or json")
}

// loadConfig reads the config file and the environment, then applies the
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command, g *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = g.dataDir
	}
	if flags.Changed("public-dir") {
		cfg.PublicDir = g.publicDir
	}
	if flags.Changed("threshold") {
		cfg.SimilarityThreshold = g.threshold
	}
	if g.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// setupLogger installs the default logger. Logs go to stderr so that stdout
// only carries command output.
func setupLogger(cfg *config.Config) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log := logger.New(level, os.Stderr)
	logger.SetDefault(log)
	return log, nil
}

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// newRunner wires the configured sources to the store.
func newRunner(cfg *config.Config, rec *metrics.Recorder, log *logger.Logger) (*pipeline.Runner, *storage.Store, error) {
	store, err := storage.New(cfg.DataDir, cfg.PublicDir)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}

	client := source.NewClient(cfg.HTTP)
	runner := &pipeline.Runner{
		Sources:   scraper.New(cfg, client, nil),
		Publisher: store,
		Snapshots: store,
		Metrics:   rec,
		Logger:    log,
		Threshold: &cfg.SimilarityThreshold,
		Strict:    cfg.Strict,
	}
	if cfg.Calendar {
		runner.Calendar = &calendar.Writer{Store: store, Location: cfg.Location()}
	}
	return runner, store, nil
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, pipeline.ErrNoData):
		return ExitNoData
	default:
		return ExitError
	}
}

// Execute runs the root command and exits the process.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	_ = logger.Default().Sync()
	os.Exit(ExitCode(err))
}
