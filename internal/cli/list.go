package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aendu/latin-events/internal/event"
	"github.com/aendu/latin-events/internal/filter"
	"github.com/aendu/latin-events/internal/storage"
)

type listOptions struct {
	file     string
	dates    string
	regions  []string
	styles   []string
	cities   []string
	terms    []string
	sources  []string
	weekends bool
	format   string
}

func newListCmd(g *globalOptions) *cobra.Command {
	o := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Query the published feed",
		Long: `List events of the published feed that match all given criteria. Repeated
flags of the same kind match any of their values.`,
		Example: `  latin-events list --region bern --style bachata --weekends
  latin-events list --dates 2025-05-01..2025-05-31 --search kaufleuten --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.file, "file", "", "Feed to read (default: events.csv in the data directory)")
	f.StringVar(&o.dates, "dates", "", "Date range, e.g. 2025-05-01..2025-05-31, 2025-05, weekend or 'Mar 1-15'")
	f.StringSliceVar(&o.regions, "region", nil, "Region name or fragment, e.g. bern (repeatable)")
	f.StringSliceVar(&o.styles, "style", nil, "Style code or name, e.g. B or bachata (repeatable)")
	f.StringSliceVar(&o.cities, "city", nil, "City substring (repeatable)")
	f.StringSliceVar(&o.terms, "search", nil, "Substring of name, host or labels (repeatable)")
	f.StringSliceVar(&o.sources, "source", nil, "Source tag, e.g. latino.ch (repeatable)")
	f.BoolVar(&o.weekends, "weekends", false, "Only Saturdays and Sundays")
	f.StringVar(&o.format, "format", "text", "Output format: text or json")
	return cmd
}

// buildFilter turns the flag values into a filter; dates are relative to now.
func buildFilter(o *listOptions, now time.Time) (*filter.Filter, error) {
	f := filter.New()
	f.Cities = o.cities
	f.Terms = o.terms
	f.Sources = o.sources
	f.WeekendsOnly = o.weekends

	if o.dates != "" {
		from, to, err := filter.ParseDateRange(o.dates, now)
		if err != nil {
			return nil, err
		}
		f.DateFrom, f.DateTo = from, to
	}
	for _, value := range o.regions {
		r, err := filter.ParseRegion(value)
		if err != nil {
			return nil, err
		}
		f.Regions = append(f.Regions, r)
	}
	for _, value := range o.styles {
		code, err := filter.ParseStyle(value)
		if err != nil {
			return nil, err
		}
		f.Styles = append(f.Styles, code)
	}
	return f, nil
}

func runList(cmd *cobra.Command, g *globalOptions, o *listOptions) error {
	out, err := parseFormat(o.format)
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
	if _, err := setupLogger(cfg); err != nil {
		return err
	}

	f, err := buildFilter(o, time.Now().In(cfg.Location()))
	if err != nil {
		return err
	}

	path := o.file
	if path == "" {
		store, err := storage.New(cfg.DataDir, cfg.PublicDir)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		path = store.FeedPath()
	}
	events, err := storage.ReadEvents(path)
	if err != nil {
		return err
	}
	if events == nil {
		return fmt.Errorf("no feed at %s, run crawl first", path)
	}

	matching := f.Apply(events)
	if out == FormatJSON {
		if matching == nil {
			matching = []*event.Event{}
		}
		return writeJSON(cmd.OutOrStdout(), matching)
	}
	writeEventList(cmd.OutOrStdout(), matching)
	return nil
}

func writeEventList(w io.Writer, events []*event.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No matching events.")
		return
	}
	writeEvents(w, events)
	fmt.Fprintf(w, "\nTotal: %d events\n", len(events))
}
