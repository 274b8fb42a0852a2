package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aendu/latin-events/internal/labels"
	"github.com/aendu/latin-events/internal/region"
	"github.com/aendu/latin-events/internal/style"
)

// Classification is the output of the classify command.
type Classification struct {
	City   string       `json:"city,omitempty"`
	Region string       `json:"region"`
	Name   string       `json:"name,omitempty"`
	Labels []string     `json:"labels,omitempty"`
	Styles []style.Code `json:"styles"`
	Style  string       `json:"style"`
}

func newClassifyCmd() *cobra.Command {
	var (
		city      string
		host      string
		rawLabels []string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "classify [name...]",
		Short: "Show the region and styles assigned to a listing",
		Example: `  latin-events classify --city "3011 Bern" "Bachata Sensual Night"
  latin-events classify --label Salsa --label Kizomba --format json "Social"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseFormat(format)
			if err != nil {
				return err
			}
			name := strings.Join(args, " ")
			if name == "" && city == "" && host == "" && len(rawLabels) == 0 {
				return fmt.Errorf("nothing to classify: pass a name, --city, --host or --label")
			}
			return writeClassification(cmd.OutOrStdout(), classify(name, city, host, rawLabels), out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&city, "city", "", "Locality, e.g. \"8004 Zürich\"")
	f.StringVar(&host, "host", "", "Organizer name")
	f.StringSliceVar(&rawLabels, "label", nil, "Label of the listing (repeatable)")
	f.StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func classify(name, city, host string, rawLabels []string) Classification {
	lbls := labels.Normalize(rawLabels)
	codes := style.Detect(name, lbls, "", host)
	return Classification{
		City:   city,
		Region: string(region.Classify(city)),
		Name:   name,
		Labels: lbls,
		Styles: codes,
		Style:  style.Cell(codes),
	}
}

func writeClassification(w io.Writer, c Classification, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, c)
	}
	names := make([]string, len(c.Styles))
	for i, code := range c.Styles {
		names[i] = code.Name()
	}
	fmt.Fprintf(w, "Region: %s\n", c.Region)
	fmt.Fprintf(w, "Style:  %s (%s)\n", c.Style, strings.Join(names, ", "))
	if len(c.Labels) > 0 {
		fmt.Fprintf(w, "Labels: %s\n", labels.Cell(c.Labels))
	}
	return nil
}
