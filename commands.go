package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/actistats/internal/export"
	"github.com/sadopc/actistats/internal/stats"
	"github.com/sadopc/actistats/internal/store"
)

var (
	filterFrom string
	filterTo   string
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import activities from GeoJSON feature collections",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := cliSession()
		if err != nil {
			return err
		}
		defer s.Close()

		total := 0
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			n, err := s.db.ImportGeoJSON(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			s.log.WithField("file", path).WithField("activities", n).Info("imported")
			total += n
		}
		fmt.Printf("Imported %s activities\n", humanize.Comma(int64(total)))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export VIEW FILE",
	Short: "Export one view of the statistics as CSV or JSON",
	Long: "Export one view of the statistics. Files ending in .csv are written as CSV,\n" +
		"which the timeline and trend views support. Anything else is written as JSON.\n\n" +
		"Views: " + strings.Join(export.Views, ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, path := args[0], args[1]
		if !knownView(view) {
			return fmt.Errorf("unknown view %q (want one of %s)", view, strings.Join(export.Views, ", "))
		}

		s, err := cliSession()
		if err != nil {
			return err
		}
		defer s.Close()

		st, _, err := s.engine(nil)
		if err != nil {
			return err
		}
		snap := st.Snapshot()

		if strings.HasSuffix(strings.ToLower(path), ".csv") {
			switch view {
			case stats.ViewTimeline:
				err = export.TimelineCSV(snap.Timeline.Data, path)
			case stats.ViewTrend:
				err = export.TrendCSV(snap.Trend.Data, path)
			default:
				err = fmt.Errorf("CSV export supports the timeline and trend views, not %s", view)
			}
		} else {
			err = export.ViewJSON(snap, view, path)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported %s (%s activities) to %s\n", view, humanize.Comma(int64(snap.Records)), path)
		return nil
	},
}

func knownView(view string) bool {
	for _, v := range export.Views {
		if v == view {
			return true
		}
	}
	return false
}

var sportsCmd = &cobra.Command{
	Use:   "sports",
	Short: "List stored sport types and the covered date range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := cliSession()
		if err != nil {
			return err
		}
		defer s.Close()

		counts, err := s.db.ListSportTypes()
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			fmt.Println("No activities stored")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, c := range counts {
			fmt.Fprintf(tw, "%s\t%s\n", c.SportType, humanize.Comma(int64(c.Count)))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		r, err := s.db.DateRange()
		if err != nil {
			return err
		}
		if r.Valid() {
			fmt.Printf("\n%s to %s\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
		}
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Manage saved activity filters",
}

var filterSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save a filter built from --sport, --country, --from and --to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := store.ActivityFilter{SportTypes: filterSports, Country: filterCountry}
		var err error
		if f.From, err = parseDay("from", filterFrom); err != nil {
			return err
		}
		if f.To, err = parseDay("to", filterTo); err != nil {
			return err
		}

		s, err := cliSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.db.SaveFilter(args[0], f); err != nil {
			return err
		}
		ids, err := s.db.FilterIDs(f)
		if err != nil {
			return err
		}
		fmt.Printf("Saved filter %s (%s matching activities)\n", args[0], humanize.Comma(int64(len(ids))))
		return nil
	},
}

var filterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := cliSession()
		if err != nil {
			return err
		}
		defer s.Close()

		filters, err := s.db.ListFilters()
		if err != nil {
			return err
		}
		if len(filters) == 0 {
			fmt.Println("No saved filters")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, sf := range filters {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", sf.Name, describeFilter(sf.Filter), humanize.Time(sf.CreatedAt))
		}
		return tw.Flush()
	},
}

var filterDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := cliSession()
		if err != nil {
			return err
		}
		defer s.Close()
		return s.db.DeleteFilter(args[0])
	},
}

func init() {
	addFilterFlags(exportCmd)

	fs := filterSaveCmd.Flags()
	fs.StringSliceVar(&filterSports, "sport", nil, "sport types to include")
	fs.StringVar(&filterCountry, "country", "", "country to include")
	fs.StringVar(&filterFrom, "from", "", "first day, YYYY-MM-DD")
	fs.StringVar(&filterTo, "to", "", "last day, YYYY-MM-DD")

	filterCmd.AddCommand(filterSaveCmd, filterListCmd, filterDeleteCmd)
	rootCmd.AddCommand(importCmd, exportCmd, sportsCmd, filterCmd)
}

// cliSession opens a session that logs to stderr unless a log file is set.
func cliSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openSession(cfg, os.Stderr)
}

func parseDay(flag, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &t, nil
}

func describeFilter(f store.ActivityFilter) string {
	var parts []string
	if len(f.SportTypes) > 0 {
		parts = append(parts, "sport="+strings.Join(f.SportTypes, ","))
	}
	if f.Country != "" {
		parts = append(parts, "country="+f.Country)
	}
	if f.From != nil {
		parts = append(parts, "from="+f.From.Format("2006-01-02"))
	}
	if f.To != nil {
		parts = append(parts, "to="+f.To.Format("2006-01-02"))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}
