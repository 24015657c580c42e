package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sadopc/actistats/internal/config"
	"github.com/sadopc/actistats/internal/settings"
	"github.com/sadopc/actistats/internal/stats"
	"github.com/sadopc/actistats/internal/store"
	"github.com/sadopc/actistats/internal/tui"
)

var (
	cfgFile  string
	dbPath   string
	logLevel string

	filterName    string
	filterSports  []string
	filterCountry string
)

var rootCmd = &cobra.Command{
	Use:          "actistats",
	Short:        "Explore activity statistics in the terminal",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/actistats/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides db_path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides log_level)")

	addFilterFlags(rootCmd)
}

// addFilterFlags registers the activity filter flags on cmd.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterName, "filter", "", "apply a saved filter")
	cmd.Flags().StringSliceVar(&filterSports, "sport", nil, "only include these sport types")
	cmd.Flags().StringVar(&filterCountry, "country", "", "only include activities in this country")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the global flags.
func loadConfig() (config.Config, error) {
	path := cfgFile
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return config.Config{}, err
		}
		cfg.DBPath = p
	}
	return cfg, cfg.Validate()
}

// session is an opened database with its logger.
type session struct {
	cfg    config.Config
	log    *logrus.Logger
	db     *store.Store
	closer io.Closer
}

func openSession(cfg config.Config, logOut io.Writer) (*session, error) {
	log, closer, err := config.NewLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}
	db, err := store.New(cfg.DBPath)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.WithField("path", cfg.DBPath).Debug("opened database")
	return &session{cfg: cfg, log: log, db: db, closer: closer}, nil
}

func (s *session) Close() {
	s.db.Close()
	s.closer.Close()
}

// engine builds the aggregation store, restores the persisted view
// parameters and loads every stored activity.
func (s *session) engine(sel stats.Selection) (*stats.Store, *settings.Library, error) {
	lib := settings.Default(s.cfg.WeekStart)
	st, err := stats.NewStore(lib, sel, s.log)
	if err != nil {
		return nil, nil, err
	}
	layout := stats.Layout{Width: s.cfg.Violin.Width, Height: s.cfg.Violin.Height}
	threshold := s.cfg.Violin.OutlierThreshold
	if _, err := st.SetViolin(stats.ViolinUpdate{Layout: &layout, OutlierThreshold: &threshold}); err != nil {
		return nil, nil, err
	}
	if err := tui.RestoreViews(st, s.db); err != nil {
		s.log.WithError(err).Warn("view settings not fully restored")
	}

	acts, err := s.db.ListActivities(store.ActivityFilter{})
	if err != nil {
		return nil, nil, err
	}
	st.SetActivities(acts)
	s.log.WithField("activities", len(acts)).Info("loaded activities")

	if err := s.applyFilter(st); err != nil {
		return nil, nil, err
	}
	return st, lib, nil
}

// applyFilter narrows st to the activities matched by the filter flags.
func (s *session) applyFilter(st *stats.Store) error {
	var f store.ActivityFilter
	switch {
	case filterName != "":
		sf, err := s.db.GetFilter(filterName)
		if err != nil {
			return err
		}
		f = sf.Filter
	case len(filterSports) > 0 || filterCountry != "":
		f = store.ActivityFilter{SportTypes: filterSports, Country: filterCountry}
	default:
		return nil
	}
	ids, err := s.db.FilterIDs(f)
	if err != nil {
		return err
	}
	st.SetFilter(ids)
	s.log.WithField("matched", len(ids)).Info("applied filter")
	return nil
}

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// The terminal belongs to the UI, so logs go to a file.
	if cfg.LogFile == "" {
		p, err := config.DefaultLogPath()
		if err != nil {
			return err
		}
		cfg.LogFile = p
	}
	palette, err := cfg.Palette()
	if err != nil {
		return err
	}

	s, err := openSession(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer s.Close()

	sel := &tui.Selection{}
	st, lib, err := s.engine(sel)
	if err != nil {
		return err
	}

	app := tui.NewApp(tui.Options{
		Stats:     st,
		DB:        s.db,
		Library:   lib,
		Selection: sel,
		Palette:   palette,
		WeekStart: cfg.WeekStart,
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
