// Package config loads the optional TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml"
)

type Config struct {
	DBPath    string
	LogLevel  string
	LogFile   string
	WeekStart time.Weekday
	Calendar  Calendar
	Violin    Violin
}

// Calendar configures the heatmap palette. The scale colors blend from
// PaletteFrom to PaletteTo in PaletteSteps steps.
type Calendar struct {
	PaletteFrom  string
	PaletteTo    string
	PaletteSteps int
	BelowMin     string
	Selected     string
}

type Violin struct {
	Width            float64
	Height           float64
	OutlierThreshold int
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel:  "info",
		WeekStart: time.Sunday,
		Calendar: Calendar{
			PaletteFrom:  "#1E3A2F",
			PaletteTo:    "#39D353",
			PaletteSteps: 5,
			BelowMin:     "#2A2A2A",
			Selected:     "#FFD166",
		},
		Violin: Violin{Width: 600, Height: 400, OutlierThreshold: 8},
	}
}

// DefaultPath returns ~/.config/actistats/config.toml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "actistats", "config.toml"), nil
}

// Load reads path. A missing file yields Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a TOML document over the defaults.
func Parse(data []byte) (Config, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	c := Default()
	r := reader{tree: tree}
	r.str("db_path", &c.DBPath)
	r.str("log_level", &c.LogLevel)
	r.str("log_file", &c.LogFile)
	var week string
	r.str("week_start", &week)
	r.str("calendar.palette_from", &c.Calendar.PaletteFrom)
	r.str("calendar.palette_to", &c.Calendar.PaletteTo)
	r.integer("calendar.palette_steps", &c.Calendar.PaletteSteps)
	r.str("calendar.below_min", &c.Calendar.BelowMin)
	r.str("calendar.selected", &c.Calendar.Selected)
	r.number("violin.width", &c.Violin.Width)
	r.number("violin.height", &c.Violin.Height)
	r.integer("violin.outlier_threshold", &c.Violin.OutlierThreshold)
	if r.err != nil {
		return Config{}, r.err
	}

	switch strings.ToLower(week) {
	case "", "sunday":
	case "monday":
		c.WeekStart = time.Monday
	default:
		return Config{}, fmt.Errorf("week_start: unknown day %q", week)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges and colors.
func (c Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Calendar.PaletteSteps < 1 {
		return fmt.Errorf("calendar.palette_steps: must be at least 1, got %d", c.Calendar.PaletteSteps)
	}
	if c.Violin.Width <= 0 || c.Violin.Height <= 0 {
		return fmt.Errorf("violin: size must be positive, got %gx%g", c.Violin.Width, c.Violin.Height)
	}
	if c.Violin.OutlierThreshold < 1 {
		return fmt.Errorf("violin.outlier_threshold: must be at least 1, got %d", c.Violin.OutlierThreshold)
	}
	_, err := c.Palette()
	return err
}

// Palette returns [below-min, scale colors..., selected] for the calendar.
func (c Config) Palette() ([]string, error) {
	cal := c.Calendar
	from, err := colorful.Hex(cal.PaletteFrom)
	if err != nil {
		return nil, fmt.Errorf("calendar.palette_from: %w", err)
	}
	to, err := colorful.Hex(cal.PaletteTo)
	if err != nil {
		return nil, fmt.Errorf("calendar.palette_to: %w", err)
	}
	for key, hex := range map[string]string{"below_min": cal.BelowMin, "selected": cal.Selected} {
		if _, err := colorful.Hex(hex); err != nil {
			return nil, fmt.Errorf("calendar.%s: %w", key, err)
		}
	}

	out := []string{cal.BelowMin}
	for i := 0; i < cal.PaletteSteps; i++ {
		t := 1.0
		if cal.PaletteSteps > 1 {
			t = float64(i) / float64(cal.PaletteSteps-1)
		}
		out = append(out, from.BlendLab(to, t).Clamped().Hex())
	}
	return append(out, cal.Selected), nil
}

type reader struct {
	tree *toml.Tree
	err  error
}

func (r *reader) get(key string) (any, bool) {
	if r.err != nil || !r.tree.Has(key) {
		return nil, false
	}
	return r.tree.Get(key), true
}

func (r *reader) fail(key, want string, v any) {
	r.err = fmt.Errorf("%s: expected %s, got %T", key, want, v)
}

func (r *reader) str(key string, dst *string) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, "string", v)
		return
	}
	*dst = s
}

func (r *reader) integer(key string, dst *int) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	n, ok := v.(int64)
	if !ok {
		r.fail(key, "integer", v)
		return
	}
	*dst = int(n)
}

func (r *reader) number(key string, dst *float64) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	switch n := v.(type) {
	case float64:
		*dst = n
	case int64:
		*dst = float64(n)
	default:
		r.fail(key, "number", v)
	}
}
