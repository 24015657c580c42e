package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/actistats/internal/settings"
	"github.com/sadopc/actistats/internal/stats"
	"github.com/sadopc/actistats/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimeline viewState = iota
	viewTrend
	viewBreakdown
	viewCalendar
	viewViolin
	viewSettings
)

var viewNames = []string{"Timeline", "Trend", "Breakdown", "Calendar", "Violin", "Settings"}

// statsView is the engine view exported from each tab.
var statsView = map[viewState]string{
	viewTimeline:  stats.ViewTimeline,
	viewTrend:     stats.ViewTrend,
	viewBreakdown: stats.ViewPie,
	viewCalendar:  stats.ViewCalendar,
	viewViolin:    stats.ViewViolin,
	viewSettings:  stats.ViewTimeline,
}

// Selection holds the activity ids picked in the calendar.
type Selection struct {
	ids []int64
}

func (s *Selection) Selected() []int64 { return s.ids }

func (s *Selection) SetSelected(ids []int64) {
	s.ids = append([]int64(nil), ids...)
}

// --- Messages ---

type snapshotMsg struct {
	snap stats.Snapshot
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// rejected turns a setter error into a status line.
func rejected(err error) tea.Cmd {
	return func() tea.Msg {
		var ce *stats.ConfigError
		if errors.As(err, &ce) {
			return statusMsg{text: ce.Error(), isError: true}
		}
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

// saveView persists the parameter keys of one view.
func saveView(db *store.Store, view string, fields map[string]string) tea.Cmd {
	if db == nil || len(fields) == 0 {
		return nil
	}
	return func() tea.Msg {
		for field, value := range fields {
			if err := db.SetViewSetting(view, field, value); err != nil {
				return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
			}
		}
		return nil
	}
}

// cycle returns the key after cur in keys, wrapping around.
func cycle(keys []string, cur string) string {
	if len(keys) == 0 {
		return cur
	}
	for i, k := range keys {
		if k == cur {
			return keys[(i+1)%len(keys)]
		}
	}
	return keys[0]
}

// additiveValues lists the value keys a rollup can sum.
func additiveValues(lib *settings.Library) []string {
	var out []string
	for _, k := range lib.ValueKeys() {
		if v, err := lib.Value(k); err == nil && v.Additive {
			out = append(out, k)
		}
	}
	return out
}

// window returns the bounds of the last n of total items, shifted back by
// offset pages.
func window(total, n, offset int) (int, int) {
	if n <= 0 || total <= n {
		return 0, total
	}
	end := total - offset*n
	if end < n {
		end = n
	}
	return end - n, end
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 02, 2006")
}
