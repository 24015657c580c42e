package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/actistats/internal/export"
	"github.com/sadopc/actistats/internal/settings"
	"github.com/sadopc/actistats/internal/stats"
	"github.com/sadopc/actistats/internal/store"
)

// Options wires the app to the engine and its collaborators. DB may be nil,
// in which case view changes are not persisted.
type Options struct {
	Stats     *stats.Store
	DB        *store.Store
	Library   *settings.Library
	Selection *Selection
	Palette   []string
	WeekStart time.Weekday
	ExportDir string
}

// env is shared by the view models.
type env struct {
	stats     *stats.Store
	db        *store.Store
	lib       *settings.Library
	sel       *Selection
	palette   []string
	weekStart time.Weekday
}

// feed records the latest snapshot published by the engine.
type feed struct {
	snap  stats.Snapshot
	dirty bool
}

// App is the root Bubble Tea model.
type App struct {
	env       *env
	feed      *feed
	unsub     func()
	exportDir string
	width     int
	height    int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	timeline  timelineModel
	trend     trendModel
	breakdown breakdownModel
	calendar  calendarModel
	violin    violinModel
	settings  settingsModel

	help   help.Model
	status string
}

func NewApp(o Options) App {
	h := help.New()
	h.ShowAll = false

	sel := o.Selection
	if sel == nil {
		sel = &Selection{}
	}
	e := &env{
		stats:     o.Stats,
		db:        o.DB,
		lib:       o.Library,
		sel:       sel,
		palette:   o.Palette,
		weekStart: o.WeekStart,
	}
	f := &feed{}
	a := App{
		env:        e,
		feed:       f,
		exportDir:  o.ExportDir,
		activeView: viewTimeline,
		timeline:   newTimelineModel(e),
		trend:      newTrendModel(e),
		breakdown:  newBreakdownModel(e),
		calendar:   newCalendarModel(e),
		violin:     newViolinModel(e),
		settings:   newSettingsModel(e),
		help:       h,
	}
	a.unsub = o.Stats.Subscribe(func(s stats.Snapshot) {
		f.snap = s
		f.dirty = true
	})
	a.setSnapshot(o.Stats.Snapshot())
	return a
}

// Close removes the app's engine subscription.
func (a App) Close() {
	if a.unsub != nil {
		a.unsub()
	}
}

func (a App) Init() tea.Cmd {
	return a.settings.refresh()
}

func (a *App) setSnapshot(snap stats.Snapshot) {
	a.timeline.setSnapshot(snap)
	a.trend.setSnapshot(snap)
	a.breakdown.setSnapshot(snap)
	a.calendar.setSnapshot(snap)
	a.violin.setSnapshot(snap)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.update(msg)
	a = model.(App)
	if a.feed.dirty {
		a.feed.dirty = false
		snap := a.feed.snap
		cmd = tea.Batch(cmd, func() tea.Msg { return snapshotMsg{snap: snap} })
	}
	return a, cmd
}

func (a App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timeline.setSize(a.width, contentHeight)
		a.trend.setSize(a.width, contentHeight)
		a.breakdown.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.violin.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimeline
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTrend
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewBreakdown
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewCalendar
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewViolin
			return a, nil
		case key.Matches(msg, keys.Tab6):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			if a.activeView == viewSettings {
				return a, a.settings.refresh()
			}
			return a, nil
		}

	case snapshotMsg:
		a.setSnapshot(msg.snap)
		return a, nil

	case statusMsg:
		a.status = msg.text
		if msg.isError {
			a.status = errorStyle.Render(msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimeline:
		a.timeline, cmd = a.timeline.update(msg)
	case viewTrend:
		a.trend, cmd = a.trend.update(msg)
	case viewBreakdown:
		a.breakdown, cmd = a.breakdown.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewViolin:
		a.violin, cmd = a.violin.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimeline:
		content = a.timeline.view()
	case viewTrend:
		content = a.trend.view()
	case viewBreakdown:
		content = a.breakdown.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewViolin:
		content = a.violin.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("actistats")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	snap := a.env.stats.Snapshot()
	records := ""
	if snap.Loaded {
		records = successStyle.Render(" ● " + humanize.Comma(int64(snap.Records)) + " activities")
		if n := len(a.env.sel.Selected()); n > 0 {
			records += warningStyle.Render(fmt.Sprintf("  %d selected", n))
		}
	}

	left := footerStyle.Render(helpView)
	right := records + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export " + viewNames[a.activeView])
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the active view of the current snapshot. The snapshot is
// taken here so the command never touches the engine.
func (a App) doExport(format int) tea.Cmd {
	snap := a.env.stats.Snapshot()
	view := statsView[a.activeView]
	dir := a.exportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("actistats-%s-%s.csv", view, dateStr))
			var err error
			switch view {
			case stats.ViewTimeline:
				err = export.TimelineCSV(snap.Timeline.Data, path)
			case stats.ViewTrend:
				err = export.TrendCSV(snap.Trend.Data, path)
			default:
				err = fmt.Errorf("CSV export supports the timeline and trend views, not %s", view)
			}
			if err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("actistats-%s-%s.json", view, dateStr))
			if err := export.ViewJSON(snap, view, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
