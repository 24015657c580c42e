package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/actistats/internal/stats"
)

const maxDayActivities = 6

type calendarModel struct {
	env    *env
	width  int
	height int

	state  stats.State[stats.CalendarParams, stats.CalendarData]
	days   map[string]stats.CalendarDay
	cursor time.Time
}

func newCalendarModel(e *env) calendarModel {
	return calendarModel{env: e}
}

func (m *calendarModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *calendarModel) setSnapshot(snap stats.Snapshot) {
	m.state = snap.Calendar
	m.days = make(map[string]stats.CalendarDay, len(m.state.Data.Days))
	for _, d := range m.state.Data.Days {
		m.days[d.Day] = d
	}
	ext := m.state.Data.Extent
	if !ext.Valid() {
		m.cursor = time.Time{}
		return
	}
	if m.cursor.IsZero() || m.cursor.Before(dayFloor(ext.Start)) || m.cursor.After(ext.End) {
		m.cursor = dayFloor(ext.End)
	}
}

func dayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekFloor returns the first day of the week containing t.
func (m calendarModel) weekFloor(t time.Time) time.Time {
	d := dayFloor(t)
	shift := (int(d.Weekday()) - int(m.env.weekStart) + 7) % 7
	return d.AddDate(0, 0, -shift)
}

func (m calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Value):
		st, err := m.env.stats.SetCalendar(stats.CalendarUpdate{Value: cycle(additiveValues(m.env.lib), m.state.Params.Value.Key)})
		if err != nil {
			return m, rejected(err)
		}
		return m, saveView(m.env.db, stats.ViewCalendar, map[string]string{"value": st.Params.Value.Key})
	case key.Matches(km, keys.Left):
		m.move(-7)
	case key.Matches(km, keys.Right):
		m.move(7)
	case key.Matches(km, keys.Up):
		m.move(-1)
	case key.Matches(km, keys.Down):
		m.move(1)
	case key.Matches(km, keys.Enter):
		if m.state.Data.OnClick != nil && !m.cursor.IsZero() {
			day := m.cursor.Format("2006-01-02")
			m.state.Data.OnClick(day)
			n := len(m.env.sel.Selected())
			return m, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Selected %s %s", humanize.Comma(int64(n)), plural(n, "activity", "activities"))}
			}
		}
	case key.Matches(km, keys.Back):
		m.env.sel.SetSelected(nil)
		m.env.stats.SelectionChanged()
	}
	return m, nil
}

func (m *calendarModel) move(days int) {
	ext := m.state.Data.Extent
	if !ext.Valid() {
		return
	}
	next := m.cursor.AddDate(0, 0, days)
	if next.Before(dayFloor(ext.Start)) || next.After(ext.End) {
		return
	}
	m.cursor = next
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func (m calendarModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Calendar")

	if !m.state.Loaded {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("  No activities loaded")))
	}
	if m.state.Err != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", errorStyle.Render("  "+m.state.Err.Error())))
	}

	d := m.state.Data
	params := mutedStyle.Render(fmt.Sprintf("%s · max %s · %s to %s",
		m.state.Params.Value.Label, m.state.Params.Value.Format(d.MaxValue),
		formatDay(d.Extent.Start), formatDay(d.Extent.End)))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", params)

	grid, err := m.renderGrid(w)
	if err != nil {
		grid = errorStyle.Render("  " + err.Error())
	}

	nav := mutedStyle.Render("  ←/→: week  ↑/↓: day  enter: select day  esc: clear  v: value")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", grid, "", m.renderDay(), "", nav),
	)
}

// renderGrid draws one column per week and one row per weekday.
func (m calendarModel) renderGrid(w int) (string, error) {
	color, err := m.state.Data.ColorScale(m.env.palette)
	if err != nil {
		return "", err
	}
	weeks := max((w-12)/2, 4)
	last := m.weekFloor(m.state.Data.Extent.End)
	first := last.AddDate(0, 0, -7*(weeks-1))
	if m.cursor.Before(first) {
		first = m.weekFloor(m.cursor)
		last = first.AddDate(0, 0, 7*(weeks-1))
	}

	cursor := m.cursor.Format("2006-01-02")
	var rows []string
	for wd := 0; wd < 7; wd++ {
		var b strings.Builder
		label := time.Weekday((int(m.env.weekStart) + wd) % 7).String()[:3]
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-4s", label)))
		for col := first; !col.After(last); col = col.AddDate(0, 0, 7) {
			day := col.AddDate(0, 0, wd)
			ds := day.Format("2006-01-02")
			cell := "■"
			if ds == cursor {
				cell = "▣"
			}
			c, ok := m.days[ds]
			switch {
			case day.Before(dayFloor(m.state.Data.Extent.Start)) || day.After(m.state.Data.Extent.End):
				b.WriteString("  ")
			case ok:
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color(c))).Render(cell) + " ")
			default:
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color(stats.CalendarDay{Day: ds}))).Render(cell) + " ")
			}
		}
		rows = append(rows, b.String())
	}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-4s%s", "", first.Format("Jan 02"))))
	return strings.Join(rows, "\n"), nil
}

// renderDay lists the activities of the cursor day.
func (m calendarModel) renderDay() string {
	if m.cursor.IsZero() {
		return ""
	}
	day := m.cursor.Format("2006-01-02")
	c := m.days[day]
	head := fmt.Sprintf("  %s  %s", highlightStyle.Render(formatDay(m.cursor)), m.state.Params.Value.Format(c.Value))
	if c.Selected {
		head += "  " + warningStyle.Render("selected")
	}
	rows := []string{head}
	for i, a := range m.state.Data.ByDay[day] {
		if i == maxDayActivities {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("    … %d more", len(m.state.Data.ByDay[day])-maxDayActivities)))
			break
		}
		rows = append(rows, fmt.Sprintf("    %s %s", mutedStyle.Render(a.SportType), a.Name))
	}
	return strings.Join(rows, "\n")
}
