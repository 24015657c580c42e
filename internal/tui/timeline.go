package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/actistats/internal/settings"
	"github.com/sadopc/actistats/internal/stats"
)

type timelineModel struct {
	env    *env
	width  int
	height int

	state  stats.State[stats.TimelineParams, []stats.Series]
	years  []int
	offset int

	chart barchart.Model
}

func newTimelineModel(e *env) timelineModel {
	return timelineModel{
		env:   e,
		chart: barchart.New(60, 12),
	}
}

func (m *timelineModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.buildChart()
}

func (m *timelineModel) setSnapshot(snap stats.Snapshot) {
	m.state = snap.Timeline
	m.years = nil
	if snap.Extent.Valid() {
		for y := snap.Extent.Start.Year(); y <= snap.Extent.End.Year(); y++ {
			m.years = append(m.years, y)
		}
	}
	m.buildChart()
}

// visible returns the series drawn as bars: the highlighted year when years
// are split, every series otherwise.
func (m timelineModel) visible() []stats.Series {
	year, split := m.state.Params.TimeGroup.Highlight()
	if !split {
		return m.state.Data
	}
	var out []stats.Series
	for _, s := range m.state.Data {
		if s.Year == year {
			out = append(out, s)
		}
	}
	return out
}

func (m timelineModel) update(msg tea.Msg) (timelineModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	p := m.state.Params
	var u stats.TimelineUpdate
	switch {
	case key.Matches(km, keys.Period):
		u.Period = cycle(m.env.lib.PeriodKeys(), p.Period.Key)
	case key.Matches(km, keys.Value):
		u.Value = cycle(additiveValues(m.env.lib), p.Value.Key)
	case key.Matches(km, keys.Group):
		u.Group = cycle(m.env.lib.GroupKeys(), p.Group.Key)
	case key.Matches(km, keys.Cumulative):
		c := !p.Stat.Cumulative()
		u.Cumulative = &c
	case key.Matches(km, keys.Year):
		return m.nextYear()
	case key.Matches(km, keys.Left):
		m.offset++
		m.buildChart()
		return m, nil
	case key.Matches(km, keys.Right):
		if m.offset > 0 {
			m.offset--
		}
		m.buildChart()
		return m, nil
	default:
		return m, nil
	}

	st, err := m.env.stats.SetTimeline(u)
	if err != nil {
		return m, rejected(err)
	}
	m.offset = 0
	return m, saveView(m.env.db, stats.ViewTimeline, map[string]string{
		"period":     st.Params.Period.Key,
		"value":      st.Params.Value.Key,
		"group":      st.Params.Group.Key,
		"cumulative": strconv.FormatBool(st.Params.Stat.Cumulative()),
	})
}

// nextYear steps the highlight through all years and back to none. Within
// a split it clicks the next year's series.
func (m timelineModel) nextYear() (timelineModel, tea.Cmd) {
	if len(m.years) == 0 {
		return m, nil
	}
	year, split := m.state.Params.TimeGroup.Highlight()
	var tg settings.TimeGroup
	switch {
	case !split:
		tg = settings.ByYear(m.years[0])
	case year >= m.years[len(m.years)-1]:
		tg = settings.AllYears()
	default:
		next := year + 1
		for _, s := range m.state.Data {
			if s.Year == next && s.OnClick != nil {
				s.OnClick()
				return m, nil
			}
		}
		tg = settings.ByYear(next)
	}
	if _, err := m.env.stats.SetTimeline(stats.TimelineUpdate{TimeGroup: &tg}); err != nil {
		return m, rejected(err)
	}
	m.offset = 0
	return m, nil
}

func (m *timelineModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}
	m.chart = barchart.New(chartWidth, chartHeight)

	series := m.visible()
	if len(series) == 0 {
		return
	}
	n := len(series[0].Points)
	from, to := window(n, chartWidth/3, m.offset)

	var bars []barchart.BarData
	for i := from; i < to; i++ {
		var values []barchart.BarValue
		for _, s := range series {
			if i >= len(s.Points) {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  s.Label,
				Value: s.Points[i].Value,
				Style: lipgloss.NewStyle().Foreground(dim(s.Color, s.Alpha)),
			})
		}
		label := ""
		if i == from || i == to-1 {
			label = series[0].XLabel(series[0].Points[i].Date)
		}
		bars = append(bars, barchart.BarData{Label: label, Values: values})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m timelineModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Timeline")

	if !m.state.Loaded {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("  No activities loaded")))
	}
	if m.state.Err != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", errorStyle.Render("  "+m.state.Err.Error())))
	}

	p := m.state.Params
	params := mutedStyle.Render(fmt.Sprintf("%s · %s · %s · %s · %s",
		p.Period.Label, p.Value.Label, p.Group.Label, p.Stat, p.TimeGroup))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", params)

	nav := mutedStyle.Render("  ←/→: page  p/v/g: period/value/group  c: cumulative  y: year")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", m.chart.View(), "", m.renderLegend(), "", m.renderTotals(w), "", nav,
		),
	)
}

func (m timelineModel) renderLegend() string {
	var items []string
	for _, s := range m.state.Data {
		items = append(items, fmt.Sprintf("%s %s", dot(dim(s.Color, s.Alpha)), s.Label))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}

// renderTotals lists the last point of each visible series.
func (m timelineModel) renderTotals(w int) string {
	series := m.visible()
	if len(series) == 0 {
		return mutedStyle.Render("  No data for this period")
	}
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %-14s %18s", "Series", "Through", "Value")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 58))))
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		last := s.Points[len(s.Points)-1]
		rows = append(rows, fmt.Sprintf("  %s %-22s %-14s %18s",
			dot(dim(s.Color, s.Alpha)), s.Label, s.XLabel(last.Date), s.YLabel(last.Value)))
	}
	return strings.Join(rows, "\n")
}
