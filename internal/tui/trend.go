package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/actistats/internal/stats"
)

type trendModel struct {
	env    *env
	width  int
	height int

	state  stats.State[stats.TrendParams, stats.TrendData]
	offset int

	chart    barchart.Model
	smoothed barchart.Model
}

func newTrendModel(e *env) trendModel {
	return trendModel{
		env:      e,
		chart:    barchart.New(60, 8),
		smoothed: barchart.New(60, 8),
	}
}

func (m *trendModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.buildCharts()
}

func (m *trendModel) setSnapshot(snap stats.Snapshot) {
	m.state = snap.Trend
	m.buildCharts()
}

// absolutePeriods lists the period keys the trend view accepts.
func (m trendModel) absolutePeriods() []string {
	var out []string
	for _, k := range m.env.lib.PeriodKeys() {
		if p, err := m.env.lib.Period(k); err == nil && !p.Relative {
			out = append(out, k)
		}
	}
	return out
}

func (m trendModel) update(msg tea.Msg) (trendModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	p := m.state.Params
	var u stats.TrendUpdate
	switch {
	case key.Matches(km, keys.Period):
		u.Period = cycle(m.absolutePeriods(), p.Period.Key)
	case key.Matches(km, keys.Value):
		u.Value = cycle(additiveValues(m.env.lib), p.Value.Key)
	case key.Matches(km, keys.Group):
		u.Group = cycle(m.env.lib.GroupKeys(), p.Group.Key)
	case key.Matches(km, keys.Averaging):
		u.Averaging = cycle(m.env.lib.AveragingKeys(), p.AveragingKey)
	case key.Matches(km, keys.Left):
		m.offset++
		m.buildCharts()
		return m, nil
	case key.Matches(km, keys.Right):
		if m.offset > 0 {
			m.offset--
		}
		m.buildCharts()
		return m, nil
	default:
		return m, nil
	}

	st, err := m.env.stats.SetTrend(u)
	if err != nil {
		return m, rejected(err)
	}
	m.offset = 0
	return m, saveView(m.env.db, stats.ViewTrend, map[string]string{
		"period":    st.Params.Period.Key,
		"value":     st.Params.Value.Key,
		"group":     st.Params.Group.Key,
		"averaging": st.Params.AveragingKey,
	})
}

func (m *trendModel) buildCharts() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 6
	if m.height > 30 {
		chartHeight = 8
	}
	m.chart = barchart.New(chartWidth, chartHeight)
	m.smoothed = barchart.New(chartWidth, chartHeight)

	d := m.state.Data
	if len(d.Bins) == 0 {
		return
	}
	from, to := window(len(d.Bins), chartWidth/3, m.offset)

	var raw, smooth []barchart.BarData
	for i := from; i < to; i++ {
		bin := d.Bins[i]
		var rv, sv []barchart.BarValue
		for _, g := range d.Groups {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(d.Color(g)))
			rv = append(rv, barchart.BarValue{Name: g, Value: bin.Values[g], Style: style})
			sv = append(sv, barchart.BarValue{Name: g, Value: bin.Smoothed[g], Style: style})
		}
		label := ""
		if i == from || i == to-1 {
			label = m.state.Params.Period.Format(bin.Date)
		}
		raw = append(raw, barchart.BarData{Label: label, Values: rv})
		smooth = append(smooth, barchart.BarData{Label: label, Values: sv})
	}

	m.chart.PushAll(raw)
	m.chart.Draw()
	m.smoothed.PushAll(smooth)
	m.smoothed.Draw()
}

func (m trendModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Trend")

	if !m.state.Loaded {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("  No activities loaded")))
	}
	if m.state.Err != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", errorStyle.Render("  "+m.state.Err.Error())))
	}

	p := m.state.Params
	params := mutedStyle.Render(fmt.Sprintf("%s · %s · %s · %s",
		p.Period.Label, p.Value.Label, p.Group.Label, p.AveragingKey))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", params)

	nav := mutedStyle.Render("  ←/→: page  p/v/g: period/value/group  a: averaging")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			mutedStyle.Render("  Totals"), m.chart.View(), "",
			mutedStyle.Render("  Smoothed"), m.smoothed.View(), "",
			m.renderMeans(w), "", nav,
		),
	)
}

func (m trendModel) renderMeans(w int) string {
	d := m.state.Data
	if len(d.Groups) == 0 {
		return mutedStyle.Render("  No data for this period")
	}
	format := m.state.Params.Value.Format
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %16s %16s", "Group", "Mean", "Latest")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))
	for _, g := range d.Groups {
		latest := 0.0
		if n := len(d.Bins); n > 0 {
			latest = d.Bins[n-1].Smoothed[g]
		}
		rows = append(rows, fmt.Sprintf("  %s %-18s %16s %16s",
			dot(lipgloss.Color(d.Color(g))), m.state.Params.Group.Format(g), format(d.Means[g]), format(latest)))
	}
	return strings.Join(rows, "\n")
}
