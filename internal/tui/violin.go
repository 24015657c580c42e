package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/declutter"
	"github.com/sadopc/actistats/internal/stats"
)

const maxPoints = 8

type violinModel struct {
	env    *env
	width  int
	height int

	state  stats.State[stats.ViolinParams, stats.ViolinData]
	cursor int

	chart barchart.Model
}

func newViolinModel(e *env) violinModel {
	return violinModel{
		env:   e,
		chart: barchart.New(60, 10),
	}
}

func (m *violinModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.buildChart()
}

func (m *violinModel) setSnapshot(snap stats.Snapshot) {
	m.state = snap.Violin
	if m.cursor >= len(m.state.Data.Violins) {
		m.cursor = 0
	}
	m.buildChart()
}

func (m violinModel) current() (stats.Violin, bool) {
	if m.cursor < len(m.state.Data.Violins) {
		return m.state.Data.Violins[m.cursor], true
	}
	return stats.Violin{}, false
}

func (m violinModel) update(msg tea.Msg) (violinModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	p := m.state.Params
	var u stats.ViolinUpdate
	switch {
	case key.Matches(km, keys.Value):
		u.Value = cycle(m.env.lib.ValueKeys(), p.Value.Key)
	case key.Matches(km, keys.Group):
		u.Group = cycle(m.env.lib.GroupKeys(), p.Group.Key)
	case key.Matches(km, keys.Scale):
		u.Scale = cycle(m.env.lib.ScaleKeys(), p.Scale.Key)
	case key.Matches(km, keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
		m.buildChart()
		return m, nil
	case key.Matches(km, keys.Right):
		if m.cursor < len(m.state.Data.Violins)-1 {
			m.cursor++
		}
		m.buildChart()
		return m, nil
	default:
		return m, nil
	}

	st, err := m.env.stats.SetViolin(u)
	if err != nil {
		return m, rejected(err)
	}
	m.cursor = 0
	return m, saveView(m.env.db, stats.ViewViolin, map[string]string{
		"value": st.Params.Value.Key,
		"group": st.Params.Group.Key,
		"scale": st.Params.Scale.Key,
	})
}

// buildChart draws the histogram of the current group.
func (m *violinModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}
	m.chart = barchart.New(chartWidth, chartHeight)

	v, ok := m.current()
	if !ok || v.Sparse() {
		return
	}
	format := m.state.Params.Value.FormatAxis
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(v.Color))
	var bars []barchart.BarData
	for i, b := range v.Bins {
		label := ""
		if i == 0 || i == len(v.Bins)-1 || i == len(v.Bins)/2 {
			label = format(b.Lower)
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: v.Label, Value: float64(b.Count), Style: style}},
		})
	}
	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m violinModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Violin")

	if !m.state.Loaded {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("  No activities loaded")))
	}
	if m.state.Err != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", errorStyle.Render("  "+m.state.Err.Error())))
	}

	p := m.state.Params
	params := mutedStyle.Render(fmt.Sprintf("%s · %s · %s · range %s",
		p.Value.Label, p.Group.Label, p.Scale.Label, formatExtent(p.Value, m.state.Data.Domain)))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", params)

	nav := mutedStyle.Render("  ←/→: group  v/g: value/group  s: scale")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", m.renderGroups(), "", m.renderCurrent(), "", nav,
		),
	)
}

func (m violinModel) renderGroups() string {
	var items []string
	for i, v := range m.state.Data.Violins {
		label := v.Label
		if v.Sparse() {
			label += "*"
		}
		if i == m.cursor {
			items = append(items, selectedItemStyle.Render("> "+label))
		} else {
			items = append(items, normalItemStyle.Render("  "+label))
		}
	}
	return strings.Join(items, " ")
}

func (m violinModel) renderCurrent() string {
	v, ok := m.current()
	if !ok {
		return mutedStyle.Render("  No groups")
	}
	format := m.state.Params.Value.Format
	if v.Sparse() {
		return lipgloss.JoinVertical(lipgloss.Left,
			warningStyle.Render(fmt.Sprintf("  Too few activities for a distribution (%d points)", len(v.Points))),
			"", m.renderPoints("Points", v.Points))
	}
	q := v.Stats
	summary := fmt.Sprintf("  n=%d  min %s  q1 %s  median %s  q3 %s  max %s",
		q.Count, format(q.Min), format(q.FirstQuartile), format(q.Median), format(q.ThirdQuartile), format(q.Max))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.chart.View(), "", highlightStyle.Render(summary), "", m.renderPoints("Outliers", v.Points))
}

// renderPoints lists the points of a group from the top of the axis down.
func (m violinModel) renderPoints(title string, points []declutter.Node[activity.Activity]) string {
	if len(points) == 0 {
		return mutedStyle.Render("  No " + strings.ToLower(title))
	}
	sorted := append([]declutter.Node[activity.Activity](nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	value := m.state.Params.Value
	rows := []string{mutedStyle.Render(fmt.Sprintf("  %s (%d)", title, len(points)))}
	for i, n := range sorted {
		if i == maxPoints {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("    … %d more", len(sorted)-maxPoints)))
			break
		}
		rows = append(rows, fmt.Sprintf("    %s %-30s %s",
			accentStyle.Render("●"), n.Data.Name, value.Format(value.Fn(n.Data))))
	}
	return strings.Join(rows, "\n")
}
