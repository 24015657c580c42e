package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/actistats/internal/groupbin"
	"github.com/sadopc/actistats/internal/settings"
	"github.com/sadopc/actistats/internal/stats"
)

const maxCountries = 10

// breakdownModel shows the pie and geo rollups side by side with the
// scatter ranges.
type breakdownModel struct {
	env    *env
	width  int
	height int

	pie     stats.State[stats.PieParams, []stats.Slice]
	geo     stats.State[stats.GeoParams, stats.GeoData]
	scatter stats.State[stats.ScatterParams, stats.ScatterData]
	years   []int
}

func newBreakdownModel(e *env) breakdownModel {
	return breakdownModel{env: e}
}

func (m *breakdownModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *breakdownModel) setSnapshot(snap stats.Snapshot) {
	m.pie = snap.Pie
	m.geo = snap.Geo
	m.scatter = snap.Scatter
	m.years = nil
	if snap.Extent.Valid() {
		for y := snap.Extent.Start.Year(); y <= snap.Extent.End.Year(); y++ {
			m.years = append(m.years, y)
		}
	}
}

func (m breakdownModel) update(msg tea.Msg) (breakdownModel, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, keys.Value):
		return m.setPie(stats.PieUpdate{Value: cycle(additiveValues(m.env.lib), m.pie.Params.Value.Key)})
	case key.Matches(km, keys.Group):
		return m.setPie(stats.PieUpdate{Group: cycle(m.env.lib.GroupKeys(), m.pie.Params.Group.Key)})
	case key.Matches(km, keys.GeoValue):
		st, err := m.env.stats.SetGeo(stats.GeoUpdate{Value: cycle(additiveValues(m.env.lib), m.geo.Params.Value.Key)})
		if err != nil {
			return m, rejected(err)
		}
		return m, saveView(m.env.db, stats.ViewGeo, map[string]string{"value": st.Params.Value.Key})
	case key.Matches(km, keys.Year):
		tg := m.nextTimeGroup()
		if _, err := m.env.stats.SetPie(stats.PieUpdate{TimeGroup: &tg}); err != nil {
			return m, rejected(err)
		}
		if _, err := m.env.stats.SetGeo(stats.GeoUpdate{TimeGroup: &tg}); err != nil {
			return m, rejected(err)
		}
	}
	return m, nil
}

func (m breakdownModel) setPie(u stats.PieUpdate) (breakdownModel, tea.Cmd) {
	st, err := m.env.stats.SetPie(u)
	if err != nil {
		return m, rejected(err)
	}
	return m, saveView(m.env.db, stats.ViewPie, map[string]string{
		"value": st.Params.Value.Key,
		"group": st.Params.Group.Key,
	})
}

// nextTimeGroup steps from all years through each year and back.
func (m breakdownModel) nextTimeGroup() settings.TimeGroup {
	year, split := m.pie.Params.TimeGroup.Highlight()
	switch {
	case len(m.years) == 0:
		return settings.AllYears()
	case !split:
		return settings.ByYear(m.years[0])
	case year >= m.years[len(m.years)-1]:
		return settings.AllYears()
	default:
		return settings.ByYear(year + 1)
	}
}

func (m breakdownModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Breakdown")

	if !m.pie.Loaded {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("  No activities loaded")))
	}

	params := mutedStyle.Render(fmt.Sprintf("%s by %s · %s",
		m.pie.Params.Value.Label, m.pie.Params.Group.Label, m.pie.Params.TimeGroup))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", params)

	half := max((w-8)/2, 30)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(m.renderPie(half)),
		lipgloss.NewStyle().Width(half).Render(m.renderGeo(half)),
	)

	nav := mutedStyle.Render("  v/g: value/group  m: map value  y: year")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", m.renderScatter(), "", nav),
	)
}

func (m breakdownModel) renderPie(w int) string {
	if len(m.pie.Data) == 0 {
		return mutedStyle.Render("  No data for this period")
	}
	total := 0.0
	for _, s := range m.pie.Data {
		total += s.Value
	}
	barWidth := max(w-36, 8)

	var rows []string
	for _, s := range m.pie.Data {
		share := 0.0
		if total > 0 {
			share = s.Value / total
		}
		n := int(math.Round(share * float64(barWidth)))
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", n)) +
			mutedStyle.Render(strings.Repeat("░", barWidth-n))
		rows = append(rows, fmt.Sprintf("  %-10s %s %5.1f%% %s",
			s.Label, bar, share*100, m.pie.Params.Value.Format(s.Value)))
	}
	return strings.Join(rows, "\n")
}

func (m breakdownModel) renderGeo(w int) string {
	countries := append([]stats.CountryValue(nil), m.geo.Data.Countries...)
	if len(countries) == 0 {
		return mutedStyle.Render("  No activities")
	}
	sort.SliceStable(countries, func(i, j int) bool { return countries[i].Value > countries[j].Value })

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-8s %16s", "Country", m.geo.Params.Value.Label)))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-4, 26))))
	for i, c := range countries {
		if i == maxCountries {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %s more", humanize.Comma(int64(len(countries)-maxCountries)))))
			break
		}
		v := highlightStyle.Render(fmt.Sprintf("%16s", m.geo.Params.Value.Format(c.Value)))
		id := c.ID
		if id == stats.UnknownCountry {
			id = "unknown"
		}
		rows = append(rows, fmt.Sprintf("  %-8s %s", id, v))
	}
	return strings.Join(rows, "\n")
}

func (m breakdownModel) renderScatter() string {
	p, d := m.scatter.Params, m.scatter.Data
	return mutedStyle.Render(fmt.Sprintf("  Ranges  %s %s  %s %s  %s %s",
		p.X.Label, formatExtent(p.X, d.X),
		p.Y.Label, formatExtent(p.Y, d.Y),
		p.Size.Label, formatExtent(p.Size, d.Size)))
}

func formatExtent(v settings.Value, e groupbin.Extent) string {
	if !e.Valid() {
		return "-"
	}
	format := v.FormatAxis
	if format == nil {
		format = v.Format
	}
	return fmt.Sprintf("[%s, %s]", format(e.Min), format(e.Max))
}
