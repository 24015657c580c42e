package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/actistats/internal/stats"
	"github.com/sadopc/actistats/internal/store"
)

type settingsModel struct {
	env    *env
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	timelinePeriod *string
	timelineValue  *string
	timelineGroup  *string
	cumulative     *bool
	trendAveraging *string
	violinValue    *string
	violinScale    *string
	calendarValue  *string
	pieValue       *string
	geoValue       *string
}

func newSettingsModel(e *env) settingsModel {
	tp, tv, tg, ta := "", "", "", ""
	vv, vs, cv, pv, gv := "", "", "", "", ""
	cum := false
	return settingsModel{
		env:            e,
		timelinePeriod: &tp,
		timelineValue:  &tv,
		timelineGroup:  &tg,
		cumulative:     &cum,
		trendAveraging: &ta,
		violinValue:    &vv,
		violinScale:    &vs,
		calendarValue:  &cv,
		pieValue:       &pv,
		geoValue:       &gv,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	if s.env.db == nil {
		return nil
	}
	db := s.env.db
	return func() tea.Msg {
		settings, err := db.GetAllSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) valueOptions(ks []string) []huh.Option[string] {
	var opts []huh.Option[string]
	for _, k := range ks {
		if v, err := s.env.lib.Value(k); err == nil {
			opts = append(opts, huh.NewOption(v.Label, k))
		}
	}
	return opts
}

func keyOptions(ks []string) []huh.Option[string] {
	var opts []huh.Option[string]
	for _, k := range ks {
		opts = append(opts, huh.NewOption(k, k))
	}
	return opts
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	snap := s.env.stats.Snapshot()
	*s.timelinePeriod = snap.Timeline.Params.Period.Key
	*s.timelineValue = snap.Timeline.Params.Value.Key
	*s.timelineGroup = snap.Timeline.Params.Group.Key
	*s.cumulative = snap.Timeline.Params.Stat.Cumulative()
	*s.trendAveraging = snap.Trend.Params.AveragingKey
	*s.violinValue = snap.Violin.Params.Value.Key
	*s.violinScale = snap.Violin.Params.Scale.Key
	*s.calendarValue = snap.Calendar.Params.Value.Key
	*s.pieValue = snap.Pie.Params.Value.Key
	*s.geoValue = snap.Geo.Params.Value.Key

	additive := s.valueOptions(additiveValues(s.env.lib))
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Period").Options(keyOptions(s.env.lib.PeriodKeys())...).Value(s.timelinePeriod),
			huh.NewSelect[string]().Title("Value").Options(additive...).Value(s.timelineValue),
			huh.NewSelect[string]().Title("Group").Options(keyOptions(s.env.lib.GroupKeys())...).Value(s.timelineGroup),
			huh.NewConfirm().Title("Cumulative").Value(s.cumulative),
		).Title("Timeline"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Trend averaging").Options(keyOptions(s.env.lib.AveragingKeys())...).Value(s.trendAveraging),
			huh.NewSelect[string]().Title("Violin value").Options(s.valueOptions(s.env.lib.ValueKeys())...).Value(s.violinValue),
			huh.NewSelect[string]().Title("Violin scale").Options(keyOptions(s.env.lib.ScaleKeys())...).Value(s.violinScale),
		).Title("Distributions"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Calendar value").Options(additive...).Value(s.calendarValue),
			huh.NewSelect[string]().Title("Breakdown value").Options(additive...).Value(s.pieValue),
			huh.NewSelect[string]().Title("Map value").Options(additive...).Value(s.geoValue),
		).Title("Rollups"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.apply(); err != nil {
			return s, tea.Batch(rejected(err), s.refresh())
		}
		return s, tea.Batch(s.save(), s.refresh())
	}

	return s, cmd
}

// apply pushes the form values into every view.
func (s settingsModel) apply() error {
	st := s.env.stats
	var errs []error
	_, err := st.SetTimeline(stats.TimelineUpdate{
		Period: *s.timelinePeriod, Value: *s.timelineValue, Group: *s.timelineGroup, Cumulative: s.cumulative,
	})
	errs = append(errs, err)
	_, err = st.SetTrend(stats.TrendUpdate{Averaging: *s.trendAveraging})
	errs = append(errs, err)
	_, err = st.SetViolin(stats.ViolinUpdate{Value: *s.violinValue, Scale: *s.violinScale})
	errs = append(errs, err)
	_, err = st.SetCalendar(stats.CalendarUpdate{Value: *s.calendarValue})
	errs = append(errs, err)
	_, err = st.SetPie(stats.PieUpdate{Value: *s.pieValue})
	errs = append(errs, err)
	_, err = st.SetGeo(stats.GeoUpdate{Value: *s.geoValue})
	errs = append(errs, err)
	return errors.Join(errs...)
}

func (s settingsModel) save() tea.Cmd {
	return tea.Batch(
		saveView(s.env.db, stats.ViewTimeline, map[string]string{
			"period":     *s.timelinePeriod,
			"value":      *s.timelineValue,
			"group":      *s.timelineGroup,
			"cumulative": strconv.FormatBool(*s.cumulative),
		}),
		saveView(s.env.db, stats.ViewTrend, map[string]string{"averaging": *s.trendAveraging}),
		saveView(s.env.db, stats.ViewViolin, map[string]string{"value": *s.violinValue, "scale": *s.violinScale}),
		saveView(s.env.db, stats.ViewCalendar, map[string]string{"value": *s.calendarValue}),
		saveView(s.env.db, stats.ViewPie, map[string]string{"value": *s.pieValue}),
		saveView(s.env.db, stats.ViewGeo, map[string]string{"value": *s.geoValue}),
	)
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit view settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(setting.Value)
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
