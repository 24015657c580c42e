package stats

import (
	"math"
	"sort"
	"time"

	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/groupbin"
	"github.com/sadopc/actistats/internal/settings"
)

// CalendarParams configures the calendar heatmap.
type CalendarParams struct {
	Value settings.Value
}

// CalendarUpdate is a partial update of the calendar view.
type CalendarUpdate struct {
	Value string
}

// CalendarDay is the rollup of one day. Selected is set when any of IDs is
// in the external selection.
type CalendarDay struct {
	Day      string
	Value    float64
	Selected bool
	IDs      []int64
}

// CalendarData is the calendar view output. Days are in chronological
// order.
type CalendarData struct {
	Days     []CalendarDay
	ByDay    map[string][]activity.Activity
	Extent   groupbin.TimeRange
	MaxValue float64

	// OnClick replaces the external selection with the activities of day.
	OnClick func(day string)
}

func (p CalendarParams) apply(lib *settings.Library, u CalendarUpdate) (CalendarParams, error) {
	next := p
	if u.Value != "" {
		v, err := lib.Value(u.Value)
		if err != nil {
			return p, configErr(ViewCalendar, "value", err)
		}
		next.Value = v
	}
	if err := requireAdditive(ViewCalendar, next.Value); err != nil {
		return p, err
	}
	return next, nil
}

// ComputeCalendar sums acts per day. A day is selected when one of its own
// activities is in selected.
func ComputeCalendar(acts []activity.Activity, p CalendarParams, selected map[int64]bool) (CalendarData, []DataError, error) {
	var excluded []DataError
	dated := make([]activity.Activity, 0, len(acts))
	for _, a := range acts {
		if !a.HasDate() {
			excluded = append(excluded, DataError{ID: a.ID, Field: "start_date_local"})
			continue
		}
		dated = append(dated, a)
	}
	if len(dated) == 0 {
		return CalendarData{}, excluded, &ComputeError{View: ViewCalendar, Reason: "no dated activities"}
	}

	groups := groupbin.GroupBy(dated, activity.Activity.Day)
	data := CalendarData{
		Days:   make([]CalendarDay, 0, len(groups)),
		ByDay:  make(map[string][]activity.Activity, len(groups)),
		Extent: groupbin.TimeExtent(dated, func(a activity.Activity) time.Time { return a.Date }),
	}
	for _, g := range groups {
		day := CalendarDay{Day: g.Key, IDs: make([]int64, len(g.Items))}
		for i, a := range g.Items {
			day.IDs[i] = a.ID
			if selected[a.ID] {
				day.Selected = true
			}
			if v, ok := valueOf(p.Value, a, &excluded); ok {
				day.Value += v
			}
		}
		data.ByDay[g.Key] = g.Items
		data.Days = append(data.Days, day)
		data.MaxValue = math.Max(data.MaxValue, day.Value)
	}
	sort.Slice(data.Days, func(i, j int) bool { return data.Days[i].Day < data.Days[j].Day })
	if p.Value.HasMax() {
		data.MaxValue = p.Value.Max
	}
	return data, excluded, nil
}

// ColorScale returns the color function for palette, which is ordered as
// [below-min, scale colors..., selected]. Zero days get the first entry,
// selected days the last, and other days are quantized into the scale
// colors by Value/MaxValue.
func (d CalendarData) ColorScale(palette []string) (func(CalendarDay) string, error) {
	if len(palette) < 3 {
		return nil, &ConfigError{View: ViewCalendar, Field: "palette", Reason: "needs at least three colors"}
	}
	scale := palette[1 : len(palette)-1]
	max := d.MaxValue
	return func(day CalendarDay) string {
		switch {
		case day.Selected:
			return palette[len(palette)-1]
		case day.Value == 0:
			return palette[0]
		case max <= 0:
			return scale[len(scale)-1]
		}
		f := math.Max(0, math.Min(day.Value/max, 1))
		return scale[int(math.Floor(f*float64(len(scale)-1)))]
	}, nil
}
