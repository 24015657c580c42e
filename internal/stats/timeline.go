package stats

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/groupbin"
	"github.com/sadopc/actistats/internal/settings"
)

// TimelineParams configures the timeline view.
type TimelineParams struct {
	Period    settings.Period
	Value     settings.Value
	Group     settings.Group
	TimeGroup settings.TimeGroup
	Stat      settings.Stat
}

// TimelineUpdate is a partial update. Empty keys and nil pointers keep the
// current setting.
type TimelineUpdate struct {
	Period     string
	Value      string
	Group      string
	TimeGroup  *settings.TimeGroup
	Cumulative *bool
}

// Point is one zero-filled period of a series.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is the timeline of one (group, year) pair.
type Series struct {
	ID     string
	Group  string
	Year   int
	Label  string
	Color  string
	Icon   string
	Alpha  float64
	Points []Point

	XLabel func(time.Time) string
	YLabel func(float64) string
	// OnClick highlights the series' year. Nil when years are not split.
	OnClick func()
}

func (p TimelineParams) apply(lib *settings.Library, u TimelineUpdate) (TimelineParams, error) {
	next := p
	if u.Period != "" {
		period, err := lib.Period(u.Period)
		if err != nil {
			return p, configErr(ViewTimeline, "period", err)
		}
		next.Period = period
	}
	if u.Value != "" {
		v, err := lib.Value(u.Value)
		if err != nil {
			return p, configErr(ViewTimeline, "value", err)
		}
		next.Value = v
	}
	if u.Group != "" {
		g, err := lib.Group(u.Group)
		if err != nil {
			return p, configErr(ViewTimeline, "group", err)
		}
		next.Group = g
	}
	if u.Cumulative != nil {
		next.Stat = settings.StatFor(*u.Cumulative)
	}
	switch {
	case u.TimeGroup != nil:
		next.TimeGroup = *u.TimeGroup
	case u.Period != "" && !next.Period.Relative && next.TimeGroup.SplitsYears():
		next.TimeGroup = settings.AllYears()
	}
	if err := requireAdditive(ViewTimeline, next.Value); err != nil {
		return p, err
	}
	return next, nil
}

type seriesKey struct {
	group string
	year  int
}

// ComputeTimeline buckets acts into one zero-filled series per (group, year).
// extent is the date extent of the whole filtered set.
func ComputeTimeline(acts []activity.Activity, extent groupbin.TimeRange, p TimelineParams) ([]Series, []DataError, error) {
	if !extent.Valid() {
		return nil, nil, &ComputeError{View: ViewTimeline, Reason: "no dated activities"}
	}
	var excluded []DataError
	usable := make([]activity.Activity, 0, len(acts))
	for _, a := range acts {
		if !a.HasDate() {
			excluded = append(excluded, DataError{ID: a.ID, Field: "start_date_local"})
			continue
		}
		if _, ok := valueOf(p.Value, a, &excluded); ok {
			usable = append(usable, a)
		}
	}

	groups := groupbin.GroupBy(usable, func(a activity.Activity) seriesKey {
		return seriesKey{group: p.Group.Fn(a), year: p.TimeGroup.Year(a)}
	})
	highlight, split := p.TimeGroup.Highlight()
	out := make([]Series, 0, len(groups))
	for _, g := range groups {
		sums := make(map[int64]float64)
		for _, a := range g.Items {
			sums[p.Period.Bucket(a.Date).Unix()] += p.Value.Fn(a)
		}
		fill := extent
		switch {
		case split:
			fill = settings.YearRange(extent, g.Key.year)
		case p.Period.Relative:
			fill = settings.YearRange(groupbin.TimeRange{}, settings.RefYear)
		}
		keys := p.Period.Range(fill)
		points := make([]Point, len(keys))
		var run float64
		for i, k := range keys {
			v := sums[k.Unix()]
			if p.Stat.Cumulative() {
				run += v
				v = run
			}
			points[i] = Point{Date: k, Value: v}
		}
		out = append(out, newSeries(g.Key, points, p, split, highlight))
	}
	return out, excluded, nil
}

func newSeries(k seriesKey, points []Point, p TimelineParams, split bool, highlight int) Series {
	s := Series{
		ID:     k.group,
		Group:  k.group,
		Year:   k.year,
		Label:  p.Group.Format(k.group),
		Color:  p.Group.Color(k.group),
		Icon:   p.Group.Icon(k.group),
		Alpha:  1,
		Points: points,
	}
	period, value := p.Period, p.Value
	s.XLabel = period.Format
	if split {
		s.ID = fmt.Sprintf("%s/%d", k.group, k.year)
		s.Label += " " + strconv.Itoa(k.year)
		if period.Relative {
			year := strconv.Itoa(k.year)
			s.XLabel = func(t time.Time) string { return year + "-" + period.Format(t) }
		}
		if k.year != highlight {
			s.Alpha = 0.1
		}
	}
	suffix := ""
	if p.Stat.Cumulative() {
		suffix = " (cumulative)"
	}
	s.YLabel = func(v float64) string { return value.Format(v) + suffix }
	return s
}
