package stats

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/groupbin"
	"github.com/sadopc/actistats/internal/settings"
)

// Selection is the external set of highlighted activities.
type Selection interface {
	Selected() []int64
	SetSelected(ids []int64)
}

type noSelection struct{}

func (noSelection) Selected() []int64   { return nil }
func (noSelection) SetSelected([]int64) {}

// Snapshot is every view state at one point in time.
type Snapshot struct {
	Loaded   bool
	Records  int
	Extent   groupbin.TimeRange
	Timeline State[TimelineParams, []Series]
	Trend    State[TrendParams, TrendData]
	Violin   State[ViolinParams, ViolinData]
	Calendar State[CalendarParams, CalendarData]
	Pie      State[PieParams, []Slice]
	Geo      State[GeoParams, GeoData]
	Scatter  State[ScatterParams, ScatterData]
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Store holds the raw and filtered activities and one state per view. Each
// setter recomputes its view synchronously and replaces the stored state.
// A change of activities or filter recomputes every view.
//
// Store is not safe for concurrent use.
type Store struct {
	lib *settings.Library
	sel Selection
	log logrus.FieldLogger

	loaded   bool
	raw      []activity.Activity
	allow    map[int64]struct{}
	filtered []activity.Activity
	extent   groupbin.TimeRange

	snap Snapshot

	subs    []subscriber
	nextSub int
}

// NewStore returns a store with the default parameters of every view. sel
// may be nil.
func NewStore(lib *settings.Library, sel Selection, log logrus.FieldLogger) (*Store, error) {
	if sel == nil {
		sel = noSelection{}
	}
	s := &Store{lib: lib, sel: sel, log: log}
	if err := s.defaults(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) defaults() error {
	period, err := s.lib.Period("week")
	if err != nil {
		return err
	}
	value := func(key string) settings.Value {
		v, e := s.lib.Value(key)
		if e != nil && err == nil {
			err = e
		}
		return v
	}
	group, gerr := s.lib.Group("sport_group")
	if gerr != nil {
		return gerr
	}
	scale, serr := s.lib.Scale("linear")
	if serr != nil {
		return serr
	}
	avg, aerr := s.lib.Averaging("movingAvg7")
	if aerr != nil {
		return aerr
	}
	distance := value("distance")

	s.snap.Timeline.Params = TimelineParams{
		Period: period, Value: value("time"), Group: group,
		TimeGroup: settings.AllYears(), Stat: settings.StatCumulativeSum,
	}
	s.snap.Trend.Params = TrendParams{
		Period: period, Value: value("time"), Group: group,
		AveragingKey: "movingAvg7", Averaging: avg,
	}
	s.snap.Violin.Params = ViolinParams{
		Value: distance, MinValue: distance.Min, MaxValue: distance.Max,
		Group: group, Scale: scale,
		Layout:           Layout{Width: 600, Height: 400},
		OutlierThreshold: DefaultOutlierThreshold,
	}
	s.snap.Calendar.Params = CalendarParams{Value: value("time")}
	s.snap.Pie.Params = PieParams{Value: value("time"), Group: group, TimeGroup: settings.AllYears()}
	s.snap.Geo.Params = GeoParams{Value: value("count"), TimeGroup: settings.AllYears()}
	s.snap.Scatter.Params = ScatterParams{
		X: value("date"), Y: value("elevation"), Size: distance, Group: group,
	}
	return err
}

// SetActivities replaces the raw activity set and recomputes every view.
func (s *Store) SetActivities(acts []activity.Activity) Snapshot {
	s.raw = append([]activity.Activity(nil), acts...)
	s.loaded = true
	return s.refilter()
}

// SetFilter restricts the views to the activities whose ids are in ids.
func (s *Store) SetFilter(ids []int64) Snapshot {
	s.allow = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		s.allow[id] = struct{}{}
	}
	return s.refilter()
}

// ClearFilter removes the allow-list.
func (s *Store) ClearFilter() Snapshot {
	s.allow = nil
	return s.refilter()
}

// SelectionChanged recomputes the views that depend on the selection.
func (s *Store) SelectionChanged() Snapshot {
	s.snap.Calendar = s.calendar(s.snap.Calendar.Params)
	s.publish()
	return s.snap
}

// Snapshot returns the current states.
func (s *Store) Snapshot() Snapshot { return s.snap }

// Filtered returns a copy of the filtered activity set.
func (s *Store) Filtered() []activity.Activity {
	return append([]activity.Activity(nil), s.filtered...)
}

// Subscribe calls fn with every snapshot produced after a recompute. The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) refilter() Snapshot {
	if s.allow == nil {
		s.filtered = s.raw
	} else {
		s.filtered = make([]activity.Activity, 0, len(s.allow))
		for _, a := range s.raw {
			if _, ok := s.allow[a.ID]; ok {
				s.filtered = append(s.filtered, a)
			}
		}
	}
	s.extent = groupbin.TimeExtent(s.filtered, func(a activity.Activity) time.Time { return a.Date })

	s.snap.Loaded = s.loaded
	s.snap.Records = len(s.filtered)
	s.snap.Extent = s.extent
	s.snap.Timeline = s.timeline(s.snap.Timeline.Params)
	s.snap.Trend = s.trend(s.snap.Trend.Params)
	s.snap.Violin = s.violin(s.snap.Violin.Params)
	s.snap.Calendar = s.calendar(s.snap.Calendar.Params)
	s.snap.Pie = s.pie(s.snap.Pie.Params)
	s.snap.Geo = s.geo(s.snap.Geo.Params)
	s.snap.Scatter = s.scatter(s.snap.Scatter.Params)
	s.publish()
	return s.snap
}

func (s *Store) publish() {
	for _, sub := range append([]subscriber(nil), s.subs...) {
		sub.fn(s.snap)
	}
}

func (s *Store) reject(view string, err error) {
	s.log.WithFields(logrus.Fields{"view": view}).WithError(err).Warn("rejected view update")
}

func (s *Store) computed(view string, start time.Time, excluded []DataError, err error) {
	for _, e := range excluded {
		s.log.WithFields(logrus.Fields{"view": view, "id": e.ID, "field": e.Field}).Debug("excluded activity")
	}
	l := s.log.WithFields(logrus.Fields{
		"view":     view,
		"records":  len(s.filtered),
		"excluded": len(excluded),
		"duration": time.Since(start),
	})
	if err != nil {
		l = l.WithError(err)
	}
	l.Debug("recomputed view")
}

// SetTimeline applies u to the timeline view.
func (s *Store) SetTimeline(u TimelineUpdate) (State[TimelineParams, []Series], error) {
	p, err := s.snap.Timeline.Params.apply(s.lib, u)
	if err != nil {
		s.reject(ViewTimeline, err)
		return s.snap.Timeline, err
	}
	s.snap.Timeline = s.timeline(p)
	s.publish()
	return s.snap.Timeline, nil
}

func (s *Store) timeline(p TimelineParams) State[TimelineParams, []Series] {
	if !s.loaded {
		return State[TimelineParams, []Series]{Params: p}
	}
	start := time.Now()
	series, excluded, err := ComputeTimeline(s.filtered, s.extent, p)
	if p.TimeGroup.SplitsYears() {
		for i := range series {
			tg := settings.ByYear(series[i].Year)
			series[i].OnClick = func() { _, _ = s.SetTimeline(TimelineUpdate{TimeGroup: &tg}) }
		}
	}
	s.computed(ViewTimeline, start, excluded, err)
	return State[TimelineParams, []Series]{Loaded: true, Params: p, Data: series, Err: err}
}

// SetTrend applies u to the trend view.
func (s *Store) SetTrend(u TrendUpdate) (State[TrendParams, TrendData], error) {
	p, err := s.snap.Trend.Params.apply(s.lib, u)
	if err != nil {
		s.reject(ViewTrend, err)
		return s.snap.Trend, err
	}
	s.snap.Trend = s.trend(p)
	s.publish()
	return s.snap.Trend, nil
}

func (s *Store) trend(p TrendParams) State[TrendParams, TrendData] {
	if !s.loaded {
		return State[TrendParams, TrendData]{Params: p}
	}
	start := time.Now()
	data, excluded, err := ComputeTrend(s.filtered, s.extent, p)
	s.computed(ViewTrend, start, excluded, err)
	return State[TrendParams, TrendData]{Loaded: true, Params: p, Data: data, Err: err}
}

// SetViolin applies u to the violin view.
func (s *Store) SetViolin(u ViolinUpdate) (State[ViolinParams, ViolinData], error) {
	p, err := s.snap.Violin.Params.apply(s.lib, u)
	if err != nil {
		s.reject(ViewViolin, err)
		return s.snap.Violin, err
	}
	s.snap.Violin = s.violin(p)
	s.publish()
	return s.snap.Violin, nil
}

func (s *Store) violin(p ViolinParams) State[ViolinParams, ViolinData] {
	if !s.loaded {
		return State[ViolinParams, ViolinData]{Params: p}
	}
	start := time.Now()
	data, excluded, err := ComputeViolin(s.filtered, p)
	s.computed(ViewViolin, start, excluded, err)
	return State[ViolinParams, ViolinData]{Loaded: true, Params: p, Data: data, Err: err}
}

// SetCalendar applies u to the calendar view.
func (s *Store) SetCalendar(u CalendarUpdate) (State[CalendarParams, CalendarData], error) {
	p, err := s.snap.Calendar.Params.apply(s.lib, u)
	if err != nil {
		s.reject(ViewCalendar, err)
		return s.snap.Calendar, err
	}
	s.snap.Calendar = s.calendar(p)
	s.publish()
	return s.snap.Calendar, nil
}

func (s *Store) calendar(p CalendarParams) State[CalendarParams, CalendarData] {
	if !s.loaded {
		return State[CalendarParams, CalendarData]{Params: p}
	}
	start := time.Now()
	selected := make(map[int64]bool)
	for _, id := range s.sel.Selected() {
		selected[id] = true
	}
	data, excluded, err := ComputeCalendar(s.filtered, p, selected)
	if err == nil {
		byDay := data.ByDay
		data.OnClick = func(day string) {
			var ids []int64
			for _, a := range byDay[day] {
				ids = append(ids, a.ID)
			}
			if ids == nil {
				ids = []int64{}
			}
			s.sel.SetSelected(ids)
			s.SelectionChanged()
		}
	}
	s.computed(ViewCalendar, start, excluded, err)
	return State[CalendarParams, CalendarData]{Loaded: true, Params: p, Data: data, Err: err}
}

// SetPie applies u to the pie view.
func (s *Store) SetPie(u PieUpdate) (State[PieParams, []Slice], error) {
	p, err := s.snap.Pie.Params.apply(s.lib, u)
	if err != nil {
		s.reject(ViewPie, err)
		return s.snap.Pie, err
	}
	s.snap.Pie = s.pie(p)
	s.publish()
	return s.snap.Pie, nil
}

func (s *Store) pie(p PieParams) State[PieParams, []Slice] {
	if !s.loaded {
		return State[PieParams, []Slice]{Params: p}
	}
	start := time.Now()
	data, excluded := ComputePie(s.filtered, p)
	s.computed(ViewPie, start, excluded, nil)
	return State[PieParams, []Slice]{Loaded: true, Params: p, Data: data}
}

// SetGeo applies u to the geo view.
func (s *Store) SetGeo(u GeoUpdate) (State[GeoParams, GeoData], error) {
	p, err := s.snap.Geo.Params.apply(s.lib, u)
	if err != nil {
		s.reject(ViewGeo, err)
		return s.snap.Geo, err
	}
	s.snap.Geo = s.geo(p)
	s.publish()
	return s.snap.Geo, nil
}

func (s *Store) geo(p GeoParams) State[GeoParams, GeoData] {
	if !s.loaded {
		return State[GeoParams, GeoData]{Params: p}
	}
	start := time.Now()
	data, excluded := ComputeGeo(s.filtered, p)
	s.computed(ViewGeo, start, excluded, nil)
	return State[GeoParams, GeoData]{Loaded: true, Params: p, Data: data}
}

// SetScatter merges u into the scatter parameters.
func (s *Store) SetScatter(u ScatterUpdate) (State[ScatterParams, ScatterData], error) {
	p, err := s.snap.Scatter.Params.apply(s.lib, u)
	if err != nil {
		s.reject(ViewScatter, err)
		return s.snap.Scatter, err
	}
	s.snap.Scatter = s.scatter(p)
	s.publish()
	return s.snap.Scatter, nil
}

func (s *Store) scatter(p ScatterParams) State[ScatterParams, ScatterData] {
	if !s.loaded {
		nan := math.NaN()
		empty := groupbin.Extent{Min: nan, Max: nan}
		return State[ScatterParams, ScatterData]{Params: p, Data: ScatterData{X: empty, Y: empty, Size: empty}}
	}
	start := time.Now()
	data := ComputeScatter(s.filtered, p)
	s.computed(ViewScatter, start, nil, nil)
	return State[ScatterParams, ScatterData]{Loaded: true, Params: p, Data: data}
}
