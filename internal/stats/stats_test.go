package stats

import (
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/groupbin"
	"github.com/sadopc/actistats/internal/settings"
)

type fakeSelection struct{ ids []int64 }

func (f *fakeSelection) Selected() []int64      { return f.ids }
func (f *fakeSelection) SetSelected(ids []int64) { f.ids = ids }

func newTestStore(t *testing.T, sel Selection) *Store {
	t.Helper()
	log := logrus.New()
	log.Out = io.Discard
	s, err := NewStore(settings.Default(time.Sunday), sel, log)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// act builds an activity with every metric missing except those set by opts.
func act(id int64, sport, day string, opts ...func(*activity.Activity)) activity.Activity {
	nan := math.NaN()
	a := activity.Activity{
		ID: id, SportType: sport,
		Distance: nan, ElevationGain: nan, ElapsedTime: nan, AverageSpeed: nan,
	}
	if day != "" {
		a.Date = date(day)
	}
	for _, o := range opts {
		o(&a)
	}
	return a
}

func elevation(m float64) func(*activity.Activity) {
	return func(a *activity.Activity) { a.ElevationGain = m }
}

func km(d float64) func(*activity.Activity) {
	return func(a *activity.Activity) { a.Distance = d * 1000 }
}

func hours(h float64) func(*activity.Activity) {
	return func(a *activity.Activity) { a.ElapsedTime = h * 3600 }
}

func country(c string) func(*activity.Activity) {
	return func(a *activity.Activity) { a.Country = c }
}

func ptr[T any](v T) *T { return &v }

func values(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

var ignoreFuncs = cmpopts.IgnoreFields(Series{}, "XLabel", "YLabel", "OnClick")

// ============================================================
// Timeline
// ============================================================

func TestTimelineWeeklySum(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities([]activity.Activity{
		act(1, "Run", "2023-01-01", elevation(10)),
		act(2, "Run", "2023-01-08", elevation(20)),
		act(3, "Run", "2023-01-15", elevation(30)),
	})
	st, err := s.SetTimeline(TimelineUpdate{Value: "elevation", Period: "week", Cumulative: ptr(false)})
	if err != nil {
		t.Fatalf("set timeline: %v", err)
	}
	if !st.Loaded || st.Err != nil {
		t.Fatalf("expected loaded state, got loaded=%v err=%v", st.Loaded, st.Err)
	}
	if len(st.Data) != 1 || st.Data[0].Group != "run" {
		t.Fatalf("expected one run series, got %+v", st.Data)
	}
	if diff := cmp.Diff([]float64{10, 20, 30}, values(st.Data[0].Points)); diff != "" {
		t.Fatalf("weekly values (-want +got):\n%s", diff)
	}
	if st.Data[0].Alpha != 1 || st.Data[0].OnClick != nil {
		t.Fatalf("series without year split should have alpha 1 and no click, got %+v", st.Data[0])
	}
}

func TestTimelineZeroFill(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities([]activity.Activity{
		act(1, "Ride", "2023-01-02", elevation(5)),
		act(2, "Run", "2023-01-10", elevation(20)),
		act(3, "Ride", "2023-01-20", elevation(7)),
	})
	st, err := s.SetTimeline(TimelineUpdate{Value: "elevation", Period: "week", Cumulative: ptr(false)})
	if err != nil {
		t.Fatalf("set timeline: %v", err)
	}
	got := map[string][]float64{}
	for _, series := range st.Data {
		got[series.Group] = values(series.Points)
	}
	want := map[string][]float64{
		"ride": {5, 0, 7},
		"run":  {0, 20, 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("zero-filled series (-want +got):\n%s", diff)
	}
}

func TestTimelineCumulative(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities([]activity.Activity{
		act(1, "Run", "2023-01-01", elevation(10)),
		act(2, "Run", "2023-01-29", elevation(5)),
		act(3, "Run", "2023-03-01", elevation(30)),
	})
	st, err := s.SetTimeline(TimelineUpdate{Value: "elevation", Cumulative: ptr(true)})
	if err != nil {
		t.Fatalf("set timeline: %v", err)
	}
	pts := st.Data[0].Points
	for i := 1; i < len(pts); i++ {
		if pts[i].Value < pts[i-1].Value {
			t.Fatalf("cumulative series decreases at %d: %v", i, values(pts))
		}
	}
	if last := pts[len(pts)-1].Value; last != 45 {
		t.Fatalf("final cumulative value = %v, want 45", last)
	}
	if !st.Params.Stat.Cumulative() {
		t.Fatal("expected cumulative stat")
	}
}

func TestTimelineHighlightYear(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities([]activity.Activity{
		act(1, "Run", "2022-12-25", elevation(10)),
		act(2, "Run", "2023-01-01", elevation(20)),
		act(3, "Run", "2023-01-15", elevation(30)),
	})
	tg := settings.ByYear(2023)
	st, err := s.SetTimeline(TimelineUpdate{Value: "elevation", Period: "week", TimeGroup: &tg, Cumulative: ptr(false)})
	if err != nil {
		t.Fatalf("set timeline: %v", err)
	}
	if len(st.Data) != 2 {
		t.Fatalf("expected a series per year, got %d", len(st.Data))
	}
	byYear := map[int]Series{}
	for _, series := range st.Data {
		byYear[series.Year] = series
	}
	if a := byYear[2022].Alpha; a != 0.1 {
		t.Fatalf("2022 alpha = %v, want 0.1", a)
	}
	if a := byYear[2023].Alpha; a != 1 {
		t.Fatalf("2023 alpha = %v, want 1", a)
	}
	if diff := cmp.Diff([]float64{10}, values(byYear[2022].Points)); diff != "" {
		t.Fatalf("2022 points (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{20, 0, 30}, values(byYear[2023].Points)); diff != "" {
		t.Fatalf("2023 points (-want +got):\n%s", diff)
	}
	if got := byYear[2023].XLabel(date("2023-01-08")); got != "2023-01-08" {
		t.Fatalf("XLabel = %q", got)
	}

	byYear[2022].OnClick()
	if y, ok := s.Snapshot().Timeline.Params.TimeGroup.Highlight(); !ok || y != 2022 {
		t.Fatalf("click should highlight 2022, got %d %v", y, ok)
	}

	st, err = s.SetTimeline(TimelineUpdate{Period: "month"})
	if err != nil {
		t.Fatalf("set timeline: %v", err)
	}
	if st.Params.TimeGroup.SplitsYears() {
		t.Fatal("switching to an absolute period should reset the time group")
	}
}

func TestTimelineRelativePeriod(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities([]activity.Activity{
		act(1, "Run", "2022-03-10", elevation(10)),
		act(2, "Run", "2023-03-12", elevation(20)),
	})
	st, err := s.SetTimeline(TimelineUpdate{Value: "elevation", Period: "week_of_year", Cumulative: ptr(false)})
	if err != nil {
		t.Fatalf("set timeline: %v", err)
	}
	pts := st.Data[0].Points
	if len(pts) != 53 {
		t.Fatalf("expected 53 relative weeks, got %d", len(pts))
	}
	var total float64
	for _, p := range pts {
		if p.Date.Year() != settings.RefYear {
			t.Fatalf("relative key %v outside reference year", p.Date)
		}
		total += p.Value
	}
	if total != 30 {
		t.Fatalf("relative total = %v, want 30", total)
	}
}

func TestTimelineRejectsBadUpdate(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities([]activity.Activity{act(1, "Run", "2023-01-01", elevation(10))})
	before := s.Snapshot().Timeline

	for _, u := range []TimelineUpdate{
		{Value: "nope"},
		{Period: "fortnight"},
		{Value: "date"},
	} {
		st, err := s.SetTimeline(u)
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("update %+v: expected ConfigError, got %v", u, err)
		}
		if ce.View != ViewTimeline {
			t.Fatalf("ConfigError view = %q", ce.View)
		}
		if diff := cmp.Diff(before.Data, st.Data, ignoreFuncs); diff != "" {
			t.Fatalf("rejected update changed data (-want +got):\n%s", diff)
		}
		if st.Params.Value.Key != before.Params.Value.Key || st.Params.Period.Key != before.Params.Period.Key {
			t.Fatal("rejected update changed params")
		}
	}
}

func TestEmptyUpdateIsIdempotent(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities([]activity.Activity{
		act(1, "Run", "2023-01-01", elevation(10), km(5), hours(1), country("FR")),
		act(2, "Ride", "2023-02-11", elevation(200), km(40), hours(2), country("DE")),
	})
	before := s.Snapshot()

	tl, _ := s.SetTimeline(TimelineUpdate{})
	if diff := cmp.Diff(before.Timeline.Data, tl.Data, ignoreFuncs); diff != "" {
		t.Fatalf("timeline changed (-want +got):\n%s", diff)
	}
	pie, _ := s.SetPie(PieUpdate{})
	if diff := cmp.Diff(before.Pie.Data, pie.Data); diff != "" {
		t.Fatalf("pie changed (-want +got):\n%s", diff)
	}
	geo, _ := s.SetGeo(GeoUpdate{})
	if diff := cmp.Diff(before.Geo.Data, geo.Data); diff != "" {
		t.Fatalf("geo changed (-want +got):\n%s", diff)
	}
	tr, _ := s.SetTrend(TrendUpdate{})
	if diff := cmp.Diff(before.Trend.Data, tr.Data, cmpopts.IgnoreFields(TrendData{}, "Color")); diff != "" {
		t.Fatalf("trend changed (-want +got):\n%s", diff)
	}
}

// ============================================================
// Trend
// ============================================================

func TestTrend(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities([]activity.Activity{
		act(1, "Run", "2023-01-01", hours(1)),
		act(2, "Ride", "2023-01-16", hours(2)),
		act(3, "Run", "2023-01-22", hours(3)),
	})
	st, err := s.SetTrend(TrendUpdate{Period: "week", Value: "time", Averaging: "none"})
	if err != nil {
		t.Fatalf("set trend: %v", err)
	}
	if diff := cmp.Diff([]string{"run", "ride"}, st.Data.Groups); diff != "" {
		t.Fatalf("groups (-want +got):\n%s", diff)
	}
	if len(st.Data.Bins) != 4 {
		t.Fatalf("expected 4 weekly bins, got %d", len(st.Data.Bins))
	}
	var run, ride []float64
	for _, b := range st.Data.Bins {
		run = append(run, b.Values["run"])
		ride = append(ride, b.Values["ride"])
		if b.Smoothed["run"] != b.Values["run"] {
			t.Fatalf("identity kernel changed values at %v", b.Date)
		}
	}
	if diff := cmp.Diff([]float64{1, 0, 0, 3}, run); diff != "" {
		t.Fatalf("run bins (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 0, 2, 0}, ride); diff != "" {
		t.Fatalf("ride bins (-want +got):\n%s", diff)
	}
	if m := st.Data.Means["run"]; m != 1 {
		t.Fatalf("run mean = %v, want 1", m)
	}

	st, err = s.SetTrend(TrendUpdate{Averaging: "movingAvg7"})
	if err != nil {
		t.Fatalf("set trend: %v", err)
	}
	if got := st.Data.Bins[0].Smoothed["run"]; got != 1 {
		t.Fatalf("smoothed first bin = %v, want 1", got)
	}

	if _, err := s.SetTrend(TrendUpdate{Period: "month_of_year"}); err == nil {
		t.Fatal("expected relative period to be rejected")
	}
}

// ============================================================
// Violin
// ============================================================

func violinActivities() []activity.Activity {
	var acts []activity.Activity
	id := int64(1)
	next := func(sport string, d float64) {
		acts = append(acts, act(id, sport, "2023-01-01", km(d)))
		id++
	}
	for i := 0; i < 25; i++ {
		next("Run", 10)
	}
	next("Run", 1)
	next("Run", 100)
	next("Run", 100)
	for i := 0; i < 5; i++ {
		next("Ride", 30+float64(i))
	}
	acts = append(acts, act(id, "Run", "2023-01-01"))
	return acts
}

func TestViolinPartition(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities(violinActivities())
	st := s.Snapshot().Violin
	if !st.Loaded || st.Err != nil {
		t.Fatalf("expected loaded violin, got %+v", st)
	}
	if diff := cmp.Diff([]string{"run", "ride"}, st.Data.Groups); diff != "" {
		t.Fatalf("groups (-want +got):\n%s", diff)
	}

	run := st.Data.Violins[0]
	if run.Sparse() {
		t.Fatal("run group should have a distribution")
	}
	if run.Stats.Count+len(run.Points) != 28 {
		t.Fatalf("partition: bulk %d + outliers %d != 28", run.Stats.Count, len(run.Points))
	}
	if run.Stats.Count != 25 || run.Stats.Median != 10 || run.Stats.Min != 10 || run.Stats.Max != 10 {
		t.Fatalf("unexpected bulk stats %+v", run.Stats)
	}
	if len(run.Bins) != ViolinBins {
		t.Fatalf("expected %d bins, got %d", ViolinBins, len(run.Bins))
	}
	var binned int
	for _, b := range run.Bins {
		binned += b.Count
	}
	if binned != 28 {
		t.Fatalf("bins hold %d records, want 28", binned)
	}
	for _, p := range run.Points {
		if d := p.Data.Distance / 1000; d != 1 && d != 100 {
			t.Fatalf("unexpected outlier %v km", d)
		}
		if p.R != outlierRadius {
			t.Fatalf("outlier radius = %v", p.R)
		}
	}
}

func TestViolinSparseGroup(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities(violinActivities())
	ride := s.Snapshot().Violin.Data.Violins[1]
	if !ride.Sparse() || ride.Bins != nil {
		t.Fatalf("ride group should be sparse, got %+v", ride)
	}
	if len(ride.Points) != 5 {
		t.Fatalf("sparse group should place all 5 members, got %d", len(ride.Points))
	}
	for _, p := range ride.Points {
		if p.R != sparseRadius {
			t.Fatalf("sparse radius = %v", p.R)
		}
	}
}

func TestViolinDegenerateDomain(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities(violinActivities())
	st, err := s.SetViolin(ViolinUpdate{MinValue: ptr(10.0), MaxValue: ptr(10.0)})
	if err != nil {
		t.Fatalf("set violin: %v", err)
	}
	run := st.Data.Violins[0]
	if !run.Sparse() || len(run.Points) != 25 {
		t.Fatalf("degenerate domain should make every group sparse, got %d points", len(run.Points))
	}
}

func TestViolinRejectsBadUpdate(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities(violinActivities())
	before := s.Snapshot().Violin

	for _, u := range []ViolinUpdate{
		{MinValue: ptr(50.0), MaxValue: ptr(10.0)},
		{Scale: "log", MinValue: ptr(0.0)},
		{OutlierThreshold: ptr(0)},
		{Layout: &Layout{Width: 0, Height: 100}},
		{Group: "nope"},
	} {
		st, err := s.SetViolin(u)
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("update %+v: expected ConfigError, got %v", u, err)
		}
		if st.Params.MinValue != before.Params.MinValue || st.Params.Scale.Key != before.Params.Scale.Key {
			t.Fatalf("rejected update changed params: %+v", st.Params)
		}
	}
}

// ============================================================
// Calendar
// ============================================================

func TestCalendar(t *testing.T) {
	sel := &fakeSelection{ids: []int64{4}}
	s := newTestStore(t, sel)
	s.SetActivities([]activity.Activity{
		act(1, "Run", "2023-01-01", hours(1)),
		act(2, "Ride", "2023-01-01", hours(0.5)),
		act(3, "Run", "2023-01-02", hours(0)),
		act(4, "Run", "2023-01-03", hours(2)),
	})
	st := s.Snapshot().Calendar
	if st.Err != nil {
		t.Fatalf("calendar error: %v", st.Err)
	}
	if n := len(st.Data.Days); n != 3 {
		t.Fatalf("expected 3 days, got %d", n)
	}
	if st.Data.MaxValue != 2 {
		t.Fatalf("max value = %v, want 2", st.Data.MaxValue)
	}
	if !st.Data.Extent.Start.Equal(date("2023-01-01")) || !st.Data.Extent.End.Equal(date("2023-01-03")) {
		t.Fatalf("unexpected extent %+v", st.Data.Extent)
	}

	color, err := st.Data.ColorScale([]string{"below", "a", "b", "c", "sel"})
	if err != nil {
		t.Fatalf("color scale: %v", err)
	}
	got := map[string]string{}
	for _, d := range st.Data.Days {
		got[d.Day] = color(d)
	}
	want := map[string]string{"2023-01-01": "b", "2023-01-02": "below", "2023-01-03": "sel"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("colors (-want +got):\n%s", diff)
	}

	st.Data.OnClick("2023-01-01")
	if diff := cmp.Diff([]int64{1, 2}, sel.ids); diff != "" {
		t.Fatalf("selection (-want +got):\n%s", diff)
	}
	for _, d := range s.Snapshot().Calendar.Data.Days {
		if d.Selected != (d.Day == "2023-01-01") {
			t.Fatalf("day %s selected = %v after click", d.Day, d.Selected)
		}
	}

	st.Data.OnClick("2020-05-05")
	if sel.ids == nil || len(sel.ids) != 0 {
		t.Fatalf("clicking an empty day should clear the selection, got %v", sel.ids)
	}

	if _, err := st.Data.ColorScale([]string{"a", "b"}); err == nil {
		t.Fatal("expected error for short palette")
	}
}

// ============================================================
// Pie and geo
// ============================================================

func rollupActivities() []activity.Activity {
	return []activity.Activity{
		act(1, "Run", "2022-06-01", hours(1), country("FR")),
		act(2, "Ride", "2023-06-01", hours(3), country("DE")),
		act(3, "Run", "2023-07-01", hours(2), country("FR")),
		act(4, "Swim", "2023-08-01", country("")),
	}
}

func TestPieConservation(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities(rollupActivities())

	st := s.Snapshot().Pie
	want := []Slice{
		{ID: "run", Label: "Run", Value: 3, Color: "#FF6B6B", Icon: "person-running"},
		{ID: "ride", Label: "Ride", Value: 3, Color: "#2EC4B6", Icon: "person-biking"},
		{ID: "swim", Label: "Swim", Value: 0, Color: "#3498DB", Icon: "person-swimming"},
	}
	if diff := cmp.Diff(want, st.Data); diff != "" {
		t.Fatalf("pie (-want +got):\n%s", diff)
	}

	tg := settings.ByYear(2023)
	st, err := s.SetPie(PieUpdate{TimeGroup: &tg})
	if err != nil {
		t.Fatalf("set pie: %v", err)
	}
	var total float64
	for _, sl := range st.Data {
		total += sl.Value
	}
	if total != 5 {
		t.Fatalf("2023 pie total = %v, want 5", total)
	}
}

func TestGeoRollup(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities(rollupActivities())

	st := s.Snapshot().Geo
	want := []CountryValue{{ID: "FR", Value: 2}, {ID: "DE", Value: 1}, {ID: UnknownCountry, Value: 1}}
	if diff := cmp.Diff(want, st.Data.Countries); diff != "" {
		t.Fatalf("countries (-want +got):\n%s", diff)
	}
	if st.Data.Domain.Min != 1 || st.Data.Domain.Max != 2 {
		t.Fatalf("domain = %+v", st.Data.Domain)
	}

	st, err := s.SetGeo(GeoUpdate{Value: "time"})
	if err != nil {
		t.Fatalf("set geo: %v", err)
	}
	want = []CountryValue{{ID: "FR", Value: 3}, {ID: "DE", Value: 3}, {ID: UnknownCountry, Value: 0}}
	if diff := cmp.Diff(want, st.Data.Countries); diff != "" {
		t.Fatalf("countries by time (-want +got):\n%s", diff)
	}
}

func TestGeoConservation(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities([]activity.Activity{
		act(1, "Run", "2023-01-01", km(10), country("CH")),
		act(2, "Run", "2023-01-02", km(20), country("")),
		act(3, "Ride", "2023-01-03", km(30), country("DE")),
		act(4, "Ride", "2023-01-04", country("DE")),
	})
	st, err := s.SetGeo(GeoUpdate{Value: "distance"})
	if err != nil {
		t.Fatalf("set geo: %v", err)
	}
	var total float64
	for _, c := range st.Data.Countries {
		total += c.Value
	}
	if total != 60 {
		t.Fatalf("geo total = %v, want 60 (%+v)", total, st.Data.Countries)
	}
	want := []CountryValue{{ID: "CH", Value: 10}, {ID: UnknownCountry, Value: 20}, {ID: "DE", Value: 30}}
	if diff := cmp.Diff(want, st.Data.Countries); diff != "" {
		t.Fatalf("countries (-want +got):\n%s", diff)
	}
}

// ============================================================
// Scatter
// ============================================================

func TestScatterMerge(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities([]activity.Activity{
		act(1, "Run", "2023-01-01", km(5), elevation(50)),
		act(2, "Run", "2023-01-02", km(15), elevation(10)),
	})
	st, err := s.SetScatter(ScatterUpdate{X: "distance"})
	if err != nil {
		t.Fatalf("set scatter: %v", err)
	}
	if st.Params.X.Key != "distance" || st.Params.Y.Key != "elevation" {
		t.Fatalf("merge lost fields: x=%s y=%s", st.Params.X.Key, st.Params.Y.Key)
	}
	if st.Data.X.Min != 5 || st.Data.X.Max != 15 || st.Data.Y.Min != 10 || st.Data.Y.Max != 50 {
		t.Fatalf("unexpected extents %+v", st.Data)
	}
	if _, err := s.SetScatter(ScatterUpdate{Size: "nope"}); err == nil {
		t.Fatal("expected error for unknown size value")
	}
}

// ============================================================
// Store
// ============================================================

func TestStoreNotLoaded(t *testing.T) {
	s := newTestStore(t, nil)
	st, err := s.SetTimeline(TimelineUpdate{Period: "month"})
	if err != nil {
		t.Fatalf("set timeline: %v", err)
	}
	if st.Loaded {
		t.Fatal("view should not be loaded before activities arrive")
	}
	if st.Params.Period.Key != "month" {
		t.Fatal("params should still be stored")
	}
}

func TestStoreEmptyActivities(t *testing.T) {
	s := newTestStore(t, nil)
	snap := s.SetActivities(nil)
	var ce *ComputeError
	if !snap.Timeline.Loaded || !errors.As(snap.Timeline.Err, &ce) {
		t.Fatalf("expected loaded timeline with ComputeError, got %+v", snap.Timeline)
	}
	if len(snap.Timeline.Data) != 0 {
		t.Fatal("degenerate timeline should have no series")
	}
	if !snap.Violin.Loaded || !errors.As(snap.Violin.Err, &ce) {
		t.Fatalf("expected loaded violin with ComputeError, got %+v", snap.Violin.Err)
	}
	if !snap.Pie.Loaded || len(snap.Pie.Data) != 0 {
		t.Fatalf("expected empty pie, got %+v", snap.Pie)
	}
}

func TestStoreFilter(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetActivities(rollupActivities())

	snap := s.SetFilter([]int64{1, 3, 99})
	if snap.Records != 2 {
		t.Fatalf("filtered records = %d, want 2", snap.Records)
	}
	if len(snap.Pie.Data) != 1 || snap.Pie.Data[0].ID != "run" {
		t.Fatalf("pie should only contain run, got %+v", snap.Pie.Data)
	}
	for _, a := range s.Filtered() {
		if a.ID != 1 && a.ID != 3 {
			t.Fatalf("unexpected filtered activity %d", a.ID)
		}
	}

	snap = s.ClearFilter()
	if snap.Records != 4 {
		t.Fatalf("records after clear = %d, want 4", snap.Records)
	}
}

func TestStoreSubscribe(t *testing.T) {
	s := newTestStore(t, nil)
	var got []int
	cancel := s.Subscribe(func(snap Snapshot) { got = append(got, snap.Records) })

	s.SetActivities(rollupActivities())
	s.SetFilter([]int64{1})
	cancel()
	s.ClearFilter()

	if diff := cmp.Diff([]int{4, 1}, got); diff != "" {
		t.Fatalf("published records (-want +got):\n%s", diff)
	}
}

func TestQuartilesR8(t *testing.T) {
	q := quartiles([]float64{4, 1, 3, 2})
	approx := cmpopts.EquateApprox(0, 1e-9)
	want := Quartiles{Count: 4, Min: 1, FirstQuartile: 1 + 5.0/12, Median: 2.5, ThirdQuartile: 3 + 7.0/12, Max: 4}
	if diff := cmp.Diff(want, *q, approx); diff != "" {
		t.Fatalf("quartiles (-want +got):\n%s", diff)
	}
}

func TestHistogramThresholdsConfigError(t *testing.T) {
	v, err := settings.Default(time.Sunday).Value("distance")
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	_, err = histogram(ViewViolin, nil, v, []float64{1, 1})
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "thresholds" {
		t.Fatalf("err = %v, want thresholds ConfigError", err)
	}
	if !errors.Is(err, groupbin.ErrThresholds) {
		t.Fatalf("err = %v, want to wrap ErrThresholds", err)
	}
}

func TestCalendarSelectionIgnoresFilteredOut(t *testing.T) {
	sel := &fakeSelection{}
	s := newTestStore(t, sel)
	s.SetActivities([]activity.Activity{
		act(1, "Run", "2023-01-01", hours(1)),
		act(2, "Ride", "2023-01-01", hours(2)),
	})
	s.SetFilter([]int64{2})

	sel.ids = []int64{1}
	days := s.SelectionChanged().Calendar.Data.Days
	if len(days) != 1 || days[0].Selected {
		t.Fatalf("day with only a filtered-out selected activity: %+v", days)
	}

	sel.ids = []int64{2}
	days = s.SelectionChanged().Calendar.Data.Days
	if len(days) != 1 || !days[0].Selected {
		t.Fatalf("day with a selected filtered-in activity: %+v", days)
	}
}
