package settings

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/groupbin"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestLibraryLookup(t *testing.T) {
	lib := Default(time.Sunday)
	for _, k := range lib.ValueKeys() {
		if _, err := lib.Value(k); err != nil {
			t.Fatalf("Value(%q): %v", k, err)
		}
	}
	_, err := lib.Group("nope")
	var uk *UnknownKeyError
	if !errors.As(err, &uk) || uk.Kind != "group" || uk.Key != "nope" {
		t.Fatalf("expected UnknownKeyError for group, got %v", err)
	}
	if _, err := lib.Scale("cubic"); err == nil {
		t.Fatal("expected error for unknown scale")
	}
	if diff := cmp.Diff([]string{"linear", "log", "sqrt"}, lib.ScaleKeys()); diff != "" {
		t.Fatalf("scale keys (-want +got):\n%s", diff)
	}
}

func TestValueAccessors(t *testing.T) {
	lib := Default(time.Sunday)
	a := activity.Activity{Distance: 12345, ElevationGain: 1234.4, ElapsedTime: 5400, AverageSpeed: 2.5, Date: day(2023, 1, 2)}

	tests := []struct {
		key    string
		want   float64
		format string
	}{
		{"distance", 12.345, "12km"},
		{"elevation", 1234.4, "1,234m"},
		{"time", 1.5, "1.5h"},
		{"average_speed", 9, "9.0km/h"},
		{"count", 1, "1"},
	}
	for _, tt := range tests {
		v, _ := lib.Value(tt.key)
		got := v.Fn(a)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s.Fn = %v, want %v", tt.key, got, tt.want)
		}
		if f := v.Format(got); f != tt.format {
			t.Errorf("%s.Format = %q, want %q", tt.key, f, tt.format)
		}
	}

	date, _ := lib.Value("date")
	if f := date.Format(date.Fn(a)); f != "2023-01-02" {
		t.Fatalf("date format = %q", f)
	}
	if !math.IsNaN(date.Fn(activity.Activity{})) {
		t.Fatal("date of undated activity should be NaN")
	}
}

func TestValueRange(t *testing.T) {
	lib := Default(time.Sunday)
	elev, _ := lib.Value("elevation")
	if !elev.HasMax() {
		t.Fatal("elevation should carry a max clamp")
	}
	dist, _ := lib.Value("distance")
	if dist.HasMax() {
		t.Fatal("distance should be unbounded above")
	}
	if elev.InRange(0.5) || !elev.InRange(100) || elev.InRange(math.NaN()) || elev.InRange(2500) {
		t.Fatal("elevation InRange mismatch")
	}
}

func TestSportGroup(t *testing.T) {
	lib := Default(time.Sunday)
	g, _ := lib.Group("sport_group")
	if got := g.Fn(activity.Activity{SportType: "TrailRun"}); got != "run" {
		t.Fatalf("TrailRun -> %q", got)
	}
	if got := g.Fn(activity.Activity{SportType: "Kitesurf"}); got != "other" {
		t.Fatalf("Kitesurf -> %q", got)
	}
	if g.Color("run") != "#FF6B6B" || g.Icon("ride") != "person-biking" {
		t.Fatal("category display mismatch")
	}
	if !g.Less("run", "ride") || g.Less("other", "swim") {
		t.Fatal("sport groups should sort in category order")
	}
}

func TestPeriodFloor(t *testing.T) {
	lib := Default(time.Sunday)
	week, _ := lib.Period("week")
	// 2023-01-04 is a Wednesday.
	if got := week.Floor(day(2023, 1, 4)); !got.Equal(day(2023, 1, 1)) {
		t.Fatalf("sunday week floor = %v", got)
	}
	monday := Default(time.Monday)
	mweek, _ := monday.Period("week")
	if got := mweek.Floor(day(2023, 1, 1)); !got.Equal(day(2022, 12, 26)) {
		t.Fatalf("monday week floor = %v", got)
	}
	month, _ := lib.Period("month")
	if got := month.Floor(time.Date(2023, 3, 17, 15, 4, 0, 0, time.UTC)); !got.Equal(day(2023, 3, 1)) {
		t.Fatalf("month floor = %v", got)
	}
}

func TestPeriodRange(t *testing.T) {
	lib := Default(time.Sunday)
	week, _ := lib.Period("week")
	got := week.Range(groupbin.TimeRange{Start: day(2023, 1, 1), End: time.Date(2023, 1, 15, 9, 0, 0, 0, time.UTC)})
	want := []time.Time{day(2023, 1, 1), day(2023, 1, 8), day(2023, 1, 15)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("week range (-want +got):\n%s", diff)
	}
	if week.Range(groupbin.TimeRange{}) != nil {
		t.Fatal("empty range should have no periods")
	}
}

func TestRelativePeriod(t *testing.T) {
	lib := Default(time.Sunday)
	doy, _ := lib.Period("day_of_year")
	if got := doy.Bucket(day(2023, 7, 4)); !got.Equal(day(RefYear, 7, 4)) {
		t.Fatalf("relative bucket = %v", got)
	}
	// Leap day folds into March 1 and the range stays strictly increasing.
	keys := doy.Range(groupbin.TimeRange{Start: day(2024, 1, 1), End: day(2024, 12, 31)})
	if len(keys) != 365 {
		t.Fatalf("leap year day_of_year range has %d keys, want 365", len(keys))
	}
	woy, _ := lib.Period("week_of_year")
	if got := woy.Bucket(day(2024, 12, 31)); !got.Equal(day(RefYear, 12, 31)) {
		t.Fatalf("last week of leap year = %v", got)
	}
	weeks := woy.Range(groupbin.TimeRange{Start: day(2023, 1, 1), End: day(2023, 12, 31)})
	if len(weeks) != 53 {
		t.Fatalf("week_of_year range has %d keys, want 53", len(weeks))
	}
}

func TestYearRange(t *testing.T) {
	extent := groupbin.TimeRange{Start: day(2022, 5, 1), End: day(2024, 3, 1)}
	if r := YearRange(extent, 2022); !r.Start.Equal(day(2022, 5, 1)) || !r.End.Equal(day(2022, 12, 31)) {
		t.Fatalf("2022 = %v..%v", r.Start, r.End)
	}
	if r := YearRange(extent, 2023); !r.Start.Equal(day(2023, 1, 1)) || !r.End.Equal(day(2023, 12, 31)) {
		t.Fatalf("2023 = %v..%v", r.Start, r.End)
	}
	if r := YearRange(extent, 2024); !r.End.Equal(day(2024, 3, 1)) {
		t.Fatalf("2024 end = %v", r.End)
	}
}

func TestScaleAxis(t *testing.T) {
	lib := Default(time.Sunday)
	for _, key := range lib.ScaleKeys() {
		s, _ := lib.Scale(key)
		ax, err := s.Axis(1, 100)
		if err != nil {
			t.Fatalf("%s axis: %v", key, err)
		}
		if math.Abs(ax.Map(1)) > 1e-9 || math.Abs(ax.Map(100)-1) > 1e-9 {
			t.Errorf("%s: Map(1)=%v Map(100)=%v", key, ax.Map(1), ax.Map(100))
		}
		if x := ax.Unmap(ax.Map(25)); math.Abs(x-25) > 1e-9 {
			t.Errorf("%s: Unmap(Map(25)) = %v", key, x)
		}
	}
	log, _ := lib.Scale("log")
	if _, err := log.Axis(0, 10); err == nil {
		t.Fatal("log axis over 0 should fail")
	}
	lin, _ := lib.Scale("linear")
	if _, err := lin.Axis(5, 5); err == nil {
		t.Fatal("empty domain should fail")
	}
}

func TestTimeGroup(t *testing.T) {
	a := activity.Activity{Date: day(2023, 6, 1)}
	all := AllYears()
	if all.SplitsYears() || all.Year(a) != 0 || !all.Match(a) || !all.Match(activity.Activity{}) {
		t.Fatal("AllYears mismatch")
	}
	y := ByYear(2022)
	if h, ok := y.Highlight(); !ok || h != 2022 {
		t.Fatal("ByYear highlight mismatch")
	}
	if y.Year(a) != 2023 || y.Match(a) || !ByYear(2023).Match(a) {
		t.Fatal("ByYear year/match mismatch")
	}
	if !StatFor(true).Cumulative() || StatFor(false).Cumulative() {
		t.Fatal("StatFor mismatch")
	}
}
