package groupbin

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type rec struct {
	key string
	val float64
	at  time.Time
}

func TestGroupByFirstSeenOrder(t *testing.T) {
	items := []rec{{key: "b", val: 1}, {key: "a", val: 2}, {key: "b", val: 3}, {key: "c", val: 4}, {key: "a", val: 5}}
	groups := GroupBy(items, func(r rec) string { return r.key })

	if diff := cmp.Diff([]string{"b", "a", "c"}, Keys(groups)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	var vals []float64
	for _, it := range groups[0].Items {
		vals = append(vals, it.val)
	}
	if diff := cmp.Diff([]float64{1, 3}, vals); diff != "" {
		t.Fatalf("group b members (-want +got):\n%s", diff)
	}
}

func TestGroupByEmpty(t *testing.T) {
	groups := GroupBy([]rec(nil), func(r rec) string { return r.key })
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}

func TestHistogram(t *testing.T) {
	vals := []float64{0, 0.5, 1, 1.5, 2, 3, -1, 4, math.NaN()}
	bins, err := Histogram(vals, func(v float64) float64 { return v }, []float64{0, 1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	got := make([][]float64, len(bins))
	for i, b := range bins {
		got[i] = b.Members
	}
	want := [][]float64{{0, 0.5}, {1, 1.5}, {2, 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bins mismatch (-want +got):\n%s", diff)
	}
	if bins[2].Lower != 2 || bins[2].Upper != 3 {
		t.Fatalf("last bin bounds = [%v,%v]", bins[2].Lower, bins[2].Upper)
	}
}

func TestHistogramBadThresholds(t *testing.T) {
	id := func(v float64) float64 { return v }
	for _, th := range [][]float64{nil, {1}, {0, 1, 1}, {0, 2, 1}, {0, math.NaN()}} {
		if _, err := Histogram([]float64{1}, id, th); !errors.Is(err, ErrThresholds) {
			t.Errorf("thresholds %v: err = %v, want ErrThresholds", th, err)
		}
	}
}

func TestBinIndex(t *testing.T) {
	th := []float64{0, 10, 20}
	tests := []struct {
		v    float64
		want int
	}{
		{-1, -1}, {0, 0}, {9.99, 0}, {10, 1}, {20, 1}, {20.1, -1}, {math.NaN(), -1},
	}
	for _, tt := range tests {
		if got := BinIndex(th, tt.v); got != tt.want {
			t.Errorf("BinIndex(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestExtentOf(t *testing.T) {
	vals := []float64{3, math.NaN(), -2, 7, math.Inf(1)}
	e := ExtentOf(vals, func(v float64) float64 { return v })
	if !e.Valid() || e.Min != -2 || e.Max != 7 {
		t.Fatalf("extent = %+v, want [-2,7]", e)
	}
	if e.Span() != 9 {
		t.Fatalf("span = %v", e.Span())
	}

	empty := ExtentOf([]float64{math.NaN()}, func(v float64) float64 { return v })
	if empty.Valid() || !math.IsNaN(empty.Min) || !math.IsNaN(empty.Max) {
		t.Fatalf("empty extent = %+v, want [NaN,NaN]", empty)
	}
	if empty.Span() != 0 {
		t.Fatal("invalid extent should have zero span")
	}
}

func TestTimeExtent(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2023, 1, day, 0, 0, 0, 0, time.UTC) }
	items := []rec{{at: d(8)}, {at: time.Time{}}, {at: d(1)}, {at: d(15)}}
	r := TimeExtent(items, func(r rec) time.Time { return r.at })
	if !r.Start.Equal(d(1)) || !r.End.Equal(d(15)) {
		t.Fatalf("range = %v..%v", r.Start, r.End)
	}
	if (TimeRange{}).Valid() {
		t.Fatal("zero range should be invalid")
	}
}
