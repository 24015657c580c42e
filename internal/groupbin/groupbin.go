// Package groupbin holds the grouping, binning and extent primitives the
// aggregators are built from.
package groupbin

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/aclements/go-moremath/stats"
)

// ErrThresholds is returned by Histogram for fewer than two or
// non-increasing thresholds.
var ErrThresholds = errors.New("bin thresholds must be strictly increasing")

// Group is one key of a GroupBy result with its members in input order.
type Group[K comparable, T any] struct {
	Key   K
	Items []T
}

// GroupBy partitions items by key. Groups are ordered by the first
// occurrence of their key.
func GroupBy[K comparable, T any](items []T, key func(T) K) []Group[K, T] {
	index := make(map[K]int)
	var groups []Group[K, T]
	for _, it := range items {
		k := key(it)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// Keys returns the group keys in order.
func Keys[K comparable, T any](groups []Group[K, T]) []K {
	keys := make([]K, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}

// Bin is a half-open value interval [Lower, Upper) and its members. The
// last bin of a histogram is closed on the right.
type Bin[T any] struct {
	Lower, Upper float64
	Members      []T
}

// Histogram bins items by value between consecutive thresholds. Items whose
// value is NaN or lies outside [thresholds[0], thresholds[n-1]] belong to no
// bin.
func Histogram[T any](items []T, value func(T) float64, thresholds []float64) ([]Bin[T], error) {
	if err := CheckThresholds(thresholds); err != nil {
		return nil, err
	}
	bins := make([]Bin[T], len(thresholds)-1)
	for i := range bins {
		bins[i].Lower, bins[i].Upper = thresholds[i], thresholds[i+1]
	}
	for _, it := range items {
		if i := BinIndex(thresholds, value(it)); i >= 0 {
			bins[i].Members = append(bins[i].Members, it)
		}
	}
	return bins, nil
}

// CheckThresholds validates bin edges for Histogram.
func CheckThresholds(thresholds []float64) error {
	if len(thresholds) < 2 {
		return ErrThresholds
	}
	for i := 1; i < len(thresholds); i++ {
		if !(thresholds[i] > thresholds[i-1]) {
			return ErrThresholds
		}
	}
	return nil
}

// BinIndex returns the index of the bin of v for valid thresholds, or -1.
func BinIndex(thresholds []float64, v float64) int {
	n := len(thresholds)
	if n < 2 || math.IsNaN(v) || v < thresholds[0] || v > thresholds[n-1] {
		return -1
	}
	if v == thresholds[n-1] {
		return n - 2
	}
	return sort.Search(n, func(i int) bool { return thresholds[i] > v }) - 1
}

// Extent is a [Min, Max] range. Both ends are NaN for an empty input.
type Extent struct {
	Min, Max float64
}

// Valid reports whether the extent was computed from at least one value.
func (e Extent) Valid() bool { return !math.IsNaN(e.Min) && !math.IsNaN(e.Max) }

// Span returns Max-Min, or 0 for an invalid extent.
func (e Extent) Span() float64 {
	if !e.Valid() {
		return 0
	}
	return e.Max - e.Min
}

// ExtentOf returns the bounds of value over items, ignoring NaN and
// infinite values.
func ExtentOf[T any](items []T, value func(T) float64) Extent {
	xs := make([]float64, 0, len(items))
	for _, it := range items {
		v := value(it)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, v)
	}
	if len(xs) == 0 {
		return Extent{Min: math.NaN(), Max: math.NaN()}
	}
	min, max := stats.Bounds(xs)
	return Extent{Min: min, Max: max}
}

// TimeRange is an inclusive [Start, End] date range. The zero value is the
// empty range.
type TimeRange struct {
	Start, End time.Time
}

// Valid reports whether the range holds at least one date.
func (r TimeRange) Valid() bool { return !r.Start.IsZero() && !r.End.IsZero() }

// TimeExtent returns the earliest and latest date over items, skipping zero
// times.
func TimeExtent[T any](items []T, date func(T) time.Time) TimeRange {
	var r TimeRange
	for _, it := range items {
		d := date(it)
		if d.IsZero() {
			continue
		}
		if r.Start.IsZero() || d.Before(r.Start) {
			r.Start = d
		}
		if r.End.IsZero() || d.After(r.End) {
			r.End = d
		}
	}
	return r
}
