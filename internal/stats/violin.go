package stats

import (
	"math"
	"sort"

	mstats "github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/declutter"
	"github.com/sadopc/actistats/internal/groupbin"
	"github.com/sadopc/actistats/internal/settings"
)

const (
	// ViolinBins is the number of histogram bins along the value axis.
	ViolinBins = 20
	// MinBulk is the bulk membership below which a group is drawn as points.
	MinBulk = 20
	// DefaultOutlierThreshold is the member count a bin needs to be bulk.
	DefaultOutlierThreshold = 8

	outlierRadius = 4
	sparseRadius  = 3
)

// Layout is the pixel area the violin points are placed in.
type Layout struct {
	Width, Height float64
}

// ViolinParams configures the violin view. MinValue and MaxValue clamp the
// records considered; MaxValue is +Inf when unbounded.
type ViolinParams struct {
	Value            settings.Value
	MinValue         float64
	MaxValue         float64
	Group            settings.Group
	Scale            settings.Scale
	Layout           Layout
	OutlierThreshold int
}

// ViolinUpdate is a partial update of the violin view. Changing Value
// resets the clamp to the value's defaults unless MinValue or MaxValue are
// also given.
type ViolinUpdate struct {
	Value            string
	Group            string
	Scale            string
	MinValue         *float64
	MaxValue         *float64
	Layout           *Layout
	OutlierThreshold *int
}

// ViolinBin is one histogram bin of a group.
type ViolinBin struct {
	Lower, Upper float64
	Count        int
}

// Quartiles summarizes the bulk region of a group.
type Quartiles struct {
	Count         int
	Min           float64
	FirstQuartile float64
	Median        float64
	ThirdQuartile float64
	Max           float64
}

// Violin is the distribution of one group. Sparse groups have no Bins and
// nil Stats, and every member is in Points.
type Violin struct {
	Group   string
	Label   string
	Color   string
	CenterX float64
	Bins    []ViolinBin
	Stats   *Quartiles
	Points  []declutter.Node[activity.Activity]
}

// Sparse reports whether the group was too small for a distribution.
func (v Violin) Sparse() bool { return v.Stats == nil }

// ViolinData is the violin view output. Violins[i] belongs to Groups[i].
type ViolinData struct {
	Groups  []string
	Domain  groupbin.Extent
	Violins []Violin
}

func (p ViolinParams) apply(lib *settings.Library, u ViolinUpdate) (ViolinParams, error) {
	next := p
	if u.Value != "" {
		v, err := lib.Value(u.Value)
		if err != nil {
			return p, configErr(ViewViolin, "value", err)
		}
		next.Value, next.MinValue, next.MaxValue = v, v.Min, v.Max
	}
	if u.Group != "" {
		g, err := lib.Group(u.Group)
		if err != nil {
			return p, configErr(ViewViolin, "group", err)
		}
		next.Group = g
	}
	if u.Scale != "" {
		s, err := lib.Scale(u.Scale)
		if err != nil {
			return p, configErr(ViewViolin, "scale", err)
		}
		next.Scale = s
	}
	if u.MinValue != nil {
		next.MinValue = *u.MinValue
	}
	if u.MaxValue != nil {
		next.MaxValue = *u.MaxValue
	}
	if u.Layout != nil {
		next.Layout = *u.Layout
	}
	if u.OutlierThreshold != nil {
		next.OutlierThreshold = *u.OutlierThreshold
	}
	if err := next.validate(); err != nil {
		return p, err
	}
	return next, nil
}

func (p ViolinParams) validate() error {
	switch {
	case math.IsNaN(p.MinValue) || math.IsNaN(p.MaxValue):
		return &ConfigError{View: ViewViolin, Field: "min_value", Reason: "NaN bound"}
	case p.MaxValue < p.MinValue:
		return &ConfigError{View: ViewViolin, Field: "max_value", Reason: "below min_value"}
	case p.Scale.RequiresPositive() && p.MinValue <= 0:
		return &ConfigError{View: ViewViolin, Field: "min_value", Reason: p.Scale.Key + " scale needs a positive lower bound"}
	case p.Layout.Width <= 0 || p.Layout.Height <= 0:
		return &ConfigError{View: ViewViolin, Field: "layout", Reason: "non-positive size"}
	case p.OutlierThreshold < 1:
		return &ConfigError{View: ViewViolin, Field: "outlier_threshold", Reason: "must be at least 1"}
	}
	return nil
}

// ComputeViolin bins each group's values in [MinValue, MaxValue], splits
// the bulk from the outliers and declutters the outlier points.
func ComputeViolin(acts []activity.Activity, p ViolinParams) (ViolinData, []DataError, error) {
	var excluded []DataError
	inRange := make([]activity.Activity, 0, len(acts))
	for _, a := range acts {
		v, ok := valueOf(p.Value, a, &excluded)
		if ok && p.MinValue <= v && v <= p.MaxValue {
			inRange = append(inRange, a)
		}
	}
	if len(inRange) == 0 {
		return ViolinData{}, excluded, &ComputeError{View: ViewViolin, Reason: "no values in range"}
	}

	data := ViolinData{
		Groups: groupbin.Keys(groupbin.GroupBy(acts, p.Group.Fn)),
		Domain: p.domain(inRange),
	}
	thresholds, axis := p.thresholds(data.Domain)
	y := func(a activity.Activity) float64 {
		if axis == nil {
			return p.Layout.Height / 2
		}
		return p.Layout.Height * (1 - axis.Map(p.Value.Fn(a)))
	}

	members := make(map[string][]activity.Activity, len(data.Groups))
	for _, g := range groupbin.GroupBy(inRange, p.Group.Fn) {
		members[g.Key] = g.Items
	}
	band := p.Layout.Width / float64(len(data.Groups))
	for i, g := range data.Groups {
		v := Violin{
			Group:   g,
			Label:   p.Group.Format(g),
			Color:   p.Group.Color(g),
			CenterX: (float64(i) + 0.5) * band,
		}
		p.fill(&v, members[g], thresholds, y)
		data.Violins = append(data.Violins, v)
	}
	return data, excluded, nil
}

func (p ViolinParams) domain(acts []activity.Activity) groupbin.Extent {
	d := groupbin.ExtentOf(acts, p.Value.Fn)
	if !math.IsInf(p.MinValue, 0) {
		d.Min = p.MinValue
	}
	if !math.IsInf(p.MaxValue, 0) {
		d.Max = p.MaxValue
	}
	return d
}

// thresholds returns ViolinBins+1 edges evenly spaced on the scale, or nil
// when the domain is degenerate.
func (p ViolinParams) thresholds(d groupbin.Extent) ([]float64, settings.Axis) {
	axis, err := p.Scale.Axis(d.Min, d.Max)
	if err != nil {
		return nil, nil
	}
	ticks := vec.Linspace(0, 1, ViolinBins+1)
	th := make([]float64, len(ticks))
	for i, t := range ticks {
		th[i] = axis.Unmap(t)
	}
	th[0], th[len(th)-1] = d.Min, d.Max
	if groupbin.CheckThresholds(th) != nil {
		return nil, axis
	}
	return th, axis
}

// histogram bins acts by value. Invalid thresholds are a ConfigError
// wrapping groupbin.ErrThresholds.
func histogram(view string, acts []activity.Activity, value settings.Value, thresholds []float64) ([]groupbin.Bin[activity.Activity], error) {
	bins, err := groupbin.Histogram(acts, value.Fn, thresholds)
	if err != nil {
		return nil, &ConfigError{View: view, Field: "thresholds", Reason: "bad bin edges", Err: err}
	}
	return bins, nil
}

func (p ViolinParams) fill(v *Violin, members []activity.Activity, thresholds []float64, y func(activity.Activity) float64) {
	x := func(activity.Activity) float64 { return v.CenterX }
	sparse := func() {
		v.Bins, v.Stats = nil, nil
		v.Points = declutter.Repel(members, x, y, func(activity.Activity) float64 { return sparseRadius }, declutter.DefaultTicks)
	}
	if thresholds == nil {
		sparse()
		return
	}
	bins, err := histogram(ViewViolin, members, p.Value, thresholds)
	if err != nil {
		sparse()
		return
	}
	first, last, bulk := -1, -1, 0
	for i, b := range bins {
		if len(b.Members) >= p.OutlierThreshold {
			if first < 0 {
				first = i
			}
			last = i
			bulk += len(b.Members)
		}
	}
	if first < 0 || bulk < MinBulk {
		sparse()
		return
	}

	v.Bins = make([]ViolinBin, len(bins))
	for i, b := range bins {
		v.Bins[i] = ViolinBin{Lower: b.Lower, Upper: b.Upper, Count: len(b.Members)}
	}
	var values []float64
	var outliers []activity.Activity
	for _, a := range members {
		val := p.Value.Fn(a)
		if i := groupbin.BinIndex(thresholds, val); first <= i && i <= last {
			values = append(values, val)
		} else {
			outliers = append(outliers, a)
		}
	}
	v.Stats = quartiles(values)
	v.Points = declutter.Repel(outliers, x, y, func(activity.Activity) float64 { return outlierRadius }, declutter.DefaultTicks)
}

// quartiles uses the R8 quantile estimator.
func quartiles(xs []float64) *Quartiles {
	sort.Float64s(xs)
	s := mstats.Sample{Xs: xs, Sorted: true}
	return &Quartiles{
		Count:         len(xs),
		Min:           xs[0],
		FirstQuartile: s.Quantile(0.25),
		Median:        s.Quantile(0.5),
		ThirdQuartile: s.Quantile(0.75),
		Max:           xs[len(xs)-1],
	}
}
