package stats

import (
	"time"

	mstats "github.com/aclements/go-moremath/stats"
	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/groupbin"
	"github.com/sadopc/actistats/internal/settings"
	"github.com/sadopc/actistats/internal/smooth"
)

// TrendParams configures the binned timeline with smoothing.
type TrendParams struct {
	Period       settings.Period
	Value        settings.Value
	Group        settings.Group
	AveragingKey string
	Averaging    smooth.Kernel
}

// TrendUpdate is a partial update of the trend view.
type TrendUpdate struct {
	Period    string
	Value     string
	Group     string
	Averaging string
}

// TrendBin holds per-group sums for one period and their smoothed values.
type TrendBin struct {
	Date     time.Time
	Values   map[string]float64
	Smoothed map[string]float64
}

// TrendData is the trend view output. Means is the mean bin value per group.
type TrendData struct {
	Groups []string
	Bins   []TrendBin
	Means  map[string]float64
	Color  func(group string) string
}

func (p TrendParams) apply(lib *settings.Library, u TrendUpdate) (TrendParams, error) {
	next := p
	if u.Period != "" {
		period, err := lib.Period(u.Period)
		if err != nil {
			return p, configErr(ViewTrend, "period", err)
		}
		next.Period = period
	}
	if u.Value != "" {
		v, err := lib.Value(u.Value)
		if err != nil {
			return p, configErr(ViewTrend, "value", err)
		}
		next.Value = v
	}
	if u.Group != "" {
		g, err := lib.Group(u.Group)
		if err != nil {
			return p, configErr(ViewTrend, "group", err)
		}
		next.Group = g
	}
	if u.Averaging != "" {
		k, err := lib.Averaging(u.Averaging)
		if err != nil {
			return p, configErr(ViewTrend, "averaging", err)
		}
		next.AveragingKey, next.Averaging = u.Averaging, k
	}
	if next.Period.Relative {
		return p, &ConfigError{View: ViewTrend, Field: "period", Reason: next.Period.Key + " is relative"}
	}
	if err := requireAdditive(ViewTrend, next.Value); err != nil {
		return p, err
	}
	return next, nil
}

// ComputeTrend sums acts per period tick of extent and group, zero-fills
// every (tick, group) pair and smooths each group's series.
func ComputeTrend(acts []activity.Activity, extent groupbin.TimeRange, p TrendParams) (TrendData, []DataError, error) {
	ticks := p.Period.Range(extent)
	if len(ticks) == 0 {
		return TrendData{}, nil, &ComputeError{View: ViewTrend, Reason: "empty date range"}
	}
	index := make(map[int64]int, len(ticks))
	for i, t := range ticks {
		index[t.Unix()] = i
	}

	var excluded []DataError
	groups := groupbin.Keys(groupbin.GroupBy(acts, p.Group.Fn))
	series := make(map[string][]float64, len(groups))
	for _, g := range groups {
		series[g] = make([]float64, len(ticks))
	}
	for _, a := range acts {
		if !a.HasDate() {
			excluded = append(excluded, DataError{ID: a.ID, Field: "start_date_local"})
			continue
		}
		v, ok := valueOf(p.Value, a, &excluded)
		if !ok {
			continue
		}
		if i, ok := index[p.Period.Floor(a.Date).Unix()]; ok {
			series[p.Group.Fn(a)][i] += v
		}
	}

	data := TrendData{
		Groups: groups,
		Bins:   make([]TrendBin, len(ticks)),
		Means:  make(map[string]float64, len(groups)),
		Color:  p.Group.Color,
	}
	for i, t := range ticks {
		data.Bins[i] = TrendBin{
			Date:     t,
			Values:   make(map[string]float64, len(groups)),
			Smoothed: make(map[string]float64, len(groups)),
		}
	}
	for _, g := range groups {
		smoothed := p.Averaging.Apply(series[g])
		data.Means[g] = mstats.Mean(series[g])
		for i := range ticks {
			data.Bins[i].Values[g] = series[g][i]
			data.Bins[i].Smoothed[g] = smoothed[i]
		}
	}
	return data, excluded, nil
}
