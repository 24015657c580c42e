package settings

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/sadopc/actistats/internal/activity"
)

// Value extracts a number from an activity. Fn returns NaN when the
// activity lacks Field. Min and Max clamp the values a view accepts; Max is
// +Inf when unbounded. Only additive values may be summed by rollups.
type Value struct {
	Key        string
	Label      string
	Unit       string
	Field      string
	Additive   bool
	Fn         func(activity.Activity) float64
	Format     func(float64) string
	FormatAxis func(float64) string
	Min        float64
	Max        float64
}

// HasMax reports whether the value carries an upper clamp.
func (v Value) HasMax() bool { return !math.IsInf(v.Max, 1) }

// InRange reports whether x lies within [Min, Max].
func (v Value) InRange(x float64) bool {
	return !math.IsNaN(x) && v.Min <= x && x <= v.Max
}

// DayValue converts a date to the day number used by the date value.
func DayValue(a activity.Activity) float64 {
	if !a.HasDate() {
		return math.NaN()
	}
	return float64(a.Date.Unix()) / 86400
}

func defaultValues() *registry[Value] {
	r := newRegistry[Value]("value")
	inf := math.Inf(1)
	r.add("distance", Value{
		Key: "distance", Label: "Distance", Unit: "km", Field: "distance", Additive: true,
		Fn:         func(a activity.Activity) float64 { return a.Distance / 1000 },
		Format:     func(v float64) string { return humanize.Commaf(math.Round(v)) + "km" },
		FormatAxis: func(v float64) string { return humanize.Commaf(math.Round(v)) },
		Min:        0.1, Max: inf,
	})
	r.add("elevation", Value{
		Key: "elevation", Label: "Elevation", Unit: "m", Field: "total_elevation_gain", Additive: true,
		Fn:         func(a activity.Activity) float64 { return a.ElevationGain },
		Format:     func(v float64) string { return humanize.Commaf(math.Round(v)) + "m" },
		FormatAxis: func(v float64) string { return humanize.Commaf(math.Round(v)) },
		Min:        1, Max: 2000,
	})
	r.add("time", Value{
		Key: "time", Label: "Duration", Unit: "h", Field: "elapsed_time", Additive: true,
		Fn:         func(a activity.Activity) float64 { return a.ElapsedTime / 3600 },
		Format:     func(v float64) string { return humanize.FtoaWithDigits(v, 1) + "h" },
		FormatAxis: func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
		Min:        0.05, Max: inf,
	})
	r.add("average_speed", Value{
		Key: "average_speed", Label: "Avg Speed", Unit: "km/h", Field: "average_speed", Additive: true,
		Fn:         func(a activity.Activity) float64 { return a.AverageSpeed * 3.6 },
		Format:     func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "km/h" },
		FormatAxis: func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
		Min:        0.5, Max: inf,
	})
	r.add("count", Value{
		Key: "count", Label: "Activities", Unit: "", Field: "id", Additive: true,
		Fn:         func(activity.Activity) float64 { return 1 },
		Format:     func(v float64) string { return humanize.Comma(int64(v)) },
		FormatAxis: func(v float64) string { return humanize.Comma(int64(v)) },
		Min:        0, Max: inf,
	})
	r.add("date", Value{
		Key: "date", Label: "Date", Unit: "", Field: "start_date_local",
		Fn: DayValue,
		Format: func(v float64) string {
			return dayTime(v).Format("2006-01-02")
		},
		FormatAxis: func(v float64) string {
			return dayTime(v).Format("Jan 2006")
		},
		Min: math.Inf(-1), Max: inf,
	})
	return r
}
