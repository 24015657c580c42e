package stats

import (
	"math"

	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/settings"
)

// View names, used in errors, logs and persisted setting keys.
const (
	ViewTimeline = "timeline"
	ViewTrend    = "trend"
	ViewViolin   = "violin"
	ViewCalendar = "calendar"
	ViewPie      = "pie"
	ViewGeo      = "geo"
	ViewScatter  = "scatter"
)

// State is the immutable snapshot of one view. Data is replaced wholesale
// on every recompute. Err is set when the last recompute was degenerate, in
// which case Data is the view's empty value.
type State[P, D any] struct {
	Loaded bool
	Params P
	Data   D
	Err    error
}

// valueOf reads v from a, recording a DataError when it is missing.
func valueOf(v settings.Value, a activity.Activity, excluded *[]DataError) (float64, bool) {
	x := v.Fn(a)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		*excluded = append(*excluded, DataError{ID: a.ID, Field: v.Field})
		return 0, false
	}
	return x, true
}

func requireAdditive(view string, v settings.Value) error {
	if !v.Additive {
		return &ConfigError{View: view, Field: "value", Reason: v.Key + " cannot be summed"}
	}
	return nil
}
