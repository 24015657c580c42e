package settings

import (
	"strconv"

	"github.com/sadopc/actistats/internal/activity"
)

// TimeGroup either keeps all years together or splits records by year and
// highlights one of them.
type TimeGroup struct {
	byYear bool
	year   int
}

// AllYears is the time group that does not split by year.
func AllYears() TimeGroup { return TimeGroup{} }

// ByYear splits by year and highlights year.
func ByYear(year int) TimeGroup { return TimeGroup{byYear: true, year: year} }

// Highlight returns the highlighted year, if any.
func (g TimeGroup) Highlight() (int, bool) { return g.year, g.byYear }

// SplitsYears reports whether series are keyed by year.
func (g TimeGroup) SplitsYears() bool { return g.byYear }

// Year returns the series year of a, or 0 when years are not split.
func (g TimeGroup) Year(a activity.Activity) int {
	if !g.byYear {
		return 0
	}
	return a.Date.Year()
}

// Match reports whether a passes the time group used as a record filter.
func (g TimeGroup) Match(a activity.Activity) bool {
	if !g.byYear {
		return true
	}
	return a.HasDate() && a.Date.Year() == g.year
}

func (g TimeGroup) String() string {
	if !g.byYear {
		return "all"
	}
	return strconv.Itoa(g.year)
}

// Stat is how timeline buckets accumulate.
type Stat int

const (
	StatSum Stat = iota
	StatCumulativeSum
)

// StatFor returns the stat bound to the cumulative flag.
func StatFor(cumulative bool) Stat {
	if cumulative {
		return StatCumulativeSum
	}
	return StatSum
}

// Cumulative reports whether series are running sums.
func (s Stat) Cumulative() bool { return s == StatCumulativeSum }

func (s Stat) String() string {
	if s == StatCumulativeSum {
		return "cumTotal"
	}
	return "total"
}
