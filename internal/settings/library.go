package settings

import (
	"time"

	"github.com/sadopc/actistats/internal/smooth"
)

// Library holds every definition a view can be parameterized with.
type Library struct {
	values   *registry[Value]
	groups   *registry[Group]
	periods  *registry[Period]
	scales   *registry[Scale]
	averages *registry[smooth.Kernel]
}

// Default returns the built-in definitions. weekStart sets where weekly
// periods begin.
func Default(weekStart time.Weekday) *Library {
	averages := newRegistry[smooth.Kernel]("averaging")
	averages.add("movingAvg7", smooth.MovingAvg(7))
	averages.add("movingAvg30", smooth.MovingAvg(30))
	averages.add("gaussian3", smooth.Gaussian(3))
	averages.add("gaussian10", smooth.Gaussian(10))
	averages.add("none", smooth.MovingAvg(1))

	return &Library{
		values:   defaultValues(),
		groups:   defaultGroups(),
		periods:  defaultPeriods(weekStart),
		scales:   defaultScales(),
		averages: averages,
	}
}

func (l *Library) Value(key string) (Value, error)             { return l.values.get(key) }
func (l *Library) Group(key string) (Group, error)             { return l.groups.get(key) }
func (l *Library) Period(key string) (Period, error)           { return l.periods.get(key) }
func (l *Library) Scale(key string) (Scale, error)             { return l.scales.get(key) }
func (l *Library) Averaging(key string) (smooth.Kernel, error) { return l.averages.get(key) }

func (l *Library) ValueKeys() []string     { return l.values.keys() }
func (l *Library) GroupKeys() []string     { return l.groups.keys() }
func (l *Library) PeriodKeys() []string    { return l.periods.keys() }
func (l *Library) ScaleKeys() []string     { return l.scales.keys() }
func (l *Library) AveragingKeys() []string { return l.averages.keys() }
