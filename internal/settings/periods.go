package settings

import (
	"time"

	"github.com/sadopc/actistats/internal/groupbin"
)

// RefYear is the year relative periods fold every date into. It is not a
// leap year, so February 29 lands on March 1.
const RefYear = 2018

// Unit is the granularity of a Period.
type Unit int

const (
	UnitDay Unit = iota
	UnitWeek
	UnitMonth
	UnitYear
)

// Period buckets dates. A relative period buckets by position within the
// year, so series from different years overlay.
type Period struct {
	Key       string
	Label     string
	Unit      Unit
	Relative  bool
	WeekStart time.Weekday
}

// Floor returns the start of the period containing t.
func (p Period) Floor(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p.Unit {
	case UnitWeek:
		back := (int(d.Weekday()) - int(p.WeekStart) + 7) % 7
		return d.AddDate(0, 0, -back)
	case UnitMonth:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case UnitYear:
		return time.Date(d.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return d
}

// Next returns the start of the period after the one starting at t.
func (p Period) Next(t time.Time) time.Time {
	switch p.Unit {
	case UnitWeek:
		return t.AddDate(0, 0, 7)
	case UnitMonth:
		return t.AddDate(0, 1, 0)
	case UnitYear:
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 0, 1)
}

// Bucket returns the key date of the period containing t. Relative keys
// are dates in RefYear: the same calendar day or month, or the start of the
// same seven-day block counted from January 1.
func (p Period) Bucket(t time.Time) time.Time {
	if !p.Relative {
		return p.Floor(t)
	}
	switch p.Unit {
	case UnitWeek:
		return time.Date(RefYear, 1, 1+7*((t.YearDay()-1)/7), 0, 0, 0, 0, time.UTC)
	case UnitMonth, UnitYear:
		return time.Date(RefYear, t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(RefYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Range returns the distinct bucket keys of every period overlapping r, in
// chronological order.
func (p Period) Range(r groupbin.TimeRange) []time.Time {
	if !r.Valid() || r.End.Before(r.Start) {
		return nil
	}
	var out []time.Time
	add := func(k time.Time) {
		if n := len(out); n > 0 && !k.After(out[n-1]) {
			return
		}
		out = append(out, k)
	}
	if p.Relative {
		end := p.dayFloor(r.End)
		for t := p.dayFloor(r.Start); !t.After(end); t = t.AddDate(0, 0, 1) {
			add(p.Bucket(t))
		}
		return out
	}
	for t := p.Floor(r.Start); !t.After(r.End); t = p.Next(t) {
		add(t)
	}
	return out
}

func (p Period) dayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders a bucket key for axis labels.
func (p Period) Format(t time.Time) string {
	switch {
	case p.Relative && p.Unit == UnitMonth:
		return t.Format("Jan")
	case p.Relative:
		return t.Format("01-02")
	case p.Unit == UnitMonth:
		return t.Format("2006-01")
	case p.Unit == UnitYear:
		return t.Format("2006")
	}
	return t.Format("2006-01-02")
}

// YearRange returns the part of extent that falls in year.
func YearRange(extent groupbin.TimeRange, year int) groupbin.TimeRange {
	r := groupbin.TimeRange{
		Start: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if !extent.Valid() {
		return r
	}
	if extent.Start.Year() == year {
		r.Start = extent.Start
	}
	if extent.End.Year() == year {
		r.End = extent.End
	}
	return r
}

func dayTime(days float64) time.Time {
	return time.Unix(int64(days*86400), 0).UTC()
}

func defaultPeriods(weekStart time.Weekday) *registry[Period] {
	r := newRegistry[Period]("period")
	for _, p := range []Period{
		{Key: "day", Label: "Day", Unit: UnitDay},
		{Key: "week", Label: "Week", Unit: UnitWeek},
		{Key: "month", Label: "Month", Unit: UnitMonth},
		{Key: "year", Label: "Year", Unit: UnitYear},
		{Key: "day_of_year", Label: "Day of year", Unit: UnitDay, Relative: true},
		{Key: "week_of_year", Label: "Week of year", Unit: UnitWeek, Relative: true},
		{Key: "month_of_year", Label: "Month of year", Unit: UnitMonth, Relative: true},
	} {
		p.WeekStart = weekStart
		r.add(p.Key, p)
	}
	return r
}
