package stats

import (
	"sort"

	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/groupbin"
	"github.com/sadopc/actistats/internal/settings"
)

// PieParams configures the categorical breakdown.
type PieParams struct {
	Value     settings.Value
	Group     settings.Group
	TimeGroup settings.TimeGroup
}

// PieUpdate is a partial update of the pie view.
type PieUpdate struct {
	Value     string
	Group     string
	TimeGroup *settings.TimeGroup
}

// Slice is the total of one group.
type Slice struct {
	ID    string
	Label string
	Value float64
	Color string
	Icon  string
}

// GeoParams configures the per-country rollup.
type GeoParams struct {
	Value     settings.Value
	TimeGroup settings.TimeGroup
}

// GeoUpdate is a partial update of the geo view.
type GeoUpdate struct {
	Value     string
	TimeGroup *settings.TimeGroup
}

// UnknownCountry is the CountryValue ID of activities without a country.
const UnknownCountry = ""

// CountryValue is the total of one country code.
type CountryValue struct {
	ID    string
	Value float64
}

// GeoData is the geo view output. Domain spans the country totals.
type GeoData struct {
	Countries []CountryValue
	Domain    groupbin.Extent
}

func (p PieParams) apply(lib *settings.Library, u PieUpdate) (PieParams, error) {
	next := p
	if u.Value != "" {
		v, err := lib.Value(u.Value)
		if err != nil {
			return p, configErr(ViewPie, "value", err)
		}
		next.Value = v
	}
	if u.Group != "" {
		g, err := lib.Group(u.Group)
		if err != nil {
			return p, configErr(ViewPie, "group", err)
		}
		next.Group = g
	}
	if u.TimeGroup != nil {
		next.TimeGroup = *u.TimeGroup
	}
	if err := requireAdditive(ViewPie, next.Value); err != nil {
		return p, err
	}
	return next, nil
}

func (p GeoParams) apply(lib *settings.Library, u GeoUpdate) (GeoParams, error) {
	next := p
	if u.Value != "" {
		v, err := lib.Value(u.Value)
		if err != nil {
			return p, configErr(ViewGeo, "value", err)
		}
		next.Value = v
	}
	if u.TimeGroup != nil {
		next.TimeGroup = *u.TimeGroup
	}
	if err := requireAdditive(ViewGeo, next.Value); err != nil {
		return p, err
	}
	return next, nil
}

// ComputePie sums the value per group over the records matching the time
// group, ordered by the group's comparator.
func ComputePie(acts []activity.Activity, p PieParams) ([]Slice, []DataError) {
	var excluded []DataError
	var out []Slice
	for _, g := range groupbin.GroupBy(matching(acts, p.TimeGroup), p.Group.Fn) {
		s := Slice{
			ID:    g.Key,
			Label: p.Group.Format(g.Key),
			Color: p.Group.Color(g.Key),
			Icon:  p.Group.Icon(g.Key),
		}
		for _, a := range g.Items {
			if v, ok := valueOf(p.Value, a, &excluded); ok {
				s.Value += v
			}
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return p.Group.Less(out[i].ID, out[j].ID) })
	return out, excluded
}

// ComputeGeo sums the value per country over the records matching the time
// group. Records without a country are summed under UnknownCountry.
func ComputeGeo(acts []activity.Activity, p GeoParams) (GeoData, []DataError) {
	var excluded []DataError
	var data GeoData
	for _, g := range groupbin.GroupBy(matching(acts, p.TimeGroup), func(a activity.Activity) string { return a.Country }) {
		c := CountryValue{ID: g.Key}
		for _, a := range g.Items {
			if v, ok := valueOf(p.Value, a, &excluded); ok {
				c.Value += v
			}
		}
		data.Countries = append(data.Countries, c)
	}
	data.Domain = groupbin.ExtentOf(data.Countries, func(c CountryValue) float64 { return c.Value })
	return data, excluded
}

func matching(acts []activity.Activity, tg settings.TimeGroup) []activity.Activity {
	if !tg.SplitsYears() {
		return acts
	}
	out := make([]activity.Activity, 0, len(acts))
	for _, a := range acts {
		if tg.Match(a) {
			out = append(out, a)
		}
	}
	return out
}
