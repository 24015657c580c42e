package stats

import (
	"github.com/sadopc/actistats/internal/activity"
	"github.com/sadopc/actistats/internal/groupbin"
	"github.com/sadopc/actistats/internal/settings"
)

// ScatterParams is the accessor bundle of the scatter projection.
type ScatterParams struct {
	X     settings.Value
	Y     settings.Value
	Size  settings.Value
	Group settings.Group
}

// ScatterUpdate is a partial update of the scatter view.
type ScatterUpdate struct {
	X     string
	Y     string
	Size  string
	Group string
}

// ScatterData holds the extents of each projected value.
type ScatterData struct {
	X, Y, Size groupbin.Extent
}

func (p ScatterParams) apply(lib *settings.Library, u ScatterUpdate) (ScatterParams, error) {
	next := p
	for _, f := range []struct {
		name string
		key  string
		dst  *settings.Value
	}{
		{"x", u.X, &next.X},
		{"y", u.Y, &next.Y},
		{"size", u.Size, &next.Size},
	} {
		if f.key == "" {
			continue
		}
		v, err := lib.Value(f.key)
		if err != nil {
			return p, configErr(ViewScatter, f.name, err)
		}
		*f.dst = v
	}
	if u.Group != "" {
		g, err := lib.Group(u.Group)
		if err != nil {
			return p, configErr(ViewScatter, "group", err)
		}
		next.Group = g
	}
	return next, nil
}

// ComputeScatter returns the extents of the projected values.
func ComputeScatter(acts []activity.Activity, p ScatterParams) ScatterData {
	return ScatterData{
		X:    groupbin.ExtentOf(acts, p.X.Fn),
		Y:    groupbin.ExtentOf(acts, p.Y.Fn),
		Size: groupbin.ExtentOf(acts, p.Size.Fn),
	}
}
