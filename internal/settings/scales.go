package settings

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/scale"
)

// ScaleKind selects how a violin axis maps values.
type ScaleKind int

const (
	ScaleLinear ScaleKind = iota
	ScaleLog
	ScaleSqrt
)

// Scale is a named axis transform.
type Scale struct {
	Key   string
	Label string
	Kind  ScaleKind
}

// Axis maps a value domain onto [0, 1] and back.
type Axis interface {
	Map(x float64) float64
	Unmap(y float64) float64
}

// Axis builds the transform over [min, max]. It fails for an empty or
// inverted domain and for domains the transform cannot represent.
func (s Scale) Axis(min, max float64) (Axis, error) {
	if math.IsNaN(min) || math.IsNaN(max) || !(max > min) {
		return nil, fmt.Errorf("%s scale: empty domain [%g, %g]", s.Key, min, max)
	}
	switch s.Kind {
	case ScaleLog:
		if min <= 0 {
			return nil, fmt.Errorf("%s scale: domain must be positive, got [%g, %g]", s.Key, min, max)
		}
		l, err := scale.NewLog(min, max, 10)
		if err != nil {
			return nil, fmt.Errorf("%s scale: %w", s.Key, err)
		}
		return l, nil
	case ScaleSqrt:
		if min < 0 {
			return nil, fmt.Errorf("%s scale: domain must be non-negative, got [%g, %g]", s.Key, min, max)
		}
		return sqrtAxis{lo: math.Sqrt(min), hi: math.Sqrt(max)}, nil
	}
	return scale.Linear{Min: min, Max: max}, nil
}

// RequiresPositive reports whether the lower bound must be strictly positive.
func (s Scale) RequiresPositive() bool { return s.Kind == ScaleLog }

type sqrtAxis struct{ lo, hi float64 }

func (a sqrtAxis) Map(x float64) float64 { return (math.Sqrt(x) - a.lo) / (a.hi - a.lo) }

func (a sqrtAxis) Unmap(y float64) float64 {
	r := a.lo + y*(a.hi-a.lo)
	return r * r
}

func defaultScales() *registry[Scale] {
	r := newRegistry[Scale]("scale")
	r.add("linear", Scale{Key: "linear", Label: "Linear", Kind: ScaleLinear})
	r.add("log", Scale{Key: "log", Label: "Log", Kind: ScaleLog})
	r.add("sqrt", Scale{Key: "sqrt", Label: "Square root", Kind: ScaleSqrt})
	return r
}
