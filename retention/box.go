package retention

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// Interval is the search range of one parameter. Log intervals are explored
// uniformly in log space and need 0 < Lo.
type Interval struct {
	Lo, Hi float64
	Log    bool
}

func linearInterval(lo, hi float64) Interval {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Interval{Lo: lo, Hi: hi}
}

func logInterval(lo, hi float64) Interval {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo <= 0 {
		return Interval{Lo: lo, Hi: hi}
	}
	return Interval{Lo: lo, Hi: hi, Log: true}
}

// contentInterval keeps a saturation or residual content within ±tol of its
// seed, capped at the physical ceiling of 1.
func contentInterval(v, tol float64) Interval {
	return linearInterval(v*(1-tol), math.Min(v*(1+tol), 1))
}

// Width returns Hi - Lo.
func (iv Interval) Width() float64 {
	return iv.Hi - iv.Lo
}

// Contains reports whether Lo ≤ v ≤ Hi.
func (iv Interval) Contains(v float64) bool {
	return v >= iv.Lo && v <= iv.Hi
}

func (iv Interval) decode(u float64) float64 {
	u = errors.ClipValue(u, 0, 1)
	var x float64
	switch {
	case iv.Width() == 0:
		return iv.Lo
	case iv.Log:
		x = iv.Lo * math.Pow(iv.Hi/iv.Lo, u)
	default:
		x = iv.Lo + u*iv.Width()
	}
	return errors.ClipValue(x, iv.Lo, iv.Hi)
}

func (iv Interval) encode(x float64) float64 {
	x = errors.ClipValue(x, iv.Lo, iv.Hi)
	switch {
	case iv.Width() == 0:
		return 0
	case iv.Log:
		return math.Log(x/iv.Lo) / math.Log(iv.Hi/iv.Lo)
	default:
		return (x - iv.Lo) / iv.Width()
	}
}

// Box is the SearchBox of a fit: one interval per parameter.
type Box [NumParams]Interval

// Dim returns NumParams.
func (b Box) Dim() int {
	return NumParams
}

// Decode maps a point of the unit cube onto the box. Coordinates outside
// [0, 1] are clipped, so the result always lies inside the box.
func (b Box) Decode(dst, u []float64) {
	for i := range b {
		dst[i] = b[i].decode(u[i])
	}
}

// Encode maps a parameter vector into the unit cube, clipping it to the box
// first.
func (b Box) Encode(dst, x []float64) {
	for i := range b {
		dst[i] = b[i].encode(x[i])
	}
}

// Contains reports whether every parameter lies inside its interval.
func (b Box) Contains(p Params) bool {
	for i := range b {
		if !b[i].Contains(p[i]) {
			return false
		}
	}
	return true
}

// Clip returns p with every parameter clipped to its interval.
func (b Box) Clip(p Params) Params {
	for i := range b {
		p[i] = errors.ClipValue(p[i], b[i].Lo, b[i].Hi)
	}
	return p
}

// Lower returns the lower bounds.
func (b Box) Lower() Params {
	var p Params
	for i := range b {
		p[i] = b[i].Lo
	}
	return p
}

// Upper returns the upper bounds.
func (b Box) Upper() Params {
	var p Params
	for i := range b {
		p[i] = b[i].Hi
	}
	return p
}

func (b Box) String() string {
	s := "["
	for i, iv := range b {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("(%g, %g)", iv.Lo, iv.Hi)
	}
	return s + "]"
}
