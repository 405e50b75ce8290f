// Package search implements the bounded global minimizers used to fit
// retention curves.
//
// Every searcher works inside the unit cube [0, 1]^d. A Space maps that cube
// onto the real parameter box, so bounds never leak into the search logic and
// scale parameters spanning several decades can be explored in log space.
package search

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// Space maps the unit cube onto a bounded parameter domain.
type Space interface {
	// Dim returns the number of coordinates.
	Dim() int
	// Decode writes the parameter vector of the cube point u into dst.
	// Coordinates outside [0, 1] are clipped.
	Decode(dst, u []float64)
	// Encode writes the cube coordinates of the parameter vector x into dst.
	Encode(dst, x []float64)
}

// Objective is the function being minimized. The slice passed in is reused
// between calls and must not be retained.
type Objective func(x []float64) float64

// Searcher minimizes an objective over a Space starting from x0, a point of
// the parameter domain.
type Searcher interface {
	Minimize(ctx context.Context, f Objective, space Space, x0 []float64) (*Result, error)
}

// Result is the best point found by a search.
type Result struct {
	// X is the best parameter vector, always inside the Space.
	X []float64
	// F is the objective value at X.
	F float64
	// Iterations counts outer iterations (temperature steps or generations).
	Iterations int
	// Evaluations counts objective calls, local refinement included.
	Evaluations int
	// Converged is false when the search stopped on its iteration limit
	// before meeting its convergence criterion.
	Converged bool
	// Status is a short human-readable stop reason.
	Status string
}

// maxLoss replaces non-finite objective values inside the search so that
// orderings and differences stay defined.
const maxLoss = math.MaxFloat64

// newSource returns src, or a randomly seeded PCG source when src is nil.
func newSource(src rand.Source) rand.Source {
	if src != nil {
		return src
	}
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

// cube adapts an Objective on the parameter domain to the unit cube. Points
// outside the cube are evaluated at their projection plus a quadratic
// penalty on the distance, which pulls unconstrained methods back inside.
type cube struct {
	f       Objective
	space   Space
	clipped []float64
	x       []float64
	evals   int
}

func newCube(f Objective, space Space) *cube {
	d := space.Dim()
	return &cube{
		f:       f,
		space:   space,
		clipped: make([]float64, d),
		x:       make([]float64, d),
	}
}

func (c *cube) eval(u []float64) float64 {
	var penalty float64
	for i, v := range u {
		cl := errors.ClipValue(v, 0, 1)
		penalty += (v - cl) * (v - cl)
		c.clipped[i] = cl
	}
	c.space.Decode(c.x, c.clipped)
	c.evals++

	y := c.f(c.x)
	if !errors.IsFinite(y) {
		return maxLoss
	}
	return y + penalty
}

// decode returns a fresh parameter vector for the cube point u.
func (c *cube) decode(u []float64) []float64 {
	clipped := make([]float64, len(u))
	for i, v := range u {
		clipped[i] = errors.ClipValue(v, 0, 1)
	}
	x := make([]float64, len(u))
	c.space.Decode(x, clipped)
	return x
}

// start encodes x0, falling back to the cube centre when x0 is nil.
func (c *cube) start(x0 []float64) ([]float64, error) {
	d := c.space.Dim()
	u := make([]float64, d)
	if x0 == nil {
		for i := range u {
			u[i] = 0.5
		}
		return u, nil
	}
	if len(x0) != d {
		return nil, errors.NewDimensionError("search.Minimize", d, len(x0))
	}
	c.space.Encode(u, x0)
	return u, nil
}

// finish builds a Result from the best cube point.
func (c *cube) finish(u []float64, iterations int, converged bool, status string) *Result {
	x := c.decode(u)
	return &Result{
		X:           x,
		F:           c.f(x),
		Iterations:  iterations,
		Evaluations: c.evals,
		Converged:   converged,
		Status:      status,
	}
}
