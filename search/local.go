package search

import (
	"context"

	"gonum.org/v1/gonum/optimize"
)

// contextStatus stops a gonum run once ctx is done.
func contextStatus(ctx context.Context) func() (optimize.Status, error) {
	return func() (optimize.Status, error) {
		if err := ctx.Err(); err != nil {
			return optimize.Failure, err
		}
		return optimize.NotTerminated, nil
	}
}

// polish refines u with a bounded Nelder-Mead run inside the cube and
// returns the better of u and the refined point.
func polish(ctx context.Context, c *cube, u []float64, fu float64, maxEvals int) ([]float64, float64) {
	prob := optimize.Problem{
		Func:   c.eval,
		Status: contextStatus(ctx),
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Relative:   1e-12,
			Iterations: 50,
		},
	}

	res, err := optimize.Minimize(prob, u, settings, &optimize.NelderMead{})
	if err != nil || res == nil || res.F >= fu {
		return u, fu
	}
	// Nelder-Mead may end just outside the cube; the penalty keeps F honest
	// there, so project and re-score.
	x := make([]float64, len(res.X))
	copy(x, res.X)
	f := c.eval(clipUnit(x))
	if f >= fu {
		return u, fu
	}
	return x, f
}

func clipUnit(u []float64) []float64 {
	for i, v := range u {
		switch {
		case v < 0:
			u[i] = 0
		case v > 1:
			u[i] = 1
		}
	}
	return u
}
