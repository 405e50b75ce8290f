package search

import (
	"context"
	"math/rand/v2"

	"gonum.org/v1/gonum/optimize"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// Evolution のデフォルト値
const (
	DefaultPopulation    = 24
	DefaultEvolutionIter = 1000
	DefaultStepSize      = 0.3
	DefaultStall         = 100
)

// Evolution is a population-based searcher built on CMA-ES. Each generation
// samples Population candidates around the current mean, so non-smooth
// objectives such as the pinball loss are handled without gradients.
//
// The zero value is ready to use.
type Evolution struct {
	// Population is the number of candidates per generation.
	Population int
	// MaxIter caps the number of generations.
	MaxIter int
	// StepSize is the initial spread in unit-cube coordinates.
	StepSize float64
	// Stall stops the search after that many generations without an
	// improvement of the best value.
	Stall int
	// Src seeds the search. A nil Src draws a random seed.
	Src rand.Source
}

func (e *Evolution) withDefaults() Evolution {
	cfg := *e
	if cfg.Population <= 0 {
		cfg.Population = DefaultPopulation
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = DefaultEvolutionIter
	}
	if cfg.StepSize <= 0 {
		cfg.StepSize = DefaultStepSize
	}
	if cfg.Stall <= 0 {
		cfg.Stall = DefaultStall
	}
	return cfg
}

// Minimize runs generations until the best value stalls, the covariance
// collapses or MaxIter is reached. Hitting MaxIter is reported through
// Result.Converged, not as an error.
func (e *Evolution) Minimize(ctx context.Context, f Objective, space Space, x0 []float64) (*Result, error) {
	cfg := e.withDefaults()
	c := newCube(f, space)
	u, err := c.start(x0)
	if err != nil {
		return nil, err
	}
	bestU, bestF := clone(u), c.eval(u)

	prob := optimize.Problem{
		Func:   c.eval,
		Status: contextStatus(ctx),
	}
	settings := &optimize.Settings{
		MajorIterations: cfg.MaxIter,
		Concurrent:      1,
		Converger: &optimize.FunctionConverge{
			Absolute:   stallAbsolute,
			Relative:   stallRelative,
			Iterations: cfg.Stall,
		},
	}
	method := &optimize.CmaEsChol{
		Population:   cfg.Population,
		InitStepSize: cfg.StepSize,
		Src:          newSource(cfg.Src),
	}

	res, err := optimize.Minimize(prob, u, settings, method)
	if res == nil {
		if err == nil {
			err = errors.New("evolution returned no result")
		}
		return c.finish(bestU, 0, false, "failed"), errors.Wrap(err, "evolution")
	}
	if res.X != nil && res.F < bestF {
		bestU = clone(res.X)
	}

	out := c.finish(bestU, res.MajorIterations, converged(res.Status), res.Status.String())
	if err != nil {
		return out, errors.Wrap(err, "evolution")
	}
	return out, nil
}

func converged(s optimize.Status) bool {
	switch s {
	case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge,
		optimize.FunctionThreshold, optimize.StepConvergence:
		return true
	}
	return false
}
