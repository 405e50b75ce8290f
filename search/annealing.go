package search

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// Annealing のデフォルト値
const (
	DefaultAnnealingIter    = 1000
	DefaultInitialTemp      = 5230.0
	DefaultRestartTempRatio = 2e-5
	DefaultVisit            = 2.62
	DefaultAccept           = -5.0
	DefaultAnnealingStall   = 50

	stallAbsolute  = 1e-14
	stallRelative  = 1e-12
	tailLimit      = 1e8
	minVisitBound  = 1e-10
	notImprovedCap = 1000
)

// Annealing is a generalized simulated annealing searcher: a Tsallis-Stariolo
// visiting distribution with a temperature schedule that restarts from a
// random point once it has cooled down, and a Nelder-Mead refinement of each
// new global best.
//
// The zero value is ready to use.
type Annealing struct {
	// MaxIter is the number of temperature steps. Each step runs a Markov
	// chain of 2·d visits.
	MaxIter int
	// InitialTemp is the starting temperature.
	InitialTemp float64
	// RestartTempRatio triggers a reannealing when the temperature falls
	// below InitialTemp·RestartTempRatio.
	RestartTempRatio float64
	// Visit is the visiting parameter qv, in (1, 3).
	Visit float64
	// Accept is the acceptance parameter qa, in (-1e4, -5].
	Accept float64
	// NoLocalSearch disables the Nelder-Mead refinement.
	NoLocalSearch bool
	// LocalEvals caps the objective calls of one refinement.
	LocalEvals int
	// Stall is the number of trailing temperature steps without an
	// improvement of the best value after which the search counts as
	// converged. It is capped at half of MaxIter. The schedule always runs to
	// MaxIter.
	Stall int
	// Src seeds the search. A nil Src draws a random seed.
	Src rand.Source
}

func (a *Annealing) withDefaults() Annealing {
	cfg := *a
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = DefaultAnnealingIter
	}
	if cfg.InitialTemp <= 0 {
		cfg.InitialTemp = DefaultInitialTemp
	}
	if cfg.RestartTempRatio <= 0 || cfg.RestartTempRatio >= 1 {
		cfg.RestartTempRatio = DefaultRestartTempRatio
	}
	if cfg.Visit <= 1 || cfg.Visit >= 3 {
		cfg.Visit = DefaultVisit
	}
	if cfg.Accept >= 0 || cfg.Accept < -1e4 {
		cfg.Accept = DefaultAccept
	}
	if cfg.Stall <= 0 {
		cfg.Stall = DefaultAnnealingStall
	}
	if half := cfg.MaxIter / 2; cfg.Stall > half {
		cfg.Stall = max(half, 1)
	}
	return cfg
}

// visitor draws steps from the distorted Cauchy-Lorentz visiting
// distribution of generalized simulated annealing.
type visitor struct {
	qv       float64
	factor4p float64
	factor6  float64
	normal   distuv.Normal
	unit     distuv.Uniform
}

func newVisitor(qv float64, src rand.Source) *visitor {
	f2 := math.Exp((4 - qv) * math.Log(qv-1))
	f3 := math.Exp((2 - qv) * math.Log(2) / (qv - 1))
	f5 := 1/(qv-1) - 0.5
	lg, _ := math.Lgamma(2 - f5)
	return &visitor{
		qv:       qv,
		factor4p: math.Sqrt(math.Pi) * f2 / (f3 * (3 - qv)),
		factor6:  math.Pi * (1 - f5) / math.Sin(math.Pi*(1-f5)) / math.Exp(lg),
		normal:   distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		unit:     distuv.Uniform{Min: 0, Max: 1, Src: src},
	}
}

// step draws one coordinate displacement at the given temperature.
func (v *visitor) step(temp float64) float64 {
	x, y := v.normal.Rand(), v.normal.Rand()
	factor4 := v.factor4p * math.Exp(math.Log(temp)/(v.qv-1))
	x *= math.Exp(-(v.qv - 1) * math.Log(v.factor6/factor4) / (3 - v.qv))
	den := math.Exp((v.qv - 1) * math.Log(math.Abs(y)) / (3 - v.qv))

	s := x / den
	switch {
	case math.IsNaN(s):
		return 0
	case s > tailLimit:
		return tailLimit * v.unit.Rand()
	case s < -tailLimit:
		return -tailLimit * v.unit.Rand()
	}
	return s
}

// wrap folds a visited coordinate back into [0, 1).
func wrap(v float64) float64 {
	w := math.Mod(math.Mod(v, 1)+1, 1)
	if w < minVisitBound {
		w += minVisitBound
	}
	return w
}

// visit returns a new candidate. The first d steps of a chain move every
// coordinate, the next d move one coordinate each.
func (v *visitor) visit(cur []float64, j int, temp float64) []float64 {
	next := make([]float64, len(cur))
	copy(next, cur)
	d := len(cur)
	if j < d {
		for i := range next {
			next[i] = wrap(next[i] + v.step(temp))
		}
		return next
	}
	k := j - d
	next[k] = wrap(next[k] + v.step(temp))
	return next
}

// Minimize runs the annealing schedule from x0. On cancellation it returns
// the best point so far together with the context error.
func (a *Annealing) Minimize(ctx context.Context, f Objective, space Space, x0 []float64) (*Result, error) {
	cfg := a.withDefaults()
	c := newCube(f, space)
	u, err := c.start(x0)
	if err != nil {
		return nil, err
	}

	d := space.Dim()
	src := newSource(cfg.Src)
	vis := newVisitor(cfg.Visit, src)
	localEvals := cfg.LocalEvals
	if localEvals <= 0 {
		localEvals = 100 * d
	}

	cur, curE := u, c.eval(u)
	best, bestE := clone(cur), curE
	xmin, emin := clone(cur), curE
	notImproved, notImprovedMax := 0, notImprovedCap

	qv, qa := cfg.Visit, cfg.Accept
	t1 := math.Exp((qv-1)*math.Log(2)) - 1
	restartTemp := cfg.InitialTemp * cfg.RestartTempRatio

	// lastBest is the best value at the last improvement, reached after
	// lastImproved completed temperature steps.
	lastBest, lastImproved := bestE, 0

	iter := 0
	for iter < cfg.MaxIter {
		for i := 0; iter < cfg.MaxIter; i++ {
			if err := ctx.Err(); err != nil {
				return c.finish(best, iter, false, "cancelled"), errors.Wrap(err, "annealing")
			}

			t2 := math.Exp((qv-1)*math.Log(float64(i)+2)) - 1
			temp := cfg.InitialTemp * t1 / t2
			if temp < restartTemp {
				cur = make([]float64, d)
				for k := range cur {
					cur[k] = vis.unit.Rand()
				}
				curE = c.eval(cur)
				if curE < bestE {
					best, bestE = clone(cur), curE
				}
				break
			}

			// Markov chain at this temperature.
			tempStep := temp / float64(i+1)
			notImproved++
			improved := i == 0
			for j := 0; j < 2*d; j++ {
				next := vis.visit(cur, j, temp)
				e := c.eval(next)
				if e < curE {
					cur, curE = next, e
					if e < bestE {
						best, bestE = clone(next), e
						improved = true
						notImproved = 0
					}
					continue
				}

				pqv := 0.0
				if p := 1 - (1-qa)*(e-curE)/tempStep; p > 0 {
					pqv = math.Exp(math.Log(p) / (1 - qa))
				}
				if vis.unit.Rand() <= pqv {
					cur, curE = next, e
					xmin, emin = clone(cur), curE
				}
				if notImproved >= notImprovedMax && (j == 0 || curE < emin) {
					xmin, emin = clone(cur), curE
				}
			}

			if !cfg.NoLocalSearch {
				if improved {
					x, e := polish(ctx, c, best, bestE, localEvals)
					if e < bestE {
						notImproved = 0
						best, bestE = x, e
						cur, curE = clone(x), e
					}
				}
				if notImproved >= notImprovedMax {
					xmin, emin = polish(ctx, c, xmin, emin, localEvals)
					notImproved = 0
					notImprovedMax = d
					if emin < bestE {
						best, bestE = clone(xmin), emin
						cur, curE = clone(xmin), emin
					}
				}
			}
			iter++
			if improvedOn(lastBest, bestE) {
				lastBest, lastImproved = bestE, iter
			}
		}
	}

	if iter-lastImproved >= cfg.Stall {
		return c.finish(best, iter, true, "best value stalled"), nil
	}
	return c.finish(best, iter, false, "maximum number of iterations reached"), nil
}

// improvedOn reports whether next improves on prev by more than the
// tolerance of the evolutionary search's convergence test.
func improvedOn(prev, next float64) bool {
	return prev-next > stallAbsolute+stallRelative*math.Abs(prev)
}

func clone(u []float64) []float64 {
	out := make([]float64, len(u))
	copy(out, u)
	return out
}
