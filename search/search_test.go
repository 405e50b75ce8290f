package search

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// linearSpace maps the unit cube linearly onto [lo_i, hi_i].
type linearSpace struct {
	lo, hi []float64
}

func (s linearSpace) Dim() int { return len(s.lo) }

func (s linearSpace) Decode(dst, u []float64) {
	for i := range s.lo {
		v := errors.ClipValue(u[i], 0, 1)
		dst[i] = s.lo[i] + v*(s.hi[i]-s.lo[i])
	}
}

func (s linearSpace) Encode(dst, x []float64) {
	for i := range s.lo {
		dst[i] = (errors.ClipValue(x[i], s.lo[i], s.hi[i]) - s.lo[i]) / (s.hi[i] - s.lo[i])
	}
}

func (s linearSpace) contains(x []float64) bool {
	for i := range x {
		if x[i] < s.lo[i] || x[i] > s.hi[i] {
			return false
		}
	}
	return true
}

func quadratic(target []float64) Objective {
	return func(x []float64) float64 {
		var sum float64
		for i := range x {
			d := x[i] - target[i]
			sum += d * d
		}
		return sum
	}
}

func searchers(seed uint64) map[string]Searcher {
	return map[string]Searcher{
		"annealing": &Annealing{MaxIter: 200, Src: rand.NewPCG(seed, seed+1)},
		"evolution": &Evolution{MaxIter: 300, Src: rand.NewPCG(seed, seed+1)},
	}
}

func TestSearchersFindQuadraticMinimum(t *testing.T) {
	space := linearSpace{lo: []float64{-2, 0, 10}, hi: []float64{2, 1, 100}}
	target := []float64{0.7, 0.25, 42}

	for name, s := range searchers(7) {
		t.Run(name, func(t *testing.T) {
			res, err := s.Minimize(context.Background(), quadratic(target), space, []float64{-1.5, 0.9, 90})
			require.NoError(t, err)

			assert.True(t, space.contains(res.X), "X=%v", res.X)
			assert.InDelta(t, 0, res.F, 1e-4)
			assert.InDelta(t, 0.7, res.X[0], 1e-2)
			assert.InDelta(t, 0.25, res.X[1], 1e-2)
			assert.InDelta(t, 42, res.X[2], 1e-2)
			assert.Greater(t, res.Evaluations, 0)
			assert.Greater(t, res.Iterations, 0)
			assert.NotEmpty(t, res.Status)
		})
	}
}

func TestSearchersStayInsideBoxWhenOptimumIsOutside(t *testing.T) {
	space := linearSpace{lo: []float64{0, 0}, hi: []float64{1, 1}}
	target := []float64{3, -2}

	for name, s := range searchers(11) {
		t.Run(name, func(t *testing.T) {
			res, err := s.Minimize(context.Background(), quadratic(target), space, nil)
			require.NoError(t, err)

			assert.True(t, space.contains(res.X), "X=%v", res.X)
			assert.InDelta(t, 1, res.X[0], 1e-3)
			assert.InDelta(t, 0, res.X[1], 1e-3)
			assert.InDelta(t, quadratic(target)(res.X), res.F, 1e-12)
		})
	}
}

func TestEvolutionHandlesNonSmoothObjective(t *testing.T) {
	space := linearSpace{lo: []float64{0, 0}, hi: []float64{1, 1}}
	f := func(x []float64) float64 {
		return math.Abs(x[0]-0.3) + 2*math.Abs(x[1]-0.6)
	}

	s := &Evolution{Src: rand.NewPCG(3, 4)}
	res, err := s.Minimize(context.Background(), f, space, []float64{0.9, 0.1})
	require.NoError(t, err)
	assert.InDelta(t, 0.3, res.X[0], 1e-3)
	assert.InDelta(t, 0.6, res.X[1], 1e-3)
}

func TestAnnealingIsReproducibleForSeed(t *testing.T) {
	space := linearSpace{lo: []float64{-5, -5}, hi: []float64{5, 5}}
	// Rastrigin: many local minima, global minimum at the origin.
	f := func(x []float64) float64 {
		sum := 20.0
		for _, v := range x {
			sum += v*v - 10*math.Cos(2*math.Pi*v)
		}
		return sum
	}

	run := func() *Result {
		s := &Annealing{MaxIter: 100, Src: rand.NewPCG(42, 43)}
		res, err := s.Minimize(context.Background(), f, space, []float64{4, -4})
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.X, b.X)
	assert.Equal(t, a.F, b.F)
	assert.Equal(t, a.Evaluations, b.Evaluations)
	assert.Less(t, a.F, f([]float64{4, -4}))
}

func TestSearchersRejectWrongStartDimension(t *testing.T) {
	space := linearSpace{lo: []float64{0, 0}, hi: []float64{1, 1}}

	for name, s := range searchers(1) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Minimize(context.Background(), quadratic([]float64{0, 0}), space, []float64{0.5})
			var dimErr *errors.DimensionError
			require.True(t, errors.As(err, &dimErr), "err=%v", err)
			assert.Equal(t, 2, dimErr.Expected)
		})
	}
}

func TestSearchersStopOnCancelledContext(t *testing.T) {
	space := linearSpace{lo: []float64{0, 0}, hi: []float64{1, 1}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, s := range searchers(5) {
		t.Run(name, func(t *testing.T) {
			res, err := s.Minimize(ctx, quadratic([]float64{0.2, 0.2}), space, []float64{0.5, 0.5})
			require.Error(t, err)
			assert.True(t, errors.Is(err, context.Canceled), "err=%v", err)
			require.NotNil(t, res)
			assert.False(t, res.Converged)
			assert.True(t, space.contains(res.X))
		})
	}
}

func TestSearchersSurviveNonFiniteObjective(t *testing.T) {
	space := linearSpace{lo: []float64{0, 0}, hi: []float64{1, 1}}
	f := func(x []float64) float64 {
		if x[0] < 0.5 {
			return math.NaN()
		}
		return x[1]
	}

	for name, s := range searchers(9) {
		t.Run(name, func(t *testing.T) {
			res, err := s.Minimize(context.Background(), f, space, []float64{0.2, 0.8})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.X[0], 0.5)
			assert.InDelta(t, 0, res.F, 1e-3)
		})
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.25, 0.25},
		{1.25, 0.25},
		{-0.25, 0.75},
		{-3.5, 0.5},
		{0, minVisitBound},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, wrap(tt.in), 1e-12, "wrap(%v)", tt.in)
	}
}

func TestVisitorStepsAreFiniteAndShrinkWhenCooling(t *testing.T) {
	vis := newVisitor(DefaultVisit, rand.NewPCG(1, 1))

	spread := func(temp float64) float64 {
		var sum float64
		const n = 2000
		for i := 0; i < n; i++ {
			s := vis.step(temp)
			require.False(t, math.IsNaN(s) || math.IsInf(s, 0))
			sum += math.Min(math.Abs(s), 1)
		}
		return sum / n
	}

	assert.Greater(t, spread(DefaultInitialTemp), spread(1e-3))
}

func TestAnnealingConvergenceFollowsStall(t *testing.T) {
	space := linearSpace{lo: []float64{0, 0}, hi: []float64{1, 1}}

	t.Run("stalled best value", func(t *testing.T) {
		s := &Annealing{MaxIter: 200, Src: rand.NewPCG(8, 9)}
		res, err := s.Minimize(context.Background(), quadratic([]float64{0.4, 0.6}), space, nil)
		require.NoError(t, err)
		assert.True(t, res.Converged)
		assert.Equal(t, "best value stalled", res.Status)
		assert.Equal(t, 200, res.Iterations)
	})

	t.Run("still improving", func(t *testing.T) {
		calls := 0
		// Every call returns a new best, so the best value never settles.
		f := func([]float64) float64 {
			calls++
			return -float64(calls)
		}
		s := &Annealing{MaxIter: 20, NoLocalSearch: true, Src: rand.NewPCG(8, 9)}
		res, err := s.Minimize(context.Background(), f, space, nil)
		require.NoError(t, err)
		assert.False(t, res.Converged)
		assert.Equal(t, "maximum number of iterations reached", res.Status)
	})
}

func TestImprovedOn(t *testing.T) {
	tests := []struct {
		prev, next float64
		want       bool
	}{
		{1, 0.5, true},
		{1, 1, false},
		{1, 1 - 1e-13, false},
		{0, -1e-10, true},
		{0, -1e-15, false},
		{-5, -6, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, improvedOn(tt.prev, tt.next), "improvedOn(%v, %v)", tt.prev, tt.next)
	}
}
