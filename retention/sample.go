package retention

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// Sample is an immutable set of (suction ψ, volumetric water content θ)
// pairs in measurement order.
type Sample struct {
	psi   []float64
	theta []float64
}

// NewSample validates and copies the two series. ψ must be finite and
// non-negative, θ must lie in [0, 1].
func NewSample(psi, theta []float64) (Sample, error) {
	if len(psi) != len(theta) {
		return Sample{}, errors.NewDimensionError("NewSample", len(psi), len(theta))
	}
	if len(psi) == 0 {
		return Sample{}, errors.NewInsufficientDataError("NewSample", errors.ErrEmptyData.Error(), 1, 0)
	}
	for i := range psi {
		if !errors.IsFinite(psi[i]) || psi[i] < 0 {
			return Sample{}, errors.NewValidationError("psi", "suction must be finite and non-negative", psi[i])
		}
		if !errors.IsFinite(theta[i]) || theta[i] < 0 || theta[i] > 1 {
			return Sample{}, errors.NewValidationError("theta", "water content must lie in [0, 1]", theta[i])
		}
	}

	s := Sample{
		psi:   make([]float64, len(psi)),
		theta: make([]float64, len(theta)),
	}
	copy(s.psi, psi)
	copy(s.theta, theta)
	return s, nil
}

// Len returns the number of pairs.
func (s Sample) Len() int {
	return len(s.psi)
}

// Psi returns a copy of the suction series.
func (s Sample) Psi() []float64 {
	return append([]float64(nil), s.psi...)
}

// Theta returns a copy of the water content series.
func (s Sample) Theta() []float64 {
	return append([]float64(nil), s.theta...)
}

// At returns the i-th pair.
func (s Sample) At(i int) (psi, theta float64) {
	return s.psi[i], s.theta[i]
}

// Extremes returns the largest and smallest water content, the empirical
// saturation and residual contents.
func (s Sample) Extremes() (thetaS, thetaR float64) {
	return floats.Max(s.theta), floats.Min(s.theta)
}

// SuctionRange returns the smallest and largest suction.
func (s Sample) SuctionRange() (lo, hi float64) {
	return floats.Min(s.psi), floats.Max(s.psi)
}

// DistinctSuctions counts distinct suction values.
func (s Sample) DistinctSuctions() int {
	seen := make(map[float64]struct{}, len(s.psi))
	for _, v := range s.psi {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// IsConstant reports whether every water content is identical.
func (s Sample) IsConstant() bool {
	ts, tr := s.Extremes()
	return ts == tr
}

// WithoutZeroSuction drops the pairs measured at ψ = 0 and reports how many
// were removed. The receiver is returned unchanged when there are none.
func (s Sample) WithoutZeroSuction() (Sample, int) {
	dropped := 0
	for _, v := range s.psi {
		if v == 0 {
			dropped++
		}
	}
	if dropped == 0 {
		return s, 0
	}

	out := Sample{
		psi:   make([]float64, 0, len(s.psi)-dropped),
		theta: make([]float64, 0, len(s.psi)-dropped),
	}
	for i, v := range s.psi {
		if v != 0 {
			out.psi = append(out.psi, v)
			out.theta = append(out.theta, s.theta[i])
		}
	}
	return out, dropped
}

// nearest returns the index of the water content closest to target. Ties go
// to the first occurrence.
func (s Sample) nearest(target float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, v := range s.theta {
		if d := math.Abs(v - target); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// firstBelow returns the index of the first water content strictly below
// level, or -1.
func (s Sample) firstBelow(level float64) int {
	for i, v := range s.theta {
		if v < level {
			return i
		}
	}
	return -1
}
