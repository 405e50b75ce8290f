package fit

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
	"github.com/YuminosukeSato/wrcfit/pkg/log"
	"github.com/YuminosukeSato/wrcfit/retention"
)

// DefaultQuantiles are the lower, median and upper envelope levels.
var DefaultQuantiles = []float64{0.05, 0.50, 0.95}

// QuantileSet holds the envelope fits of one sample, sorted by level.
type QuantileSet struct {
	Levels []float64
	Fits   []*Result
	// Loss combines the per-level losses as sqrt(Σ loss²).
	Loss float64
}

// At returns the fit at level q.
func (qs *QuantileSet) At(q float64) (*Result, bool) {
	for i, l := range qs.Levels {
		if l == q {
			return qs.Fits[i], true
		}
	}
	return nil, false
}

// Lower returns the fit at the lowest level.
func (qs *QuantileSet) Lower() *Result {
	return qs.Fits[0]
}

// Upper returns the fit at the highest level.
func (qs *QuantileSet) Upper() *Result {
	return qs.Fits[len(qs.Fits)-1]
}

// FitQuantiles runs one quantile fit per level (DefaultQuantiles when levels
// is empty) on the same sample and model. All levels share one seed, drawn
// once when none is configured. Any WithQuantile option is overridden.
func FitQuantiles(ctx context.Context, s retention.Sample, modelID string, levels []float64, opts ...Option) (qs *QuantileSet, err error) {
	defer errors.Recover(&err, "fit.FitQuantiles")

	if len(levels) == 0 {
		levels = DefaultQuantiles
	}
	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)
	for i, q := range sorted {
		if !(q > 0 && q < 1) {
			return nil, errors.NewValidationError("quantile", "must lie in (0, 1)", q)
		}
		if i > 0 && q == sorted[i-1] {
			return nil, errors.NewValidationError("quantile", "levels must be distinct", q)
		}
	}

	cfg := newConfig(opts)
	if cfg.seed < 0 {
		cfg.seed = rand.Int64()
	}
	logger := cfg.logger.With(log.OperationKey, log.OperationFitQuantiles)

	qs = &QuantileSet{Levels: sorted, Fits: make([]*Result, len(sorted))}
	var sumSq float64
	for i, q := range sorted {
		c := *cfg
		c.quantile = q
		c.hasQuantile = true

		res, err := run(ctx, s, modelID, &c)
		if err != nil {
			return nil, errors.Wrapf(err, "quantile %g", q)
		}
		qs.Fits[i] = res
		sumSq += res.Loss * res.Loss
	}
	qs.Loss = math.Sqrt(sumSq)

	logger.Info("Quantile fits completed",
		log.ModelNameKey, qs.Fits[0].Variant.String(),
		log.LossKey, qs.Loss,
		"fit.levels", sorted,
	)
	return qs, nil
}
