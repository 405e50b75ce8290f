// Package fit calibrates retention curve models against measured samples.
//
// Fit resolves the model family, derives a seed and a search box from the
// shape of the data, and minimizes the calibration loss with a bounded
// global search:
//
//	res, err := fit.Fit(ctx, sample, "VanGenuchten", fit.WithSeed(1))
//	if err != nil {
//	    return err
//	}
//	theta := res.Evaluate([]float64{1, 10, 100})
//
// Point calibration minimizes the mean squared error with simulated
// annealing. WithQuantile switches to the pinball loss at the given level,
// minimized with an evolutionary search; FitQuantiles runs the usual
// 5/50/95% envelope in one call.
package fit

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/wrcfit/metrics"
	"github.com/YuminosukeSato/wrcfit/pkg/errors"
	"github.com/YuminosukeSato/wrcfit/pkg/log"
	"github.com/YuminosukeSato/wrcfit/retention"
	"github.com/YuminosukeSato/wrcfit/search"
)

// Search algorithm names reported in logs and errors.
const (
	AlgorithmAnnealing = "annealing"
	AlgorithmEvolution = "evolution"
)

// pcgStream is the second PCG word; the user seed is the first.
const pcgStream = 0x9e3779b97f4a7c15

// Result is the outcome of one calibration.
type Result struct {
	Variant retention.Variant
	Params  retention.Params

	// Loss is the objective at Params: MSE for point fits, mean pinball
	// loss for quantile fits.
	Loss      float64
	Converged bool

	// Mode is log.ModePoint or log.ModeQuantile.
	Mode     string
	Quantile float64

	// Goodness of fit of Params on the fitted sample.
	RMSE float64
	R2   float64

	Samples     int
	Dropped     int
	Iterations  int
	Evaluations int
	Seed        int64
	Duration    time.Duration
}

// Curve returns the fitted curve as a value object.
func (r *Result) Curve() retention.Curve {
	return retention.Curve{Variant: r.Variant, Params: r.Params}
}

// Evaluate returns the fitted water content at every suction of psi.
func (r *Result) Evaluate(psi []float64) []float64 {
	return r.Curve().EvalAll(psi)
}

// Named pairs the fitted parameters with their names.
func (r *Result) Named() []retention.NamedParam {
	return r.Curve().Named()
}

// CurveEvaluator resolves modelID and returns its evaluation function, for
// callers that already hold a parameter vector.
func CurveEvaluator(modelID string) (retention.Evaluator, error) {
	m, err := retention.Lookup(modelID)
	if err != nil {
		return nil, err
	}
	return m.Evaluator(), nil
}

// Fit calibrates the model named modelID against s.
//
// Samples at zero suction are excluded first. The remaining sample must hold
// at least as many pairs as the model has parameters and at least two
// distinct suctions. When the context is cancelled the search stops between
// iterations and Fit returns the wrapped context error.
func Fit(ctx context.Context, s retention.Sample, modelID string, opts ...Option) (res *Result, err error) {
	defer errors.Recover(&err, "fit.Fit")
	return run(ctx, s, modelID, newConfig(opts))
}

func run(ctx context.Context, s retention.Sample, modelID string, cfg *config) (*Result, error) {
	start := time.Now()

	model, err := retention.Lookup(modelID)
	if err != nil {
		return nil, err
	}

	mode := log.ModePoint
	if cfg.hasQuantile {
		if !(cfg.quantile > 0 && cfg.quantile < 1) {
			return nil, errors.NewValidationError("quantile", "must lie in (0, 1)", cfg.quantile)
		}
		mode = log.ModeQuantile
	}

	logger := cfg.logger.With(
		log.ModelNameKey, model.Name(),
		log.OperationKey, log.OperationFit,
		log.ModeKey, mode,
	)
	if cfg.hasQuantile {
		logger = logger.With(log.QuantileKey, cfg.quantile)
	}

	data, dropped := s.WithoutZeroSuction()
	if dropped > 0 {
		logger.Info("Excluded zero-suction samples", log.DroppedKey, dropped)
	}
	if data.Len() < retention.NumParams {
		return nil, errors.NewInsufficientDataError("fit.Fit", "fewer samples than model parameters",
			retention.NumParams, data.Len())
	}
	if n := data.DistinctSuctions(); n < 2 {
		return nil, errors.NewInsufficientDataError("fit.Fit", "fewer than 2 distinct suction values", 2, n)
	}

	seed := cfg.seed
	if seed < 0 {
		seed = rand.Int64()
	}

	guess := model.InitialGuess(data)
	box := model.Bounds(data, guess, cfg.tolerance)
	x0 := model.Constrain(box.Clip(guess))
	obj := newObjective(model, data, cfg)

	logger.Debug("Fit started",
		log.SamplesKey, data.Len(),
		log.ParamsKey, x0.Slice(),
		log.RandomSeedKey, seed,
		"search.box", box.String(),
	)

	res := &Result{
		Variant:  model.Variant,
		Mode:     mode,
		Quantile: cfg.quantile,
		Samples:  data.Len(),
		Dropped:  dropped,
		Seed:     seed,
	}

	if obj.loss(x0) == 0 {
		// The seed already reproduces the data, e.g. a constant sample.
		res.Params = x0
		res.Converged = true
		res.R2 = 1
		res.Duration = time.Since(start)
		logger.Info("Fit completed", log.LossKey, 0.0, log.IterationKey, 0)
		return res, nil
	}

	searcher, alg := cfg.searcher(seed)
	sr, err := searcher.Minimize(ctx, obj.fn(), box, x0.Slice())
	if err != nil {
		logger.Error("Search failed", err, log.AlgorithmKey, alg)
		return nil, errors.Wrapf(err, "fit %s", model.Name())
	}

	params := model.Constrain(retention.ParamsFromSlice(sr.X))
	if !errors.IsFinite(sr.F) {
		return nil, errors.NewNonConvergenceError(alg, "non-finite loss", params.Slice(), sr.F)
	}
	if !box.Contains(params) {
		return nil, errors.NewNonConvergenceError(alg, "result outside the search box", params.Slice(), sr.F)
	}
	if !sr.Converged {
		errors.Warn(errors.NewConvergenceWarning(alg, sr.Iterations,
			"iteration budget exhausted before the loss settled; returning the best candidate"))
	}

	res.Params = params
	res.Loss = sr.F
	res.Converged = sr.Converged
	res.Iterations = sr.Iterations
	res.Evaluations = sr.Evaluations
	if res.RMSE, res.R2, err = obj.quality(params, sr.Iterations); err != nil {
		return nil, errors.Wrapf(err, "fit %s", model.Name())
	}
	res.Duration = time.Since(start)

	logger.Info("Fit completed",
		log.AlgorithmKey, alg,
		log.LossKey, res.Loss,
		log.RMSEKey, res.RMSE,
		log.IterationKey, res.Iterations,
		log.EvaluationsKey, res.Evaluations,
		log.ParamsKey, params.Slice(),
		log.RandomSeedKey, seed,
		log.DurationMsKey, res.Duration.Milliseconds(),
	)
	return res, nil
}

// searcher picks the search strategy of the configured mode.
func (c *config) searcher(seed int64) (search.Searcher, string) {
	src := rand.NewPCG(uint64(seed), pcgStream)
	if c.hasQuantile {
		return &search.Evolution{
			Population: c.population,
			MaxIter:    c.maxIter,
			Src:        src,
		}, AlgorithmEvolution
	}
	return &search.Annealing{
		MaxIter:       c.maxIter,
		NoLocalSearch: !c.localSearch,
		Src:           src,
	}, AlgorithmAnnealing
}

// objective evaluates the calibration loss of a parameter vector on one
// sample. It reuses its prediction buffer and is not safe for concurrent
// use.
type objective struct {
	model    retention.Model
	psi      []float64
	truth    *mat.VecDense
	pred     []float64
	predVec  *mat.VecDense
	quantile float64
	pinball  bool
}

func newObjective(m retention.Model, s retention.Sample, cfg *config) *objective {
	n := s.Len()
	pred := make([]float64, n)
	return &objective{
		model:    m,
		psi:      s.Psi(),
		truth:    mat.NewVecDense(n, s.Theta()),
		pred:     pred,
		predVec:  mat.NewVecDense(n, pred),
		quantile: cfg.quantile,
		pinball:  cfg.hasQuantile,
	}
}

func (o *objective) loss(p retention.Params) float64 {
	o.model.EvalInto(o.pred, o.psi, p)

	var (
		l   float64
		err error
	)
	if o.pinball {
		l, err = metrics.PinballLoss(o.truth, o.predVec, o.quantile)
	} else {
		l, err = metrics.MSE(o.truth, o.predVec)
	}
	if err != nil {
		return math.NaN()
	}
	return l
}

// fn adapts loss to the search. Candidates are constrained the same
// way as the final parameters, so the reported loss belongs to them.
func (o *objective) fn() search.Objective {
	return func(x []float64) float64 {
		return o.loss(o.model.Constrain(retention.ParamsFromSlice(x)))
	}
}

func (o *objective) quality(p retention.Params, iter int) (rmse, r2 float64, err error) {
	o.model.EvalInto(o.pred, o.psi, p)
	if err := errors.CheckNumericalStability("evaluate", o.pred, iter); err != nil {
		return 0, 0, err
	}
	rmse, err = metrics.RMSE(o.truth, o.predVec)
	if err != nil {
		rmse = math.NaN()
	}
	r2, err = metrics.R2Score(o.truth, o.predVec)
	if err != nil {
		r2 = math.NaN()
	}
	return rmse, r2, nil
}
