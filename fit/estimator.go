package fit

import (
	"context"

	"github.com/YuminosukeSato/wrcfit/core/model"
	"github.com/YuminosukeSato/wrcfit/pkg/errors"
	"github.com/YuminosukeSato/wrcfit/retention"
)

const estimatorName = "Estimator"

// Estimator wraps Fit behind the Fit/Predict life cycle of
// core/model.Estimator. It keeps the last successful Result; the result and
// the fitted state change together under the state manager's lock.
type Estimator struct {
	state   *model.StateManager
	modelID string
	opts    []Option

	result *Result
}

var _ model.Estimator = (*Estimator)(nil)

// NewEstimator creates an unfitted estimator for modelID. The model name is
// resolved on Fit.
func NewEstimator(modelID string, opts ...Option) *Estimator {
	return &Estimator{
		state:   model.NewStateManager(),
		modelID: modelID,
		opts:    opts,
	}
}

// Fit calibrates the estimator. A failed fit leaves the previous state
// untouched.
func (e *Estimator) Fit(ctx context.Context, s retention.Sample) error {
	res, err := Fit(ctx, s, e.modelID, e.opts...)
	if err != nil {
		return err
	}

	return e.state.WithStateMut(func(st *model.ModelState) error {
		e.result = res
		*st = model.ModelState{
			Fitted:   true,
			Model:    res.Variant.String(),
			NSamples: res.Samples,
			NDropped: res.Dropped,
			Seed:     res.Seed,
		}
		return nil
	})
}

// Reset discards the fitted result.
func (e *Estimator) Reset() {
	_ = e.state.WithStateMut(func(st *model.ModelState) error {
		e.result = nil
		*st = model.ModelState{}
		return nil
	})
}

// IsFitted reports whether the estimator holds a fitted result.
func (e *Estimator) IsFitted() bool {
	return e.state.IsFitted()
}

// fitted runs fn on the current result, or returns a NotFittedError naming
// method.
func (e *Estimator) fitted(method string, fn func(res *Result) error) error {
	return e.state.WithState(func(st model.ModelState) error {
		if err := st.RequireFitted(estimatorName, method); err != nil {
			return err
		}
		return fn(e.result)
	})
}

// Predict returns the fitted water content at every suction of psi.
func (e *Estimator) Predict(psi []float64) (out []float64, err error) {
	err = e.fitted("Predict", func(res *Result) error {
		for _, v := range psi {
			if !errors.IsFinite(v) || v < 0 {
				return errors.NewValidationError("psi", "suction must be finite and non-negative", v)
			}
		}
		out = res.Evaluate(psi)
		return nil
	})
	return out, err
}

// Curve returns the fitted curve.
func (e *Estimator) Curve() (c retention.Curve, err error) {
	err = e.fitted("Curve", func(res *Result) error {
		c = res.Curve()
		return nil
	})
	return c, err
}

// Result returns the last fit result.
func (e *Estimator) Result() (res *Result, err error) {
	err = e.fitted("Result", func(r *Result) error {
		res = r
		return nil
	})
	return res, err
}

// State returns the fitted-state metadata.
func (e *Estimator) State() model.ModelState {
	return e.state.GetState()
}
