package model

import (
	"context"

	"github.com/YuminosukeSato/wrcfit/retention"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit calibrates the model against a sample.
	Fit(ctx context.Context, s retention.Sample) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict returns the water content at every suction of psi.
	Predict(psi []float64) ([]float64, error)
}

// Estimator is a retention curve model that can be calibrated and then
// evaluated.
type Estimator interface {
	Fitter
	Predictor

	// IsFitted reports whether Fit has completed successfully.
	IsFitted() bool

	// Curve returns the calibrated curve.
	Curve() (retention.Curve, error)
}
