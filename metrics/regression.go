// Package metrics provides the loss functions minimized by the fitting
// engine and the goodness-of-fit scores reported with a fit.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len())
	}
	return n, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
//
//	MSE = (1/n) Σ (ŷ - y)²
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yPred.AtVec(i) - yTrue.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// Pinball returns the quantile loss ρ_q of a single residual r = ŷ - y.
// Under-prediction (r < 0) is weighted by q, everything else by 1-q, so the
// minimizer over a sample is its q-th quantile.
func Pinball(r, q float64) float64 {
	if r < 0 {
		return -q * r
	}
	return -(q - 1) * r
}

// PinballLoss は分位点損失の平均を計算する
//
//	L_q = (1/n) Σ ρ_q(ŷ - y)
func PinballLoss(yTrue, yPred *mat.VecDense, q float64) (float64, error) {
	if !(q > 0 && q < 1) {
		return 0, errors.NewValidationError("quantile", "must lie in (0, 1)", q)
	}
	n, err := checkPair("PinballLoss", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += Pinball(yPred.AtVec(i)-yTrue.AtVec(i), q)
	}
	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する
//
// A constant yTrue makes R² undefined; like scikit-learn the score is then
// 1 for a perfect prediction and 0 otherwise, and an UndefinedMetricWarning
// is emitted.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)
		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	if tss == 0 {
		score := 0.0
		if rss == 0 {
			score = 1
		}
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "no variance in yTrue", score))
		return score, nil
	}
	return 1 - rss/tss, nil
}
