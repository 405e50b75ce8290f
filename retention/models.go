package retention

import (
	"math"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// MinScale is the floor applied to scale parameters (α, ψd, a) that a
// heuristic or a caller left non-positive.
const MinScale = 1e-6

// vanGenuchten evaluates (θs, α, n, θr).
// https://doi.org/10.2136/sssaj1980.03615995004400050002x
func vanGenuchten(psi float64, p Params) float64 {
	ts, alpha, n, tr := p[0], p[1], p[2], p[3]
	if psi <= 0 || n == 0 {
		return ts
	}
	return tr + (ts-tr)/math.Pow(1+math.Pow(alpha*psi, n), 1-1/n)
}

// brooksCorey evaluates (θs, ψd, λ, θr). λ ≤ 0 makes θ fall beyond the
// air-entry value ψd.
func brooksCorey(psi float64, p Params) float64 {
	ts, psiD, lambda, tr := p[0], p[1], p[2], p[3]
	psiD = errors.FloorPositive(psiD, MinScale)
	if psi < psiD {
		return ts
	}
	return tr + (ts-tr)*math.Pow(psi/psiD, lambda)
}

// fredlundXing evaluates (θs, a, n, m).
// https://doi.org/10.1139/t94-061
func fredlundXing(psi float64, p Params) float64 {
	ts, a, n, m := p[0], p[1], p[2], p[3]
	if psi <= 0 {
		return ts
	}
	a = errors.FloorPositive(a, MinScale)
	return ts * math.Pow(math.Log(math.E+math.Pow(psi/a, n)), -m)
}

func validateContents(model string, ts, tr float64, hasResidual bool) error {
	if !errors.IsFinite(ts) || ts < 0 || ts > 1 {
		return errors.NewValidationError(model+".saturation", "water content must lie in [0, 1]", ts)
	}
	if !hasResidual {
		return nil
	}
	if !errors.IsFinite(tr) || tr < 0 || tr > 1 {
		return errors.NewValidationError(model+".residual", "water content must lie in [0, 1]", tr)
	}
	if tr > ts {
		return errors.NewValidationError(model+".residual", "residual content exceeds saturation content", tr)
	}
	return nil
}

func validatePositive(model, param string, v float64) error {
	if !errors.IsFinite(v) || v <= 0 {
		return errors.NewDegenerateParameterError(model, param, v, 0)
	}
	return nil
}

func validateVanGenuchten(p Params) error {
	if err := validateContents("VanGenuchten", p[0], p[3], true); err != nil {
		return err
	}
	if err := validatePositive("VanGenuchten", "alpha", p[1]); err != nil {
		return err
	}
	if !errors.IsFinite(p[2]) || p[2] < 1 {
		return errors.NewValidationError("VanGenuchten.n", "must be at least 1", p[2])
	}
	return nil
}

func validateBrooksCorey(p Params) error {
	if err := validateContents("BrooksCorey", p[0], p[3], true); err != nil {
		return err
	}
	if err := validatePositive("BrooksCorey", "psi_d", p[1]); err != nil {
		return err
	}
	if !errors.IsFinite(p[2]) || p[2] > 0 {
		return errors.NewValidationError("BrooksCorey.lambda", "must not be positive", p[2])
	}
	return nil
}

func validateFredlundXing(p Params) error {
	if err := validateContents("FredlundXing", p[0], 0, false); err != nil {
		return err
	}
	if err := validatePositive("FredlundXing", "a", p[1]); err != nil {
		return err
	}
	for i, name := range []string{"n", "m"} {
		if v := p[2+i]; !errors.IsFinite(v) || v < 0 {
			return errors.NewValidationError("FredlundXing."+name, "must not be negative", v)
		}
	}
	return nil
}
