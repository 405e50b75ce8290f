package retention

import (
	"math"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// DefaultTolerance is the relative slack around the empirical saturation and
// residual contents.
const DefaultTolerance = 0.3

// Van Genuchten heuristics. When αψ = 1 the denominator lies between 1 and
// 2, so the crossing at (θs-θr)/1.5 + θr approximates the inflection.
const (
	vgInflectionDivisor = 1.5
	vgLowDivisor        = 2.0
	vgAlphaMax          = 100.0
	vgNSeed             = 5.0
	vgNMin              = 1.0
	vgNMax              = 50.0
)

// Brooks and Corey heuristics.
const (
	bcEntryFraction = 0.8
	bcLambdaSeed    = -2.0
	bcLambdaMin     = -10.0
	bcLambdaMax     = 0.0
)

// Fredlund and Xing heuristics, equations 32 to 35 of the 1994 paper.
const (
	fxInflectionFraction = 0.7
	fxTangentFraction    = 0.3
	fxMFactor            = 3.67
	fxNBase              = 1.31
	fxNFactor            = 3.72
	fxNSeed              = 2.0
	fxShapeMax           = 30.0
)

// floorScale replaces a non-positive or infinite scale estimate by MinScale
// and reports the correction as a warning.
func floorScale(model, param string, v float64) float64 {
	if v > 0 && !math.IsInf(v, 1) {
		return v
	}
	errors.Warn(errors.NewDegenerateParameterError(model, param, v, MinScale))
	return MinScale
}

func guessVanGenuchten(s Sample) Params {
	ts, tr := s.Extremes()
	i := s.nearest((ts-tr)/vgInflectionDivisor + tr)
	alpha := floorScale("VanGenuchten", "alpha", 1/s.psi[i])
	return Params{ts, alpha, vgNSeed, tr}
}

func boundsVanGenuchten(s Sample, seed Params, tol float64) Box {
	ts, tr := s.Extremes()
	j := s.nearest((ts-tr)/vgLowDivisor + tr)
	alphaMin := floorScale("VanGenuchten", "alpha", 1/s.psi[j]) / 2
	return Box{
		contentInterval(seed[0], tol),
		logInterval(math.Min(alphaMin, seed[1]), math.Max(vgAlphaMax, seed[1])),
		linearInterval(vgNMin, vgNMax),
		contentInterval(seed[3], tol),
	}
}

func guessBrooksCorey(s Sample) Params {
	ts, tr := s.Extremes()
	i := s.firstBelow(bcEntryFraction * ts)
	if i < 0 {
		// never drains below the entry level: take the driest suction
		_, hi := s.SuctionRange()
		return Params{ts, floorScale("BrooksCorey", "psi_d", hi), bcLambdaSeed, tr}
	}
	return Params{ts, floorScale("BrooksCorey", "psi_d", s.psi[i]), bcLambdaSeed, tr}
}

func boundsBrooksCorey(s Sample, seed Params, tol float64) Box {
	lo, hi := s.SuctionRange()
	lo = errors.FloorPositive(lo, MinScale)
	return Box{
		contentInterval(seed[0], tol),
		logInterval(math.Min(lo, seed[1]), math.Max(hi, seed[1])),
		linearInterval(bcLambdaMin, bcLambdaMax),
		contentInterval(seed[3], tol),
	}
}

func guessFredlundXing(s Sample) Params {
	ts, tr := s.Extremes()
	i := s.nearest((ts-tr)*fxInflectionFraction + tr)
	psiI, thetaI := s.psi[i], s.theta[i]
	psiP := s.psi[s.nearest((ts-tr)*fxTangentFraction+tr)]

	a := floorScale("FredlundXing", "a", psiI)

	m := 0.0
	if thetaI > 0 && ts > 0 {
		m = fxMFactor * math.Log(ts/thetaI)
	}

	n := fxNSeed
	if m > 0 && psiP > psiI {
		slope := thetaI / (psiP - psiI)
		n = math.Pow(fxNBase, m+1) / (m * ts) * fxNFactor * slope * psiI
	}

	return Params{
		ts,
		a,
		errors.ClipValue(n, 0, fxShapeMax),
		errors.ClipValue(m, 0, fxShapeMax),
	}
}

func boundsFredlundXing(s Sample, seed Params, tol float64) Box {
	lo, hi := s.SuctionRange()
	lo = errors.FloorPositive(lo, MinScale)
	return Box{
		contentInterval(seed[0], tol),
		logInterval(math.Min(lo, seed[1]), math.Max(hi, seed[1])),
		linearInterval(0, fxShapeMax),
		linearInterval(0, fxShapeMax),
	}
}
