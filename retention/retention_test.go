package retention

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

var referenceParams = map[Variant]Params{
	VanGenuchten: {0.45, 0.02, 2.5, 0.05},
	BrooksCorey:  {0.42, 15, -0.6, 0.04},
	FredlundXing: {0.48, 40, 1.8, 1.1},
}

// labSample is a drainage curve shaped like a silty loam measurement.
func labSample(t *testing.T) Sample {
	t.Helper()
	psi := []float64{0.5, 1, 3, 10, 30, 60, 100, 300, 1000, 3000, 15000}
	c := Curve{Variant: VanGenuchten, Params: Params{0.43, 0.03, 1.8, 0.08}}
	s, err := NewSample(psi, c.EvalAll(psi))
	require.NoError(t, err)
	return s
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want Variant
	}{
		{"VanGenuchten", VanGenuchten},
		{"Van Genuchten (1980)", VanGenuchten},
		{"vg", VanGenuchten},
		{"BrooksCorey", BrooksCorey},
		{"Brooks and Corey (1964)", BrooksCorey},
		{" FX ", FredlundXing},
		{"Fredlund and Xing (1994)", FredlundXing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Variant)
			assert.Equal(t, tt.want.String(), m.Name())
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("Unknown Model")
	require.Error(t, err)

	var unknown *errors.UnknownModelError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Unknown Model", unknown.Name)
	assert.Equal(t, []string{"VanGenuchten", "BrooksCorey", "FredlundXing"}, unknown.Known)

	_, err = ModelOf(Variant(42))
	assert.True(t, errors.As(err, &unknown))
}

func TestEvaluatorLimits(t *testing.T) {
	for v, p := range referenceParams {
		t.Run(v.String(), func(t *testing.T) {
			m, err := ModelOf(v)
			require.NoError(t, err)

			assert.InDelta(t, p[0], m.Eval(1e-9, p), 1e-6, "ψ→0 must give θs")
			assert.Equal(t, p[0], m.Eval(0, p))

			switch v {
			case VanGenuchten:
				assert.InDelta(t, p[3], m.Eval(1e12, p), 1e-3, "ψ→∞ must give θr")
			case FredlundXing:
				assert.InDelta(t, 0, m.Eval(1e30, p), 0.02)
			case BrooksCorey:
				// plateau below the air-entry value, θr beyond it
				assert.Equal(t, p[0], m.Eval(p[1]*0.99, p))
				assert.InDelta(t, p[0], m.Eval(p[1], p), 1e-15)
				assert.InDelta(t, p[3], m.Eval(1e15, p), 1e-6)
			}
		})
	}
}

func TestEvaluatorMonotone(t *testing.T) {
	psi := make([]float64, 200)
	for i := range psi {
		psi[i] = math.Pow(10, -2+8*float64(i)/float64(len(psi)-1))
	}
	for v, p := range referenceParams {
		t.Run(v.String(), func(t *testing.T) {
			c, err := NewCurve(v, p)
			require.NoError(t, err)
			theta := c.EvalAll(psi)
			for i := 1; i < len(theta); i++ {
				assert.LessOrEqual(t, theta[i], theta[i-1]+1e-15, "θ must not increase with suction (ψ=%g)", psi[i])
			}
		})
	}
}

func TestNewCurveRejectsDegenerateParams(t *testing.T) {
	tests := []struct {
		name      string
		variant   Variant
		params    Params
		wantDegen bool
	}{
		{"vg alpha zero", VanGenuchten, Params{0.4, 0, 2, 0.05}, true},
		{"bc psi_d negative", BrooksCorey, Params{0.4, -1, -2, 0.05}, true},
		{"fx a zero", FredlundXing, Params{0.4, 0, 2, 1}, true},
		{"vg n below one", VanGenuchten, Params{0.4, 0.1, 0.5, 0.05}, false},
		{"bc lambda positive", BrooksCorey, Params{0.4, 10, 2, 0.05}, false},
		{"residual above saturation", VanGenuchten, Params{0.2, 0.1, 2, 0.3}, false},
		{"saturation above one", FredlundXing, Params{1.2, 10, 2, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCurve(tt.variant, tt.params)
			require.Error(t, err)
			var degen *errors.DegenerateParameterError
			assert.Equal(t, tt.wantDegen, errors.As(err, &degen))
		})
	}
}

func TestModelEvaluator(t *testing.T) {
	m, err := Lookup("BC")
	require.NoError(t, err)
	eval := m.Evaluator()

	got, err := eval([]float64{1, 15, 150}, referenceParams[BrooksCorey])
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 0.42, got[0])
	assert.InDelta(t, 0.42, got[1], 1e-15)
	assert.InDelta(t, 0.04+0.38*math.Pow(10, -0.6), got[2], 1e-12)

	_, err = eval([]float64{1}, Params{0.42, 0, -2, 0.04})
	assert.Error(t, err)
}

func TestCurveNamed(t *testing.T) {
	c := Curve{Variant: VanGenuchten, Params: referenceParams[VanGenuchten]}
	named := c.Named()
	require.Len(t, named, NumParams)
	assert.Equal(t, NamedParam{Name: "Saturation WC", Value: 0.45}, named[0])
	assert.Equal(t, "alpha VG", named[1].Name)
	assert.Equal(t, "n VG", named[2].Name)
	assert.Equal(t, "Residual WC", named[3].Name)
}

func TestInitialGuessInsideBounds(t *testing.T) {
	s := labSample(t)
	for _, v := range Variants() {
		t.Run(v.String(), func(t *testing.T) {
			m, err := ModelOf(v)
			require.NoError(t, err)
			seed := m.InitialGuess(s)
			box := m.Bounds(s, seed, DefaultTolerance)

			assert.True(t, box.Contains(seed), "seed %v outside box %v", seed, box)
			for i, iv := range box {
				assert.LessOrEqual(t, iv.Lo, iv.Hi, "interval %d", i)
			}
			assert.True(t, box[1].Log, "scale parameter should be searched in log space")
			assert.NoError(t, m.Validate(box.Clip(seed)))
		})
	}
}

func TestVanGenuchtenGuess(t *testing.T) {
	psi := []float64{1, 10, 100, 1000, 10000}
	theta := []float64{0.45, 0.446, 0.178, 0.0545, 0.0501}
	s, err := NewSample(psi, theta)
	require.NoError(t, err)

	m, _ := ModelOf(VanGenuchten)
	seed := m.InitialGuess(s)
	// (0.45-0.0501)/1.5+0.0501 = 0.3167 is nearest to 0.446 (ψ=10)
	assert.Equal(t, Params{0.45, 0.1, 5, 0.0501}, seed)

	box := m.Bounds(s, seed, DefaultTolerance)
	// (0.45-0.0501)/2+0.0501 = 0.250 is nearest to 0.178 (ψ=100)
	assert.InDelta(t, 0.005, box[1].Lo, 1e-12)
	assert.Equal(t, 100.0, box[1].Hi)
	assert.Equal(t, Interval{Lo: 1, Hi: 50}, box[2])
	assert.InDelta(t, 0.315, box[0].Lo, 1e-12)
	assert.InDelta(t, 0.585, box[0].Hi, 1e-12)
}

func TestBrooksCoreyGuess(t *testing.T) {
	psi := []float64{1, 5, 20, 50, 200}
	theta := []float64{0.40, 0.39, 0.30, 0.20, 0.10}
	s, err := NewSample(psi, theta)
	require.NoError(t, err)

	m, _ := ModelOf(BrooksCorey)
	seed := m.InitialGuess(s)
	// first θ below 0.8·0.40 = 0.32 is at ψ=20
	assert.Equal(t, Params{0.40, 20, -2, 0.10}, seed)

	box := m.Bounds(s, seed, DefaultTolerance)
	assert.Equal(t, 1.0, box[1].Lo)
	assert.Equal(t, 200.0, box[1].Hi)
	assert.Equal(t, Interval{Lo: -10, Hi: 0}, box[2])
}

func TestBrooksCoreyGuessNeverDrains(t *testing.T) {
	s, err := NewSample([]float64{1, 2, 3, 4}, []float64{0.40, 0.39, 0.38, 0.37})
	require.NoError(t, err)
	m, _ := ModelOf(BrooksCorey)
	assert.Equal(t, 4.0, m.InitialGuess(s)[1])
}

func TestFredlundXingGuess(t *testing.T) {
	psi := []float64{1, 10, 50, 300, 2000}
	theta := []float64{0.45, 0.42, 0.33, 0.18, 0.05}
	s, err := NewSample(psi, theta)
	require.NoError(t, err)

	m, _ := ModelOf(FredlundXing)
	seed := m.InitialGuess(s)

	// 70% crossing: 0.4*0.7+0.05 = 0.33 (ψ=50); 30% crossing: 0.17 (ψ=300)
	wantM := 3.67 * math.Log(0.45/0.33)
	wantN := math.Pow(1.31, wantM+1) / (wantM * 0.45) * 3.72 * (0.33 / 250) * 50
	assert.Equal(t, 0.45, seed[0])
	assert.Equal(t, 50.0, seed[1])
	assert.InDelta(t, wantN, seed[2], 1e-12)
	assert.InDelta(t, wantM, seed[3], 1e-12)
	assert.Greater(t, seed[2], 0.0)
}

func TestConstantSampleHeuristics(t *testing.T) {
	s, err := NewSample([]float64{1, 10, 100, 1000}, []float64{0.3, 0.3, 0.3, 0.3})
	require.NoError(t, err)
	require.True(t, s.IsConstant())

	for _, v := range Variants() {
		t.Run(v.String(), func(t *testing.T) {
			m, _ := ModelOf(v)
			seed := m.InitialGuess(s)
			box := m.Bounds(s, seed, DefaultTolerance)
			for i := range seed {
				assert.False(t, math.IsNaN(seed[i]) || math.IsInf(seed[i], 0), "seed[%d] = %v", i, seed[i])
			}
			assert.True(t, box.Contains(seed))
			for _, psi := range s.Psi() {
				assert.InDelta(t, 0.3, m.Eval(psi, seed), 1e-12)
			}
		})
	}
}

func TestNewSampleValidation(t *testing.T) {
	tests := []struct {
		name  string
		psi   []float64
		theta []float64
	}{
		{"length mismatch", []float64{1, 2}, []float64{0.3}},
		{"empty", nil, nil},
		{"negative suction", []float64{-1, 2}, []float64{0.3, 0.2}},
		{"NaN suction", []float64{math.NaN(), 2}, []float64{0.3, 0.2}},
		{"content above one", []float64{1, 2}, []float64{1.3, 0.2}},
		{"negative content", []float64{1, 2}, []float64{0.3, -0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSample(tt.psi, tt.theta)
			assert.Error(t, err)
		})
	}
}

func TestSampleAccessors(t *testing.T) {
	psi := []float64{0, 10, 10, 100}
	theta := []float64{0.4, 0.35, 0.3, 0.1}
	s, err := NewSample(psi, theta)
	require.NoError(t, err)

	psi[1] = 999
	p, th := s.At(1)
	assert.Equal(t, 10.0, p, "sample must not alias its input")
	assert.Equal(t, 0.35, th)
	assert.Equal(t, 3, s.DistinctSuctions())

	ts, tr := s.Extremes()
	assert.Equal(t, 0.4, ts)
	assert.Equal(t, 0.1, tr)

	trimmed, dropped := s.WithoutZeroSuction()
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 3, trimmed.Len())
	lo, hi := trimmed.SuctionRange()
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 100.0, hi)

	same, dropped := trimmed.WithoutZeroSuction()
	assert.Zero(t, dropped)
	assert.Equal(t, trimmed.Len(), same.Len())

	// nearest ties go to the first occurrence
	tie, _ := NewSample([]float64{1, 2, 3}, []float64{0.4, 0.2, 0.4})
	assert.Equal(t, 0, tie.nearest(0.4))
}

func TestBoxEncodeDecode(t *testing.T) {
	box := Box{
		{Lo: 0.3, Hi: 0.6},
		{Lo: 0.001, Hi: 100, Log: true},
		{Lo: 1, Hi: 50},
		{Lo: 0, Hi: 0},
	}
	x := []float64{0.45, 0.02, 2.5, 0}
	u := make([]float64, NumParams)
	box.Encode(u, x)

	assert.InDelta(t, 0.5, u[0], 1e-12)
	assert.Zero(t, u[3])
	for _, v := range u {
		assert.True(t, v >= 0 && v <= 1)
	}

	back := make([]float64, NumParams)
	box.Decode(back, u)
	assert.InDeltaSlice(t, x, back, 1e-12)

	// out of the cube decodes onto the faces
	box.Decode(back, []float64{-0.5, 1.5, 2, 7})
	assert.Equal(t, []float64{0.3, 100, 50, 0}, back)
	assert.True(t, box.Contains(ParamsFromSlice(back)))

	assert.Equal(t, Params{0.3, 0.001, 1, 0}, box.Lower())
	assert.Equal(t, Params{0.6, 100, 50, 0}, box.Upper())
	assert.Equal(t, Params{0.6, 0.001, 1, 0}, box.Clip(Params{0.9, -3, 1, 0}))
}

func TestConstrain(t *testing.T) {
	vg, _ := ModelOf(VanGenuchten)
	assert.Equal(t, Params{0.3, 0.1, 2, 0.3}, vg.Constrain(Params{0.3, 0.1, 2, 0.35}))
	assert.Equal(t, Params{0.3, 0.1, 2, 0.1}, vg.Constrain(Params{0.3, 0.1, 2, 0.1}))

	fx, _ := ModelOf(FredlundXing)
	assert.Equal(t, Params{0.3, 10, 2, 0.9}, fx.Constrain(Params{0.3, 10, 2, 0.9}))
}
