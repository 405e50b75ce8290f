package retention

// Curve is a fitted retention curve: a model tag and its parameters.
type Curve struct {
	Variant Variant
	Params  Params
}

// NewCurve validates p against the model of v.
func NewCurve(v Variant, p Params) (Curve, error) {
	m, err := ModelOf(v)
	if err != nil {
		return Curve{}, err
	}
	if err := m.Validate(p); err != nil {
		return Curve{}, err
	}
	return Curve{Variant: v, Params: p}, nil
}

// Eval returns θ at suction psi.
func (c Curve) Eval(psi float64) float64 {
	return catalog[c.Variant].eval(psi, c.Params)
}

// EvalAll returns θ at every suction of psi.
func (c Curve) EvalAll(psi []float64) []float64 {
	out := make([]float64, len(psi))
	catalog[c.Variant].EvalInto(out, psi, c.Params)
	return out
}

// NamedParam is a parameter value with its human-readable name.
type NamedParam struct {
	Name  string
	Value float64
}

// Named pairs every parameter with its catalog name.
func (c Curve) Named() []NamedParam {
	names := catalog[c.Variant].ParamNames
	out := make([]NamedParam, NumParams)
	for i := range out {
		out[i] = NamedParam{Name: names[i], Value: c.Params[i]}
	}
	return out
}
