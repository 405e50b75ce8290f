package retention

import (
	"strings"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
)

// Model bundles everything the fitting engine needs to know about one
// family. Models are constants of the catalog and never mutated.
type Model struct {
	Variant     Variant
	DisplayName string
	Abbrev      string
	ParamNames  [NumParams]string

	// HasResidual is true when slot 3 holds the residual content θr.
	HasResidual bool

	eval     func(psi float64, p Params) float64
	guess    func(s Sample) Params
	bounds   func(s Sample, seed Params, tol float64) Box
	validate func(p Params) error
}

var catalog = map[Variant]Model{
	VanGenuchten: {
		Variant:     VanGenuchten,
		DisplayName: "Van Genuchten (1980)",
		Abbrev:      "VG",
		ParamNames:  [NumParams]string{"Saturation WC", "alpha VG", "n VG", "Residual WC"},
		HasResidual: true,
		eval:        vanGenuchten,
		guess:       guessVanGenuchten,
		bounds:      boundsVanGenuchten,
		validate:    validateVanGenuchten,
	},
	BrooksCorey: {
		Variant:     BrooksCorey,
		DisplayName: "Brooks and Corey (1964)",
		Abbrev:      "BC",
		ParamNames:  [NumParams]string{"Saturation WC", "psi_d BC", "lambda BC", "Residual WC"},
		HasResidual: true,
		eval:        brooksCorey,
		guess:       guessBrooksCorey,
		bounds:      boundsBrooksCorey,
		validate:    validateBrooksCorey,
	},
	FredlundXing: {
		Variant:     FredlundXing,
		DisplayName: "Fredlund and Xing (1994)",
		Abbrev:      "FX",
		ParamNames:  [NumParams]string{"Saturation WC", "a FX", "n FX", "m FX"},
		eval:        fredlundXing,
		guess:       guessFredlundXing,
		bounds:      boundsFredlundXing,
		validate:    validateFredlundXing,
	},
}

// aliases maps every accepted spelling (canonical id, display name,
// abbreviation), lower-cased, to its variant.
var aliases = func() map[string]Variant {
	m := make(map[string]Variant)
	for v, model := range catalog {
		m[strings.ToLower(v.String())] = v
		m[strings.ToLower(model.DisplayName)] = v
		m[strings.ToLower(model.Abbrev)] = v
	}
	return m
}()

// Lookup resolves a model identifier. Canonical ids ("VanGenuchten"),
// display names ("Van Genuchten (1980)") and abbreviations ("VG") are
// accepted, case-insensitively.
func Lookup(name string) (Model, error) {
	v, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Model{}, errors.NewUnknownModelError(name, KnownNames())
	}
	return catalog[v], nil
}

// ModelOf returns the catalog entry of v.
func ModelOf(v Variant) (Model, error) {
	m, ok := catalog[v]
	if !ok {
		return Model{}, errors.NewUnknownModelError(v.String(), KnownNames())
	}
	return m, nil
}

// KnownNames lists the canonical identifiers.
func KnownNames() []string {
	names := make([]string, 0, len(catalog))
	for _, v := range Variants() {
		names = append(names, v.String())
	}
	return names
}

// Name returns the canonical identifier.
func (m Model) Name() string {
	return m.Variant.String()
}

// Eval evaluates the model at one suction without validating p.
func (m Model) Eval(psi float64, p Params) float64 {
	return m.eval(psi, p)
}

// EvalInto evaluates the model at every suction of psi into dst.
func (m Model) EvalInto(dst, psi []float64, p Params) {
	for i, v := range psi {
		dst[i] = m.eval(v, p)
	}
}

// Validate checks that p describes a defined, physically meaningful curve.
func (m Model) Validate(p Params) error {
	return m.validate(p)
}

// InitialGuess derives a starting parameter vector from the shape of s.
func (m Model) InitialGuess(s Sample) Params {
	return m.guess(s)
}

// Bounds derives the search box around seed. tol is the relative slack of
// the saturation and residual contents; DefaultTolerance is used when tol is
// not positive.
func (m Model) Bounds(s Sample, seed Params, tol float64) Box {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	return m.bounds(s, seed, tol)
}

// Constrain enforces θr ≤ θs by lowering the residual content to the
// saturation content. When p lies in a box produced by Bounds, the result
// does too.
func (m Model) Constrain(p Params) Params {
	if m.HasResidual && p[3] > p[0] {
		p[3] = p[0]
	}
	return p
}

// Evaluator evaluates a parameter vector at many suctions.
type Evaluator func(psi []float64, p Params) ([]float64, error)

// Evaluator returns an evaluation function bound to this model. The
// parameters are validated on every call.
func (m Model) Evaluator() Evaluator {
	return func(psi []float64, p Params) ([]float64, error) {
		c, err := NewCurve(m.Variant, p)
		if err != nil {
			return nil, err
		}
		return c.EvalAll(psi), nil
	}
}
