package retention

import "fmt"

// NumParams is the parameter count of every model family.
const NumParams = 4

// Params is an ordered parameter vector. The meaning of each slot depends on
// the Variant; see Model.ParamNames.
type Params [NumParams]float64

// Slice returns the parameters as a new slice.
func (p Params) Slice() []float64 {
	out := make([]float64, NumParams)
	copy(out, p[:])
	return out
}

// ParamsFromSlice copies the first NumParams values of x.
func ParamsFromSlice(x []float64) Params {
	var p Params
	copy(p[:], x)
	return p
}

// Variant tags a retention model family.
type Variant int

const (
	VanGenuchten Variant = iota + 1
	BrooksCorey
	FredlundXing
)

// String returns the canonical identifier of the family.
func (v Variant) String() string {
	switch v {
	case VanGenuchten:
		return "VanGenuchten"
	case BrooksCorey:
		return "BrooksCorey"
	case FredlundXing:
		return "FredlundXing"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Variants lists the registered families in catalog order.
func Variants() []Variant {
	return []Variant{VanGenuchten, BrooksCorey, FredlundXing}
}
