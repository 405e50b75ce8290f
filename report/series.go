// Package report renders fitted retention curves: log-suction plots through
// gonum/plot and CSV or .xlsx tables of curves and parameters.
package report

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/YuminosukeSato/wrcfit/fit"
	"github.com/YuminosukeSato/wrcfit/retention"
)

// Series colors.
var (
	ColorBestFit = color.RGBA{R: 220, G: 20, B: 20, A: 255}
	ColorLower   = color.RGBA{R: 192, G: 192, B: 192, A: 255}
	ColorUpper   = color.RGBA{R: 255, G: 215, B: 0, A: 255}
	ColorData    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

// BestFitColumn heads the column of a point fit.
const BestFitColumn = "Best fit (RMSE)"

// Series is one fitted curve as it appears in a report.
type Series struct {
	// Column heads the curve and parameter tables.
	Column string
	// Label is the legend entry.
	Label string
	Curve retention.Curve
	Color color.Color
}

func displayName(v retention.Variant) string {
	m, err := retention.ModelOf(v)
	if err != nil {
		return v.String()
	}
	return m.DisplayName
}

// PointSeries describes a point fit.
func PointSeries(res *fit.Result) []Series {
	return []Series{{
		Column: BestFitColumn,
		Label:  fmt.Sprintf("Fitted %s (Best fit - RMSE)", displayName(res.Variant)),
		Curve:  res.Curve(),
		Color:  ColorBestFit,
	}}
}

// QuantileSeries describes the envelope fits of qs, lowest level first. The
// lowest level is drawn silver, the highest gold and the others red.
func QuantileSeries(qs *fit.QuantileSet) []Series {
	out := make([]Series, len(qs.Fits))
	for i, r := range qs.Fits {
		col := Ordinal(r.Quantile*100) + " Quantile"
		c := color.Color(ColorBestFit)
		switch {
		case len(qs.Fits) > 1 && i == 0:
			c = ColorLower
		case len(qs.Fits) > 1 && i == len(qs.Fits)-1:
			c = ColorUpper
		}
		out[i] = Series{
			Column: col,
			Label:  col + " " + displayName(r.Variant),
			Curve:  r.Curve(),
			Color:  c,
		}
	}
	return out
}

// Ordinal formats a percentage as an English ordinal: 1st, 22nd, 95th,
// 2.5th.
func Ordinal(pct float64) string {
	pct = math.Round(pct*1e6) / 1e6
	s := strconv.FormatFloat(pct, 'f', -1, 64)
	if pct != math.Trunc(pct) {
		return s + "th"
	}
	n := int64(pct)
	if m := n % 100; m >= 11 && m <= 13 {
		return s + "th"
	}
	switch n % 10 {
	case 1:
		return s + "st"
	case 2:
		return s + "nd"
	case 3:
		return s + "rd"
	}
	return s + "th"
}
