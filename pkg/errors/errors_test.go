package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewUnknownModelError(t *testing.T) {
	err := NewUnknownModelError("Unknown Model", []string{"VanGenuchten", "BrooksCorey"})

	want := `wrcfit: unknown retention model "Unknown Model" (known: [VanGenuchten BrooksCorey])`
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}

	var unknown *UnknownModelError
	if !As(err, &unknown) {
		t.Fatal("Error should be castable to *UnknownModelError")
	}
	if unknown.Name != "Unknown Model" {
		t.Errorf("Name = %q", unknown.Name)
	}
}

func TestNewInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError("Fit", "fewer samples than parameters", 4, 2)

	want := "wrcfit: Fit: insufficient data: fewer samples than parameters (need 4, got 2)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var insufficient *InsufficientDataError
	if !As(err, &insufficient) {
		t.Error("Error should be castable to *InsufficientDataError")
	}
}

func TestNewDegenerateParameterError(t *testing.T) {
	tests := []struct {
		name    string
		floor   float64
		wantMsg string
	}{
		{
			name:    "floored",
			floor:   1e-6,
			wantMsg: "wrcfit: BrooksCorey: parameter psi_d = 0 is not positive, floored at 1e-06",
		},
		{
			name:    "surfaced",
			floor:   0,
			wantMsg: "wrcfit: BrooksCorey: parameter psi_d = 0 makes the curve undefined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDegenerateParameterError("BrooksCorey", "psi_d", 0, tt.floor)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}
			var degenerate *DegenerateParameterError
			if !As(err, &degenerate) {
				t.Error("Error should be castable to *DegenerateParameterError")
			}
		})
	}
}

func TestNewNonConvergenceError(t *testing.T) {
	best := []float64{0.4, 0.02, 2.5, 0.05}
	err := NewNonConvergenceError("annealing", "non-finite loss", best, 0)

	var nonConv *NonConvergenceError
	if !As(err, &nonConv) {
		t.Fatal("Error should be castable to *NonConvergenceError")
	}
	if len(nonConv.Best) != 4 || nonConv.Best[1] != 0.02 {
		t.Errorf("Best candidate lost: %v", nonConv.Best)
	}
	if !strings.Contains(err.Error(), "annealing did not converge: non-finite loss") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("NewSample", 5, 4)

	want := "wrcfit: NewSample: length mismatch. Expected 5, got 4"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("Estimator", "Predict")

	want := "wrcfit: Estimator: this estimator is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var nfErr *NotFittedError
	if !As(err, &nfErr) {
		t.Fatal("Error should be castable to *NotFittedError")
	}
	if nfErr.Method != "Predict" {
		t.Errorf("Method = %v, want Predict", nfErr.Method)
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("quantile", "must lie in (0, 1)", 1.5)

	want := "wrcfit: validation failed for parameter 'quantile': must lie in (0, 1) (got: 1.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name    string
		line    int
		inner   error
		wantMsg string
	}{
		{
			name:    "with line and cause",
			line:    3,
			inner:   fmt.Errorf("strconv.ParseFloat: parsing \"abc\": invalid syntax"),
			wantMsg: "wrcfit: parse data.csv line 3: invalid number: strconv.ParseFloat: parsing \"abc\": invalid syntax",
		},
		{
			name:    "without line",
			line:    0,
			inner:   nil,
			wantMsg: "wrcfit: parse data.csv: invalid number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewParseError("data.csv", tt.line, "invalid number", tt.inner)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}
			if tt.inner != nil && !Is(err, tt.inner) {
				t.Error("ParseError should unwrap to its cause")
			}
		})
	}
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewConvergenceWarning("evolution", 1000, ""))

	if len(got) != 1 {
		t.Fatalf("expected one warning, got %d", len(got))
	}
	want := "evolution failed to converge after 1000 iterations. Consider increasing the iteration budget."
	if got[0].Error() != want {
		t.Errorf("warning = %q, want %q", got[0].Error(), want)
	}

	// zerolog関数が優先される
	var viaZerolog int
	SetZerologWarnFunc(func(error) { viaZerolog++ })
	defer SetZerologWarnFunc(nil)
	Warn(NewUndefinedMetricWarning("r2", "constant target", 0))
	if viaZerolog != 1 || len(got) != 1 {
		t.Errorf("zerolog func should take precedence: zerolog=%d handler=%d", viaZerolog, len(got))
	}
}

func TestNumericalChecks(t *testing.T) {
	if err := CheckNumericalStability("loss", []float64{0.5}, 3); err != nil {
		t.Errorf("finite values flagged: %v", err)
	}

	err := CheckNumericalStability("evaluate", []float64{1, 2, nanValue()}, 7)
	var inst *NumericalInstabilityError
	if !As(err, &inst) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if inst.Iteration != 7 {
		t.Errorf("Iteration = %d, want 7", inst.Iteration)
	}

	if got := ClipValue(1.4, 0, 1); got != 1 {
		t.Errorf("ClipValue = %v", got)
	}
	if got := FloorPositive(-3, 1e-6); got != 1e-6 {
		t.Errorf("FloorPositive = %v", got)
	}
	if got := FloorPositive(nanValue(), 1e-6); got != 1e-6 {
		t.Errorf("FloorPositive(NaN) = %v", got)
	}
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}
