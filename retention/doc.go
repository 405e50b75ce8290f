// Package retention holds the parametric soil water retention curve (WRC)
// models: their evaluators, the analytic starting points derived from the
// shape of a measured sample, and the search box each fit explores.
//
// Three families are registered in an immutable catalog:
//
//   - Van Genuchten (1980): θ = θr + (θs-θr) / (1 + (αψ)^n)^(1-1/n)
//   - Brooks and Corey (1964): θ = θr + (θs-θr) (ψ/ψd)^λ for ψ ≥ ψd, θs below ψd
//   - Fredlund and Xing (1994): θ = θs ln(e + (ψ/a)^n)^(-m)
//
// Every family has four parameters. A fitted curve is represented by the
// Curve value object (family tag plus parameter vector), which evaluates
// without any hidden state.
package retention
