// Package wrcfit calibrates soil water retention curves: the relation
// between matric suction ψ and volumetric water content θ.
//
// Three model families are available (Van Genuchten, Brooks and Corey,
// Fredlund and Xing). A calibration derives a seed and a search box from the
// shape of the measurements and minimizes the calibration loss with a bounded
// global search:
//
//	table, err := dataset.Open("samples.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := fit.Fit(ctx, table.Sample, "VanGenuchten", fit.WithSeed(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Named(), res.RMSE)
//
// # Packages
//
//   - retention: model catalog, samples, initial guesses and bounds
//   - search: annealing and evolutionary searches over bounded boxes
//   - metrics: MSE, RMSE, R² and the pinball loss
//   - fit: point and quantile calibration
//   - dataset: delimited measurement tables
//   - report: plots and CSV exports of fitted curves
//   - core/model: fitted state shared by estimators
//   - core/parallel: chunked parallel loops
//   - pkg/errors, pkg/log: error types and structured logging
//
// The wrcfit command in cmd/wrcfit wraps the same flow for the command line.
package wrcfit
