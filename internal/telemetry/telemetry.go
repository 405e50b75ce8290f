// Package telemetry collects Prometheus metrics about calibration runs and
// writes them in the node_exporter textfile format.
package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/YuminosukeSato/wrcfit/fit"
	"github.com/YuminosukeSato/wrcfit/pkg/errors"
	"github.com/YuminosukeSato/wrcfit/pkg/log"
)

// Fit outcomes used as the status label.
const (
	StatusOK           = "ok"
	StatusNotConverged = "not_converged"
	StatusError        = "error"
)

// Recorder owns a private registry so that repeated runs in one process do
// not collide with the default one.
type Recorder struct {
	reg *prometheus.Registry

	FitsTotal   *prometheus.CounterVec
	FitDuration *prometheus.HistogramVec
	FitLoss     *prometheus.GaugeVec
	Evaluations *prometheus.CounterVec
	Samples     *prometheus.GaugeVec
}

// NewRecorder registers the calibration collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		FitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wrcfit_fits_total",
				Help: "Total calibration runs by outcome",
			},
			[]string{"model", "mode", "status"},
		),
		FitDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wrcfit_fit_duration_seconds",
				Help:    "Wall time of one calibration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"model", "mode"},
		),
		FitLoss: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wrcfit_fit_loss",
				Help: "Calibration loss of the last fit",
			},
			[]string{"model", "mode", "quantile"},
		),
		Evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wrcfit_objective_evaluations_total",
				Help: "Total objective evaluations spent by the global search",
			},
			[]string{"model", "mode"},
		),
		Samples: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wrcfit_samples",
				Help: "Samples used and dropped by the last fit",
			},
			[]string{"kind"},
		),
	}
}

// Registry exposes the private registry, e.g. for promhttp.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// ObserveFit records one calibration. res may be nil when err is set.
func (r *Recorder) ObserveFit(model, mode string, res *fit.Result, err error) {
	if err != nil || res == nil {
		r.FitsTotal.WithLabelValues(model, mode, StatusError).Inc()
		return
	}
	status := StatusOK
	if !res.Converged {
		status = StatusNotConverged
	}
	model = res.Variant.String()
	r.FitsTotal.WithLabelValues(model, mode, status).Inc()
	r.FitDuration.WithLabelValues(model, mode).Observe(res.Duration.Seconds())
	r.FitLoss.WithLabelValues(model, mode, quantileLabel(res)).Set(res.Loss)
	r.Evaluations.WithLabelValues(model, mode).Add(float64(res.Evaluations))
	r.Samples.WithLabelValues("used").Set(float64(res.Samples))
	r.Samples.WithLabelValues("dropped").Set(float64(res.Dropped))
}

// ObserveQuantiles records every fit of qs.
func (r *Recorder) ObserveQuantiles(model string, qs *fit.QuantileSet, err error) {
	if err != nil || qs == nil {
		r.ObserveFit(model, log.ModeQuantile, nil, err)
		return
	}
	for _, res := range qs.Fits {
		r.ObserveFit(model, res.Mode, res, nil)
	}
}

// WriteTextfile writes the current metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return errors.Wrapf(err, "write metrics to %s", path)
	}
	return nil
}

func quantileLabel(res *fit.Result) string {
	if res.Mode != log.ModeQuantile {
		return ""
	}
	return strconv.FormatFloat(res.Quantile, 'g', -1, 64)
}
