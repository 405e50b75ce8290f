package fit

import (
	"github.com/YuminosukeSato/wrcfit/pkg/log"
	"github.com/YuminosukeSato/wrcfit/retention"
	"github.com/YuminosukeSato/wrcfit/search"
)

// Option is a function that configures a fit
type Option func(*config)

type config struct {
	quantile    float64
	hasQuantile bool
	seed        int64
	maxIter     int
	population  int
	tolerance   float64
	localSearch bool
	logger      log.Logger
}

func newConfig(opts []Option) *config {
	cfg := &config{
		seed:        -1,
		maxIter:     DefaultMaxIter,
		population:  search.DefaultPopulation,
		tolerance:   retention.DefaultTolerance,
		localSearch: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.GetLoggerWithName("fit")
	}
	return cfg
}

// DefaultMaxIter is the iteration budget of both searches.
const DefaultMaxIter = 1000

// WithQuantile switches to quantile calibration at level q, minimizing the
// pinball loss with the evolutionary search. q must lie in (0, 1).
func WithQuantile(q float64) Option {
	return func(c *config) {
		c.quantile = q
		c.hasQuantile = true
	}
}

// WithSeed fixes the random seed. Negative seeds draw a random one, which is
// reported in Result.Seed.
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithMaxIter sets the iteration budget: temperature steps for the point
// search, generations for the quantile search.
func WithMaxIter(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIter = n
		}
	}
}

// WithPopulation sets the number of candidates per generation of the
// quantile search.
func WithPopulation(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.population = n
		}
	}
}

// WithTolerance sets the relative slack of the saturation and residual
// content bounds around their empirical values.
func WithTolerance(tol float64) Option {
	return func(c *config) {
		if tol > 0 {
			c.tolerance = tol
		}
	}
}

// WithLocalSearch enables or disables the Nelder-Mead refinement of the
// point search.
func WithLocalSearch(enabled bool) Option {
	return func(c *config) {
		c.localSearch = enabled
	}
}

// WithLogger sets the logger
func WithLogger(l log.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
