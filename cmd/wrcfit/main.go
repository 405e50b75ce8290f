// Command wrcfit calibrates water retention curves from measurement tables.
//
//	wrcfit fit samples.csv --model=VG --out=results
//	wrcfit fit samples.csv --model=FX --quantiles --seed=1
//	wrcfit curve --model=BC --params=0.45,10,-0.5,0.05
//	wrcfit models
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/YuminosukeSato/wrcfit/internal/telemetry"
	"github.com/YuminosukeSato/wrcfit/pkg/errors"
	"github.com/YuminosukeSato/wrcfit/pkg/log"
)

// Globals are the flags shared by every command.
type Globals struct {
	LogLevel    string `help:"Log level." enum:"debug,info,warn,error" default:"info" env:"WRCFIT_LOG_LEVEL"`
	MetricsFile string `help:"Write Prometheus metrics to this textfile after the run." type:"path" env:"WRCFIT_METRICS_FILE"`
}

type cli struct {
	Globals

	Fit    fitCmd    `cmd:"" help:"Calibrate a model against a measurement table."`
	Curve  curveCmd  `cmd:"" help:"Evaluate a model with given parameters."`
	Models modelsCmd `cmd:"" help:"List the available models."`
}

// env bundles what commands need from the process.
type env struct {
	stdout   io.Writer
	recorder *telemetry.Recorder
	logger   log.Logger
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "wrcfit: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("wrcfit"),
		kong.Description("Fit water retention curve models to suction and water content measurements."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return errors.Wrap(err, "build command line")
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level, _ := log.ParseLevel(c.LogLevel)
	logger := log.Setup(stderr, level)

	e := &env{
		stdout:   stdout,
		recorder: telemetry.NewRecorder(),
		logger:   logger,
	}
	runErr := kctx.Run(e)

	if c.MetricsFile != "" {
		if err := e.recorder.WriteTextfile(c.MetricsFile); err != nil {
			logger.Error("Failed to write metrics", err)
			if runErr == nil {
				runErr = err
			}
		}
	}
	return runErr
}
