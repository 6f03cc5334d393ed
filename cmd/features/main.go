package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"GoldCast/internal/batch"
	applogger "GoldCast/pkg/logger"
	"GoldCast/pkg/util"
)

func main() {
	in := flag.String("in", "", "comma separated input CSV files")
	out := flag.String("out", "features", "output directory")
	format := flag.String("format", "csv", "output format: csv, json or parquet")
	workers := flag.Int("workers", 4, "files processed concurrently")
	parallel := flag.Bool("parallel", false, "compute indicator columns concurrently")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	l, err := applogger.New(&applogger.Config{Level: *level, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	inputs := util.SplitList(*in)
	if len(inputs) == 0 {
		inputs = flag.Args()
	}
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: features -in a.csv,b.csv -out dir -format csv|json|parquet -workers N")
		os.Exit(2)
	}

	r, err := batch.NewRunner(*format, *out,
		batch.WithWorkers(*workers),
		batch.WithParallelIndicators(*parallel),
		batch.WithLogger(l),
	)
	if err != nil {
		l.Error("batch setup failed", applogger.Error(err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := r.Run(ctx, inputs)
	for _, res := range results {
		if res.Err != nil {
			l.Error("input failed", applogger.String("input", res.Input), applogger.Error(res.Err))
		}
	}
	failed := batch.Failed(results)
	l.Info("batch finished",
		applogger.Int("files", len(results)),
		applogger.Int("failed", failed),
	)
	if failed > 0 {
		os.Exit(1)
	}
}
