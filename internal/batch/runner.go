// Package batch converts price-history files into feature tables on disk.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"GoldCast/internal/saver"
	"GoldCast/internal/services/features"
	"GoldCast/internal/services/table"
	applogger "GoldCast/pkg/logger"
)

// ErrDuplicateOutput marks an input whose output path is already taken by an
// earlier input in the same run.
var ErrDuplicateOutput = errors.New("duplicate output path")

// Result describes the outcome for one input file.
type Result struct {
	Input    string
	Output   string
	RowsIn   int
	RowsOut  int
	Warnings []string
	Err      error
	Elapsed  time.Duration
}

// Runner processes input files with a bounded number of workers.
type Runner struct {
	saver    saver.FeatureSaver
	outDir   string
	workers  int
	parallel bool
	l        *applogger.Logger
}

type Option func(*Runner)

// WithWorkers bounds concurrent files; values below 1 mean one worker.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n < 1 {
			n = 1
		}
		r.workers = n
	}
}

// WithParallelIndicators computes indicator columns concurrently inside each file.
func WithParallelIndicators(enabled bool) Option {
	return func(r *Runner) { r.parallel = enabled }
}

func WithLogger(l *applogger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.l = l
		}
	}
}

// NewRunner validates the output format and creates outDir.
func NewRunner(format, outDir string, opts ...Option) (*Runner, error) {
	s := saver.NewFeatureSaver(format)
	if s == nil {
		return nil, fmt.Errorf("unsupported format %q (use: %s)", format, strings.Join(saver.Formats, ", "))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	r := &Runner{saver: s, outDir: outDir, workers: 4, l: applogger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run processes every input and returns one result per input, in input order.
// A failing file never stops the others. Inputs mapping to an output path
// already claimed by an earlier input fail with ErrDuplicateOutput.
func (r *Runner) Run(ctx context.Context, inputs []string) []Result {
	results := make([]Result, len(inputs))
	claimed := make(map[string]string, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, in := range inputs {
		out := r.OutputPath(in)
		if first, ok := claimed[out]; ok {
			results[i] = Result{Input: in, Output: out, Err: fmt.Errorf("%w: %s is written by %s", ErrDuplicateOutput, out, first)}
			r.l.Error("duplicate output", applogger.String("input", in), applogger.String("output", out))
			continue
		}
		claimed[out] = in
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Input: in, Err: err}
				return nil
			}
			results[i] = r.processFile(in)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// OutputPath maps an input file to its feature table path.
func (r *Runner) OutputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(r.outDir, base+"_features."+r.saver.Extension())
}

func (r *Runner) processFile(input string) (res Result) {
	start := time.Now()
	res.Input = input
	defer func() { res.Elapsed = time.Since(start) }()

	f, err := os.Open(input)
	if err != nil {
		res.Err = fmt.Errorf("open: %w", err)
		return res
	}
	bars, warnings, err := table.ReadBars(f)
	f.Close()
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", input, err)
		return res
	}

	t := features.Process(bars, features.WithParallel(r.parallel))
	res.RowsIn = t.RowsIn
	res.RowsOut = len(t.Rows)
	res.Warnings = append(warnings, t.Warnings...)
	if t.Empty() {
		res.Warnings = append(res.Warnings, "no complete feature rows")
	}

	res.Output = r.OutputPath(input)
	if err := r.saver.Save(t, res.Output); err != nil {
		res.Err = fmt.Errorf("save %s: %w", res.Output, err)
		return res
	}
	r.l.Info("features written",
		applogger.String("input", input),
		applogger.String("output", res.Output),
		applogger.Int("rows_in", res.RowsIn),
		applogger.Int("rows_out", res.RowsOut),
	)
	for _, w := range res.Warnings {
		r.l.Warn("input warning", applogger.String("input", input), applogger.String("warning", w))
	}
	return res
}

// Failed counts results carrying an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
