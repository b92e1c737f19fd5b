package ocr

import (
	"context"
	"errors"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wudi/textkit/observability"
)

// DefaultWorkerCap bounds OCR parallelism. Recognition is CPU-bound, so
// unbounded fan-out degrades throughput through contention; the effective
// degree is min(cap, GOMAXPROCS).
const DefaultWorkerCap = 4

// PageText is the per-page outcome of a Runner batch. Index is the
// zero-based page index the text belongs to.
type PageText struct {
	Index int
	Text  string
	Err   error
}

// Runner executes OCR over a batch of page images with bounded parallelism
// and partial-failure isolation. Output order is always input order: slots
// are written by page index, never by completion order.
type Runner struct {
	engine Engine
	cap    int
	logger observability.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers overrides the worker cap. Values below 1 fall back to
// DefaultWorkerCap.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) { r.cap = n }
}

// WithRunnerLogger sets the logger the runner emits page-level events
// through.
func WithRunnerLogger(l observability.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner builds a runner over the given engine.
func NewRunner(engine Engine, opts ...RunnerOption) *Runner {
	r := &Runner{engine: engine, logger: observability.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) workers() int {
	n := r.cap
	if n < 1 {
		n = DefaultWorkerCap
	}
	if procs := runtime.GOMAXPROCS(0); procs < n {
		n = procs
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Run recognizes every input and returns one PageText per input, in input
// order. A single page's failure (missing image, engine error) is recorded
// on its slot and never aborts the batch; failed pages are not retried
// within the call. The only whole-batch failure is context cancellation.
func (r *Runner) Run(ctx context.Context, inputs []Input) ([]PageText, error) {
	out := make([]PageText, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, in := range inputs {
		out[i] = PageText{Index: in.PageIndex}
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if len(in.Image) == 0 {
				out[i].Err = errors.New("empty page image")
				return nil
			}
			start := time.Now()
			res, err := r.engine.Recognize(ctx, in)
			if err != nil {
				r.logger.Warn("page recognition failed",
					observability.Int("page", in.PageIndex+1),
					observability.Error("error", err),
				)
				out[i].Err = err
				return nil
			}
			r.logger.Debug("page recognized",
				observability.Int("page", in.PageIndex+1),
				observability.Duration(observability.MetricOCRPageTime, time.Since(start)),
				observability.Int("chars", len(res.PlainText)),
			)
			out[i].Text = res.PlainText
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
