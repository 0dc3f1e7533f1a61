package dynamo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RunSpec is everything one ensemble member needs. Each member must own its
// plant, controller and metrics; nothing is shared between runs.
type RunSpec struct {
	Plant      Plant
	Controller Controller
	Metrics    []Metric
}

// Factory builds the run with index i.
type Factory func(i int) (RunSpec, error)

type Ensemble struct {
	factory Factory
	numRuns int
	workers int
}

func NewEnsemble(factory Factory, numRuns int) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers bounds the number of runs executing at once.
func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run executes every member and returns the results in index order. The
// first failing run cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			spec, err := e.factory(idx)
			if err != nil {
				return err
			}

			s := New(spec.Plant, spec.Controller)
			for _, m := range spec.Metrics {
				s.AddMetric(m)
			}

			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
