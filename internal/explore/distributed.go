package explore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/distrib"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
)

// DistributedExecutor dispatches each grid cell to a pool of worker
// processes and invokes the callback on the coordinating goroutine as
// results arrive. Workers hold the model; only indices, parameter vectors,
// and seeds cross the wire, so policies must be vector policies. Trace
// collection is not supported under this strategy.
type DistributedExecutor struct {
	Pool  *distrib.Pool
	Model string
	// MaxInFlight bounds concurrently dispatched cells.
	// Zero means twice the pool size.
	MaxInFlight int
}

// Name implements Executor
func (e *DistributedExecutor) Name() string { return "distributed" }

// RunGrid implements Executor
func (e *DistributedExecutor) RunGrid(grid *Grid, cb Callback) error {
	if err := grid.validate(); err != nil {
		return err
	}
	if e.Pool == nil || e.Pool.Size() == 0 {
		return &sim.ValidationError{Field: "executor", Reason: "distributed strategy requires at least one worker connection"}
	}
	if e.Model == "" {
		return &sim.ValidationError{Field: "executor", Reason: "distributed strategy requires a registered model name"}
	}

	params := make([][]float64, len(grid.Policies))
	for i, p := range grid.Policies {
		vp, ok := p.(sim.VectorPolicy)
		if !ok {
			return &sim.InterfaceNotImplementedError{
				Method:    "Params",
				Receiver:  fmt.Sprintf("%T", p),
				Signature: "Params() []float64 (policies must be vector policies to cross the worker boundary)",
			}
		}
		params[i] = vp.Params()
	}

	inFlight := e.MaxInFlight
	if inFlight <= 0 {
		inFlight = 2 * e.Pool.Size()
	}

	total := grid.Cells()
	results := make(chan distrib.CellResult, total)
	sem := make(chan struct{}, inFlight)

	var (
		wg       sync.WaitGroup
		failed   atomic.Bool
		once     sync.Once
		firstErr error
	)

	ctx := context.Background()
	go func() {
		for p := 1; p <= len(grid.Policies); p++ {
			for s := 1; s <= len(grid.Scenarios); s++ {
				// Skip undispatched cells after the first failure;
				// in-flight units may still complete.
				if failed.Load() {
					continue
				}
				req := distrib.CellRequest{
					Model:         e.Model,
					PolicyIndex:   p,
					ScenarioIndex: s,
					Params:        params[p-1],
					Seed:          grid.Streams.Seed(s),
				}
				wg.Add(1)
				sem <- struct{}{}
				go func() {
					defer wg.Done()
					defer func() { <-sem }()
					res, err := e.Pool.Evaluate(ctx, req)
					if err != nil {
						once.Do(func() {
							firstErr = err
							failed.Store(true)
						})
						return
					}
					results <- res
				}()
			}
		}
		wg.Wait()
		close(results)
	}()

	done := 0
	for res := range results {
		cb(res.PolicyIndex, res.ScenarioIndex, res.Outcome)
		done++
		if grid.Progress != nil {
			grid.Progress(done, total)
		}
	}
	return firstErr
}
