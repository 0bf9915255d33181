package explore

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ThreadedExecutor distributes the flattened cell list across a worker pool.
// The simulation call runs lock-free and in parallel; only the callback
// invocation and the progress counter are serialized under one mutex, so the
// callback body executes atomically with respect to other workers.
type ThreadedExecutor struct {
	// Workers is the pool size. Zero means the available hardware parallelism.
	Workers int
}

// Name implements Executor
func (e *ThreadedExecutor) Name() string { return "threaded" }

// RunGrid implements Executor
func (e *ThreadedExecutor) RunGrid(grid *Grid, cb Callback) error {
	return e.run(grid, cb, nil)
}

// RunGridTraced implements TracedExecutor
func (e *ThreadedExecutor) RunGridTraced(grid *Grid, cb TracedCallback) error {
	return e.run(grid, nil, cb)
}

type cell struct {
	policy, scenario int
}

func (e *ThreadedExecutor) run(grid *Grid, cb Callback, traced TracedCallback) error {
	if err := grid.validate(); err != nil {
		return err
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	total := grid.Cells()
	if workers > total {
		workers = total
	}

	work := make(chan cell, total)
	for p := 1; p <= len(grid.Policies); p++ {
		for s := 1; s <= len(grid.Scenarios); s++ {
			work <- cell{policy: p, scenario: s}
		}
	}
	close(work)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex // guards callback and progress only
		failed   atomic.Bool
		once     sync.Once
		firstErr error
		done     int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range work {
				// Stop picking up cells after the first failure; in-flight
				// cells on other workers may still complete.
				if failed.Load() {
					return
				}
				outcome, trace, err := grid.runCell(c.policy, c.scenario, traced != nil)
				if err != nil {
					once.Do(func() {
						firstErr = err
						failed.Store(true)
					})
					return
				}

				mu.Lock()
				if traced != nil {
					traced(c.policy, c.scenario, outcome, trace)
				} else {
					cb(c.policy, c.scenario, outcome)
				}
				done++
				if grid.Progress != nil {
					grid.Progress(done, total)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return firstErr
}
