package explore

// SequentialExecutor iterates policies then scenarios on the calling
// goroutine. Callback delivery is strictly row-major:
// (1,1), (1,2), ..., (1,S), (2,1), ...
type SequentialExecutor struct{}

// Name implements Executor
func (SequentialExecutor) Name() string { return "sequential" }

// RunGrid implements Executor
func (e SequentialExecutor) RunGrid(grid *Grid, cb Callback) error {
	return e.run(grid, cb, nil)
}

// RunGridTraced implements TracedExecutor
func (e SequentialExecutor) RunGridTraced(grid *Grid, cb TracedCallback) error {
	return e.run(grid, nil, cb)
}

func (SequentialExecutor) run(grid *Grid, cb Callback, traced TracedCallback) error {
	if err := grid.validate(); err != nil {
		return err
	}

	total := grid.Cells()
	done := 0
	for p := 1; p <= len(grid.Policies); p++ {
		for s := 1; s <= len(grid.Scenarios); s++ {
			outcome, trace, err := grid.runCell(p, s, traced != nil)
			if err != nil {
				return err
			}
			if traced != nil {
				traced(p, s, outcome, trace)
			} else {
				cb(p, s, outcome)
			}
			done++
			if grid.Progress != nil {
				grid.Progress(done, total)
			}
		}
	}
	return nil
}
