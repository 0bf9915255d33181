// Package explore runs the full policy-by-scenario Cartesian grid under a
// selectable concurrency strategy and delivers each cell's outcome to a
// caller-supplied callback exactly once.
package explore

import (
	"fmt"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/evaluate"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

// Callback receives one grid cell's outcome. Indices are 1-based.
// Delivery order depends on the strategy; each cell is delivered exactly once.
type Callback func(policyIndex, scenarioIndex int, outcome sim.Outcome)

// TracedCallback additionally receives the full step-by-step trace of the cell
type TracedCallback func(policyIndex, scenarioIndex int, outcome sim.Outcome, trace []sim.TraceEntry)

// Grid describes one exploration: every policy crossed with every scenario.
// The per-scenario random stream comes from the CRN stream manager keyed by
// scenario index, so numeric outcomes are independent of execution order.
type Grid struct {
	Config    sim.Config
	Scenarios []sim.Scenario
	Policies  []sim.Policy
	Streams   *evaluate.StreamManager
	Progress  func(done, total int)
}

// Cells returns the total number of grid cells
func (g *Grid) Cells() int {
	return len(g.Policies) * len(g.Scenarios)
}

func (g *Grid) validate() error {
	if err := sim.ValidateScenarios(g.Scenarios); err != nil {
		return err
	}
	if len(g.Policies) == 0 {
		return &sim.ValidationError{Field: "policies", Reason: "collection must not be empty"}
	}
	if g.Streams == nil {
		g.Streams = evaluate.NewStreamManager(models.CRNConfig{})
	}
	return nil
}

// runCell executes one (policy, scenario) cell with 1-based indices,
// optionally collecting a trace.
func (g *Grid) runCell(policyIndex, scenarioIndex int, traced bool) (sim.Outcome, []sim.TraceEntry, error) {
	var recorder sim.Recorder = sim.NoRecorder{}
	var tr *sim.TraceRecorder
	if traced {
		tr = sim.NewTraceRecorder(g.traceSteps(scenarioIndex))
		recorder = tr
	}

	outcome, err := sim.Run(g.Config, g.Scenarios[scenarioIndex-1], g.Policies[policyIndex-1], recorder, g.Streams.Stream(scenarioIndex))
	if err != nil {
		return nil, nil, fmt.Errorf("cell (%d, %d): %w", policyIndex, scenarioIndex, err)
	}
	if tr != nil {
		return outcome, tr.Entries, nil
	}
	return outcome, nil, nil
}

// traceSteps peeks at the time axis to size trace recorders. A config
// without a usable axis sizes to zero and Run reports the real error.
func (g *Grid) traceSteps(scenarioIndex int) int {
	provider, ok := g.Config.(sim.TimeAxisProvider)
	if !ok {
		return 0
	}
	values, err := provider.TimeAxis(g.Scenarios[scenarioIndex-1])
	if err != nil {
		return 0
	}
	return len(values)
}

// Executor runs the full grid under one concurrency strategy
type Executor interface {
	Name() string
	RunGrid(grid *Grid, cb Callback) error
}

// TracedExecutor is implemented by strategies that can additionally collect
// per-cell traces. The distributed strategy does not: traces may contain
// values too large or too stateful to serialize across process boundaries.
type TracedExecutor interface {
	Executor
	RunGridTraced(grid *Grid, cb TracedCallback) error
}

// UnsupportedStrategyError reports an operation a strategy cannot perform
type UnsupportedStrategyError struct {
	Strategy  string
	Operation string
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("strategy %s does not support %s", e.Strategy, e.Operation)
}

// RunGridTraced runs the grid while collecting a full trace per cell.
// Returns UnsupportedStrategyError for strategies without trace support.
func RunGridTraced(exec Executor, grid *Grid, cb TracedCallback) error {
	traced, ok := exec.(TracedExecutor)
	if !ok {
		return &UnsupportedStrategyError{Strategy: exec.Name(), Operation: "traced grid runs"}
	}
	return traced.RunGridTraced(grid, cb)
}
