package sim

import (
	"fmt"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/utils"
)

// Run executes one simulation: initialize, then one get-action/step pair per
// time axis entry in strict increasing order, then outcome aggregation over
// the collected step records. The recorder observes every step plus the
// initial state; pass NoRecorder when no trace is wanted.
func Run(cfg Config, scenario Scenario, policy Policy, recorder Recorder, rng *utils.RandSource) (Outcome, error) {
	axis, err := buildTimeAxis(cfg, scenario)
	if err != nil {
		return nil, err
	}

	init, ok := cfg.(Initializer)
	if !ok {
		return nil, &InterfaceNotImplementedError{
			Method:    "InitialState",
			Receiver:  fmt.Sprintf("%T", cfg),
			Signature: "InitialState(scenario sim.Scenario, rng *utils.RandSource) (sim.State, error)",
		}
	}
	provider, ok := policy.(ActionProvider)
	if !ok {
		return nil, &InterfaceNotImplementedError{
			Method:    "Action",
			Receiver:  fmt.Sprintf("%T", policy),
			Signature: "Action(state sim.State, step models.TimeStep, scenario sim.Scenario) (sim.Action, error)",
		}
	}
	computer, ok := cfg.(OutcomeComputer)
	if !ok {
		return nil, &InterfaceNotImplementedError{
			Method:    "Outcome",
			Receiver:  fmt.Sprintf("%T", cfg),
			Signature: "Outcome(records []sim.StepRecord, scenario sim.Scenario) (sim.Outcome, error)",
		}
	}

	state, err := init.InitialState(scenario, rng)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	if state == nil {
		return nil, fmt.Errorf("initialize: returned nil state")
	}
	if recorder != nil {
		recorder.Record(TraceEntry{State: state})
	}

	// The axis length is known up front, so the record sequence is allocated
	// once and indexed by step position.
	records := make([]StepRecord, len(axis))

	for i, step := range axis {
		action, err := provider.Action(state, step, scenario)
		if err != nil {
			return nil, fmt.Errorf("get action at step %d: %w", step.Index, err)
		}

		stepper, ok := state.(Stepper)
		if !ok {
			return nil, &InterfaceNotImplementedError{
				Method:    "Step",
				Receiver:  fmt.Sprintf("%T", state),
				Signature: "Step(action sim.Action, step models.TimeStep, cfg sim.Config, scenario sim.Scenario, rng *utils.RandSource) (sim.State, sim.StepRecord, error)",
			}
		}
		next, record, err := stepper.Step(action, step, cfg, scenario, rng)
		if err != nil {
			return nil, fmt.Errorf("run timestep %d: %w", step.Index, err)
		}
		if next == nil {
			return nil, fmt.Errorf("run timestep %d: returned nil state", step.Index)
		}

		records[i] = record
		if recorder != nil {
			recorder.Record(TraceEntry{State: next, Record: record, TimeValue: step.Value, Action: action})
		}
		state = next
	}

	outcome, err := computer.Outcome(records, scenario)
	if err != nil {
		return nil, fmt.Errorf("compute outcome: %w", err)
	}
	return outcome, nil
}
