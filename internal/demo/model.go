// Package demo provides the reference accumulator model: a policy adds a
// fixed increment to a scalar state each year, scenarios perturb the result
// with a shock and optional noise. It backs the CLI, the tests, and the
// distributed worker registry.
package demo

import (
	"fmt"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/utils"
)

// Config fixes the planning horizon in years
type Config struct {
	Horizon int
}

// TimeAxis enumerates the years 1..Horizon
func (c Config) TimeAxis(sim.Scenario) ([]any, error) {
	if c.Horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	axis := make([]any, c.Horizon)
	for i := range axis {
		axis[i] = i + 1
	}
	return axis, nil
}

// InitialState starts the accumulator at the scenario's starting value
func (c Config) InitialState(scenario sim.Scenario, _ *utils.RandSource) (sim.State, error) {
	sc := scenario.(Scenario)
	return State{Value: sc.Start}, nil
}

// Outcome reports the final accumulator value and the total increment spent
func (c Config) Outcome(records []sim.StepRecord, _ sim.Scenario) (sim.Outcome, error) {
	var final, total float64
	for _, r := range records {
		rec := r.(StepRecord)
		final = rec.Value
		total += rec.Increment
	}
	return map[string]float64{
		"final_value":     final,
		"total_increment": total,
	}, nil
}

// Scenario is one realization of exogenous uncertainty: a starting value, a
// per-year shock, and the noise scale applied to each step.
type Scenario struct {
	Start float64
	Shock float64
	Noise float64
}

// Validate rejects negative noise scales
func (s Scenario) Validate() error {
	if s.Noise < 0 {
		return fmt.Errorf("noise must be non-negative, got %v", s.Noise)
	}
	return nil
}

// Policy adds a constant increment each year
type Policy struct {
	Increment float64
}

// Action returns the yearly increment
func (p Policy) Action(sim.State, models.TimeStep, sim.Scenario) (sim.Action, error) {
	return p.Increment, nil
}

// Params returns the flat parameter vector
func (p Policy) Params() []float64 {
	return []float64{p.Increment}
}

// WithParams constructs a policy from a flat parameter vector
func (p Policy) WithParams(params []float64) (sim.Policy, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("expected 1 parameter, got %d", len(params))
	}
	return Policy{Increment: params[0]}, nil
}

// Bounds returns the per-parameter bounds
func (p Policy) Bounds() []models.Bound {
	return []models.Bound{{Lower: 0, Upper: 10}}
}

// State is the accumulator value after the most recent year
type State struct {
	Value float64
}

// StepRecord captures one year: the value after the step and the increment applied
type StepRecord struct {
	Value     float64
	Increment float64
}

// Step returns a new state advanced by the action, the scenario shock, and
// scenario-scaled noise. The receiver is never mutated.
func (s State) Step(action sim.Action, _ models.TimeStep, _ sim.Config, scenario sim.Scenario, rng *utils.RandSource) (sim.State, sim.StepRecord, error) {
	sc := scenario.(Scenario)
	inc := action.(float64)
	next := State{Value: s.Value + inc + sc.Shock + rng.NormFloat64(0, sc.Noise)}
	return next, StepRecord{Value: next.Value, Increment: inc}, nil
}

// GenerateScenarios draws n stochastic scenarios from a seeded source
func GenerateScenarios(n int, seed int64) []sim.Scenario {
	rng := utils.NewRandSource(seed)
	scenarios := make([]sim.Scenario, n)
	for i := range scenarios {
		scenarios[i] = Scenario{
			Start: rng.UniformFloat64(0, 5),
			Shock: rng.NormFloat64(0, 0.5),
			Noise: rng.UniformFloat64(0, 0.2),
		}
	}
	return scenarios
}
