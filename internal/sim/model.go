// Package sim drives the time-stepped simulation state machine for one
// (config, scenario, policy) triple. Behavior is supplied through capability
// interfaces on the caller's concrete types; the engine never inspects domain
// values beyond those interfaces.
package sim

import (
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/utils"
)

// Config holds the immutable, scenario-independent parameters of an
// experiment. Concrete configs additionally implement Initializer,
// TimeAxisProvider, and OutcomeComputer.
type Config interface{}

// Scenario is one realization of exogenous uncertainty. A collection of
// scenarios forms the evaluation set; all members must share one concrete type.
type Scenario interface{}

// Policy is a decision rule. Concrete policies implement ActionProvider, and
// optimizable policies additionally implement VectorPolicy.
type Policy interface{}

// State is the evolving simulation state, owned by exactly one run
type State interface{}

// Action is a single decision produced by a policy at one time step
type Action interface{}

// StepRecord is whatever the transition function emits per step
type StepRecord = any

// Outcome is the aggregate end-of-run result for one (config, scenario,
// policy) triple. Its shape is a contract with downstream metric code.
type Outcome = any

// Initializer produces the initial state for one run.
// Implemented by concrete Config types.
type Initializer interface {
	InitialState(scenario Scenario, rng *utils.RandSource) (State, error)
}

// TimeAxisProvider enumerates the time axis of a run as a finite,
// homogeneously-typed sequence of step values.
// Implemented by concrete Config types.
type TimeAxisProvider interface {
	TimeAxis(scenario Scenario) ([]any, error)
}

// OutcomeComputer reduces the collected step records to an outcome.
// Implemented by concrete Config types.
type OutcomeComputer interface {
	Outcome(records []StepRecord, scenario Scenario) (Outcome, error)
}

// ActionProvider maps (state, time step, scenario) to a decision.
// Implemented by concrete Policy types.
type ActionProvider interface {
	Action(state State, step models.TimeStep, scenario Scenario) (Action, error)
}

// Stepper advances the state by one time step, returning the replacement
// state and a step record. Implementations must return a new state value
// rather than mutating the receiver; that discipline is what makes
// per-scenario runs safe to execute concurrently.
// Implemented by concrete State types.
type Stepper interface {
	Step(action Action, step models.TimeStep, cfg Config, scenario Scenario, rng *utils.RandSource) (State, StepRecord, error)
}

// VectorPolicy is an optimizable policy with a flat real-valued parameter
// vector and per-parameter bounds. Optimization constructs many short-lived
// instances through WithParams.
type VectorPolicy interface {
	Policy
	Params() []float64
	WithParams(params []float64) (Policy, error)
	Bounds() []models.Bound
}
