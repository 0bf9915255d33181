// Package models holds the value types shared between the simulation engine,
// the evaluation layer, and the optimization frontier.
package models

import "fmt"

// Direction indicates whether an objective should be minimized or maximized
type Direction string

const (
	// Minimize means lower metric values are better
	Minimize Direction = "minimize"
	// Maximize means higher metric values are better
	Maximize Direction = "maximize"
)

// Valid reports whether the direction is one of the two known values
func (d Direction) Valid() bool {
	return d == Minimize || d == Maximize
}

// Objective pairs a metric name with an optimization direction
type Objective struct {
	Name      string    `yaml:"name"`
	Direction Direction `yaml:"direction"`
}

// ValidateObjectives checks that the objective list is non-empty, every
// direction is known, and no metric name appears twice.
func ValidateObjectives(objectives []Objective) error {
	if len(objectives) == 0 {
		return fmt.Errorf("objectives: at least one objective must be defined")
	}
	seen := make(map[string]bool, len(objectives))
	for i, obj := range objectives {
		if obj.Name == "" {
			return fmt.Errorf("objectives[%d]: name cannot be empty", i)
		}
		if !obj.Direction.Valid() {
			return fmt.Errorf("objectives[%d] %s: direction must be minimize or maximize, got %q", i, obj.Name, obj.Direction)
		}
		if seen[obj.Name] {
			return fmt.Errorf("objectives[%d]: duplicate objective name %q", i, obj.Name)
		}
		seen[obj.Name] = true
	}
	return nil
}

// Bound is a per-parameter lower/upper pair
type Bound struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// ValidateBounds checks that every dimension satisfies lower <= upper
func ValidateBounds(bounds []Bound) error {
	if len(bounds) == 0 {
		return fmt.Errorf("bounds: at least one parameter bound must be defined")
	}
	for i, b := range bounds {
		if b.Lower > b.Upper {
			return fmt.Errorf("bounds[%d]: lower %v exceeds upper %v", i, b.Lower, b.Upper)
		}
	}
	return nil
}

// MetricsRecord maps metric names to aggregated real values. It is the
// output contract of the user-supplied metric aggregation function.
type MetricsRecord map[string]float64

// CRNConfig configures common-random-numbers variance reduction.
// Immutable once constructed.
type CRNConfig struct {
	Enabled  bool  `yaml:"enabled"`
	BaseSeed int64 `yaml:"base_seed"`
}

// TimeStep pairs a 1-based step index with the step's domain value
// (a year, a date, a fractional time, ...).
type TimeStep struct {
	Index int
	Value any
}

// ParetoPoint is one member of the Pareto frontier. Objectives are stored in
// their natural scale and direction, never pre-negated.
type ParetoPoint struct {
	Params     []float64
	Objectives []float64
}

// OptimizationResult holds the current Pareto frontier plus convergence
// metadata. It is created once by a search backend and then mutated in place
// by frontier merges.
type OptimizationResult struct {
	Frontier          []ParetoPoint
	Iterations        int
	Evaluations       int
	Converged         bool
	TerminationReason string
}
