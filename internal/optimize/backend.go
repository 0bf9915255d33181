package optimize

import (
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/evaluate"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

// Problem is one search over a policy parameter space: the simulation
// problem data, the objectives to trade off, and how candidate policies are
// scored against the scenario set.
type Problem struct {
	Config     sim.Config
	Scenarios  []sim.Scenario
	Prototype  sim.VectorPolicy
	Metric     evaluate.MetricFn
	Objectives []models.Objective

	// Batch controls scenario subsampling per evaluation. Zero value means full batch.
	Batch evaluate.BatchSpec
	// CRN configures the per-scenario random streams
	CRN models.CRNConfig
	// Weights scalarize the objective vector for backends that rank by a
	// single score. Empty means equal weights. The Pareto frontier is
	// maintained from the full vectors either way.
	Weights []float64
}

// Validate checks the problem for structural errors before a search starts
func (p *Problem) Validate() error {
	if p.Config == nil {
		return &sim.ValidationError{Field: "config", Reason: "simulation config is required"}
	}
	if p.Prototype == nil {
		return &sim.ValidationError{Field: "prototype", Reason: "a vector policy prototype is required"}
	}
	if p.Metric == nil {
		return &sim.ValidationError{Field: "metric", Reason: "metric aggregation function is required"}
	}
	if err := sim.ValidateScenarios(p.Scenarios); err != nil {
		return err
	}
	if err := models.ValidateObjectives(p.Objectives); err != nil {
		return err
	}
	if err := p.batch().Validate(len(p.Scenarios)); err != nil {
		return err
	}
	bounds := p.Prototype.Bounds()
	if len(bounds) == 0 {
		return &sim.ValidationError{Field: "prototype", Reason: "parameter bounds must not be empty"}
	}
	if err := models.ValidateBounds(bounds); err != nil {
		return err
	}
	if len(p.Weights) != 0 && len(p.Weights) != len(p.Objectives) {
		return &sim.ValidationError{Field: "weights", Reason: "weight count must match objective count"}
	}
	return nil
}

// batch returns the effective batch spec; the zero value means full batch
func (p *Problem) batch() evaluate.BatchSpec {
	if p.Batch.Kind == "" {
		return evaluate.FullBatch()
	}
	return p.Batch
}

// evaluator builds the shared policy evaluator for this problem
func (p *Problem) evaluator() *evaluate.Evaluator {
	ev := evaluate.NewEvaluator(p.Config, p.Scenarios, p.Metric, p.CRN)
	ev.Batch = p.batch()
	return ev
}

// scalarize reduces an objective vector in minimization space to one score
func (p *Problem) scalarize(objectives []float64) float64 {
	score := 0.0
	for i, v := range objectives {
		w := 1.0
		if len(p.Weights) > 0 {
			w = p.Weights[i]
		}
		score += w * v
	}
	return score
}

// SearchBackend runs one search algorithm over a problem
type SearchBackend interface {
	Name() string
	Optimize(problem *Problem) (*models.OptimizationResult, error)
}
