// Package evaluate runs the simulation state machine over a scenario set for
// one policy and reduces the per-scenario outcomes to a metrics record.
package evaluate

import (
	"fmt"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/utils"
)

// MetricFn reduces a list of per-scenario outcomes to named metric values.
// The evaluator never interprets its output beyond name lookup during
// objective extraction.
type MetricFn func(outcomes []sim.Outcome) (models.MetricsRecord, error)

// Evaluator evaluates policies against a fixed scenario set. It holds only
// read-only problem data and is safe to share across goroutines as long as
// each call supplies its own sampling rng.
type Evaluator struct {
	Config    sim.Config
	Scenarios []sim.Scenario
	Metric    MetricFn
	Batch     BatchSpec
	Streams   *StreamManager
	Cache     *sim.ValidationCache
}

// NewEvaluator creates an evaluator with a full batch and the given CRN setup
func NewEvaluator(cfg sim.Config, scenarios []sim.Scenario, metric MetricFn, crn models.CRNConfig) *Evaluator {
	return &Evaluator{
		Config:    cfg,
		Scenarios: scenarios,
		Metric:    metric,
		Batch:     FullBatch(),
		Streams:   NewStreamManager(crn),
		Cache:     sim.NewValidationCache(),
	}
}

// Evaluate runs one policy over the sampled scenario subset and reduces the
// outcomes with the metric function. No trace is retained; this path is
// optimized for repeated calls from a search loop. rng drives batch sampling
// only; per-scenario simulation randomness comes from the CRN stream manager.
func (e *Evaluator) Evaluate(policy sim.Policy, rng *utils.RandSource) (models.MetricsRecord, error) {
	if err := sim.ValidateScenariosCached(e.Cache, e.Scenarios); err != nil {
		return nil, err
	}
	if e.Metric == nil {
		return nil, &sim.ValidationError{Field: "metric", Reason: "metric aggregation function is required"}
	}

	indices, err := e.Batch.Sample(len(e.Scenarios), rng)
	if err != nil {
		return nil, err
	}

	outcomes := make([]sim.Outcome, len(indices))
	for i, idx := range indices {
		outcome, err := sim.Run(e.Config, e.Scenarios[idx], policy, sim.NoRecorder{}, e.Streams.Stream(idx+1))
		if err != nil {
			return nil, fmt.Errorf("scenario %d: %w", idx+1, err)
		}
		outcomes[i] = outcome
	}

	record, err := e.Metric(outcomes)
	if err != nil {
		return nil, fmt.Errorf("metric aggregation: %w", err)
	}
	return record, nil
}

// Objectives evaluates the policy and extracts the objective vector in
// minimization space.
func (e *Evaluator) Objectives(policy sim.Policy, objectives []models.Objective, rng *utils.RandSource) ([]float64, error) {
	record, err := e.Evaluate(policy, rng)
	if err != nil {
		return nil, err
	}
	return ExtractObjectives(record, objectives)
}
