package optimize

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/logger"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/utils"
)

// CMAESBackend searches the parameter space with CMA-ES over the weighted
// objective sum. The search ranks candidates by scalar score, but every
// evaluated candidate is merged into the Pareto frontier, so non-dominated
// trade-offs found along the way are kept even when the scalar score
// discards them.
type CMAESBackend struct {
	// MaxEvaluations caps candidate evaluations. Zero means 200.
	MaxEvaluations int
	// Population is the CMA-ES population size. Zero means 4+floor(3*ln(n)).
	Population int
	// InitStepSize is the initial step in normalized [0,1] coordinates. Zero means 0.3.
	InitStepSize float64
	// Convergence stops the search early. Nil means the combined default.
	Convergence ConvergenceStrategy
	// SamplerSeed seeds batch subsampling. Zero means a time-based seed.
	SamplerSeed int64

	Log *slog.Logger
}

// Name implements SearchBackend
func (b *CMAESBackend) Name() string { return "cmaes" }

// Optimize implements SearchBackend
func (b *CMAESBackend) Optimize(problem *Problem) (*models.OptimizationResult, error) {
	if err := problem.Validate(); err != nil {
		return nil, err
	}

	log := b.Log
	if log == nil {
		log = logger.Default
	}

	bounds := problem.Prototype.Bounds()
	dim := len(bounds)

	maxEvals := b.MaxEvaluations
	if maxEvals <= 0 {
		maxEvals = 200
	}
	population := b.Population
	if population <= 0 {
		population = 4 + int(3.0*math.Log(float64(dim)))
	}
	stepSize := b.InitStepSize
	if stepSize <= 0 {
		stepSize = 0.3
	}
	convergence := b.Convergence
	if convergence == nil {
		convergence = NewCombinedStrategy(nil)
	}

	evaluator := problem.evaluator()
	var sampler *utils.RandSource
	if b.SamplerSeed != 0 {
		sampler = utils.NewRandSource(b.SamplerSeed)
	} else {
		sampler = utils.NewTimeSource()
	}

	frontier := NewFrontier(problem.Objectives)
	evalCount := 0
	var evalErr error

	// CMA-ES proposes points in normalized [0,1] coordinates and may step
	// outside them; raw values are clamped to the bounds before evaluation.
	fn := func(x []float64) float64 {
		if evalErr != nil {
			return math.Inf(1)
		}
		raw := denormalize(x, bounds)
		policy, err := problem.Prototype.WithParams(raw)
		if err != nil {
			evalErr = fmt.Errorf("rebuild policy from %v: %w", raw, err)
			return math.Inf(1)
		}
		objs, err := evaluator.Objectives(policy, problem.Objectives, sampler)
		if err != nil {
			evalErr = err
			return math.Inf(1)
		}
		evalCount++
		frontier.Merge(raw, naturalScale(objs, problem.Objectives))
		return problem.scalarize(objs)
	}

	converger := &strategyConverger{strategy: convergence}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Converger:       converger,
		Concurrent:      0,
	}
	method := &optimize.CmaEsChol{
		InitStepSize: stepSize,
		Population:   population,
	}

	initX := normalize(clampToBounds(problem.Prototype.Params(), bounds), bounds)

	log.Info("starting search",
		"backend", b.Name(),
		"dimensions", dim,
		"population", population,
		"max_evaluations", maxEvals)

	result, err := optimize.Minimize(optimize.Problem{Func: fn}, initX, settings, method)
	if evalErr != nil {
		return nil, evalErr
	}
	if err != nil && result == nil {
		return nil, fmt.Errorf("cmaes: %w", err)
	}

	converged := result.Status == optimize.FunctionConvergence
	reason := result.Status.String()
	if converger.reason != "" {
		reason = converger.reason
	}

	log.Info("search finished",
		"backend", b.Name(),
		"evaluations", evalCount,
		"iterations", len(converger.history),
		"frontier_size", frontier.Size(),
		"converged", converged,
		"reason", reason)

	return &models.OptimizationResult{
		Frontier:          frontier.Points(),
		Iterations:        len(converger.history),
		Evaluations:       evalCount,
		Converged:         converged,
		TerminationReason: reason,
	}, nil
}

// strategyConverger adapts a ConvergenceStrategy to the gonum converger
// hook, recording the per-iteration best score as the history.
type strategyConverger struct {
	strategy ConvergenceStrategy
	history  []float64
	reason   string
}

func (c *strategyConverger) Init(dim int) {
	c.history = c.history[:0]
	c.reason = ""
}

func (c *strategyConverger) Converged(loc *optimize.Location) optimize.Status {
	c.history = append(c.history, loc.F)
	if done, reason := c.strategy.CheckConvergence(c.history); done {
		c.reason = reason
		return optimize.FunctionConvergence
	}
	return optimize.NotTerminated
}

// naturalScale undoes the minimization-space negation the evaluator applies
// to maximize-direction objectives, so frontier points keep reported values.
func naturalScale(minimized []float64, objectives []models.Objective) []float64 {
	out := make([]float64, len(minimized))
	for i, v := range minimized {
		if i < len(objectives) && objectives[i].Direction == models.Maximize {
			v = -v
		}
		out[i] = v
	}
	return out
}

// normalize maps raw parameters into [0,1] coordinates. A dimension with
// equal bounds has no span to divide by and is held at coordinate zero.
func normalize(raw []float64, bounds []models.Bound) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		span := bounds[i].Upper - bounds[i].Lower
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - bounds[i].Lower) / span
	}
	return out
}

// denormalize maps [0,1] coordinates back to raw parameters, pinning
// equal-bound dimensions to their constant value.
func denormalize(x []float64, bounds []models.Bound) []float64 {
	raw := make([]float64, len(x))
	for i, v := range x {
		span := bounds[i].Upper - bounds[i].Lower
		if span == 0 {
			raw[i] = bounds[i].Lower
			continue
		}
		raw[i] = utils.ClampFloat64(bounds[i].Lower+v*span, bounds[i].Lower, bounds[i].Upper)
	}
	return raw
}

func clampToBounds(raw []float64, bounds []models.Bound) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = utils.ClampFloat64(v, bounds[i].Lower, bounds[i].Upper)
	}
	return out
}
