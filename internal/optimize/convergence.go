package optimize

import (
	"fmt"
	"math"
)

// ConvergenceStrategy decides when a search has converged given the history
// of per-iteration best scalarized scores (lower is better).
type ConvergenceStrategy interface {
	CheckConvergence(history []float64) (converged bool, reason string)
	Name() string
}

// ConvergenceConfig holds thresholds shared by the convergence strategies
type ConvergenceConfig struct {
	// NoImprovementIterations is the number of iterations without improvement before stopping
	NoImprovementIterations int
	// ScoreTolerance is the absolute tolerance for scores to be considered equal
	ScoreTolerance float64
	// MinIterations is the minimum number of iterations before convergence can be detected
	MinIterations int
	// PlateauIterations is the number of iterations with similar scores before stopping
	PlateauIterations int
}

// DefaultConvergenceConfig returns a default convergence configuration
func DefaultConvergenceConfig() *ConvergenceConfig {
	return &ConvergenceConfig{
		NoImprovementIterations: 10,
		ScoreTolerance:          1e-6,
		MinIterations:           5,
		PlateauIterations:       10,
	}
}

// NoImprovementStrategy converges when the best score has not improved for N iterations
type NoImprovementStrategy struct {
	config *ConvergenceConfig
}

// NewNoImprovementStrategy creates a new no-improvement convergence strategy
func NewNoImprovementStrategy(config *ConvergenceConfig) *NoImprovementStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &NoImprovementStrategy{config: config}
}

func (s *NoImprovementStrategy) Name() string {
	return "no_improvement"
}

func (s *NoImprovementStrategy) CheckConvergence(history []float64) (converged bool, reason string) {
	if len(history) < s.config.MinIterations {
		return false, ""
	}

	bestScore := math.MaxFloat64
	bestIteration := -1
	for i, score := range history {
		if score < bestScore-s.config.ScoreTolerance {
			bestScore = score
			bestIteration = i
		}
	}
	if bestIteration < 0 {
		return false, ""
	}

	iterationsSinceBest := len(history) - 1 - bestIteration
	if iterationsSinceBest >= s.config.NoImprovementIterations {
		return true, fmt.Sprintf("no improvement for %d iterations (best at iteration %d)", iterationsSinceBest, bestIteration)
	}
	return false, ""
}

// PlateauStrategy converges when the last N scores fall within the tolerance
type PlateauStrategy struct {
	config *ConvergenceConfig
}

// NewPlateauStrategy creates a new plateau convergence strategy
func NewPlateauStrategy(config *ConvergenceConfig) *PlateauStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &PlateauStrategy{config: config}
}

func (s *PlateauStrategy) Name() string {
	return "plateau"
}

func (s *PlateauStrategy) CheckConvergence(history []float64) (converged bool, reason string) {
	if len(history) < s.config.MinIterations || len(history) < s.config.PlateauIterations {
		return false, ""
	}

	recent := history[len(history)-s.config.PlateauIterations:]
	minScore, maxScore := recent[0], recent[0]
	for _, score := range recent {
		if score < minScore {
			minScore = score
		}
		if score > maxScore {
			maxScore = score
		}
	}

	if maxScore-minScore <= s.config.ScoreTolerance {
		return true, fmt.Sprintf("score plateaued for %d iterations (range: %.6g)", s.config.PlateauIterations, maxScore-minScore)
	}
	return false, ""
}

// CombinedStrategy converges as soon as any member strategy does
type CombinedStrategy struct {
	strategies []ConvergenceStrategy
}

// NewCombinedStrategy creates the default strategy combination
func NewCombinedStrategy(config *ConvergenceConfig) *CombinedStrategy {
	if config == nil {
		config = DefaultConvergenceConfig()
	}
	return &CombinedStrategy{
		strategies: []ConvergenceStrategy{
			NewNoImprovementStrategy(config),
			NewPlateauStrategy(config),
		},
	}
}

func (s *CombinedStrategy) Name() string {
	return "combined"
}

func (s *CombinedStrategy) CheckConvergence(history []float64) (converged bool, reason string) {
	for _, strategy := range s.strategies {
		if converged, reason := strategy.CheckConvergence(history); converged {
			return true, fmt.Sprintf("%s: %s", strategy.Name(), reason)
		}
	}
	return false, ""
}

// AddStrategy adds a custom strategy to the combination
func (s *CombinedStrategy) AddStrategy(strategy ConvergenceStrategy) {
	s.strategies = append(s.strategies, strategy)
}
