package evaluate

import (
	"fmt"
	"math"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/utils"
)

// BatchKind selects how many scenarios participate in one evaluation call
type BatchKind string

const (
	// BatchFull uses every scenario, consuming no randomness
	BatchFull BatchKind = "full"
	// BatchFixed draws a fixed number of scenarios without replacement
	BatchFixed BatchKind = "fixed"
	// BatchFraction draws a fraction of the scenario population
	BatchFraction BatchKind = "fraction"
)

// BatchSpec describes the scenario subset used for one evaluation
type BatchSpec struct {
	Kind     BatchKind
	N        int
	Fraction float64
}

// FullBatch evaluates every scenario
func FullBatch() BatchSpec {
	return BatchSpec{Kind: BatchFull}
}

// FixedBatch evaluates a uniform sample of n scenarios
func FixedBatch(n int) BatchSpec {
	return BatchSpec{Kind: BatchFixed, N: n}
}

// FractionBatch evaluates max(1, round(population*f)) scenarios
func FractionBatch(f float64) BatchSpec {
	return BatchSpec{Kind: BatchFraction, Fraction: f}
}

// Validate checks the spec against a scenario population size
func (b BatchSpec) Validate(population int) error {
	switch b.Kind {
	case BatchFull:
		return nil
	case BatchFixed:
		if b.N <= 0 {
			return &sim.ValidationError{Field: "batch", Reason: fmt.Sprintf("fixed batch size must be positive, got %d", b.N)}
		}
		if b.N > population {
			return &sim.ValidationError{Field: "batch", Reason: fmt.Sprintf("fixed batch size %d exceeds scenario population %d", b.N, population)}
		}
		return nil
	case BatchFraction:
		if b.Fraction <= 0 || b.Fraction > 1 {
			return &sim.ValidationError{Field: "batch", Reason: fmt.Sprintf("fraction must be in (0, 1], got %v", b.Fraction)}
		}
		return nil
	default:
		return &sim.ValidationError{Field: "batch", Reason: fmt.Sprintf("unknown batch kind %q", b.Kind)}
	}
}

// Sample selects the 0-based scenario indices participating in one
// evaluation. Full batches return every index in order without consuming
// randomness; fixed and fraction batches take a prefix of a uniformly random
// permutation drawn from rng. The spec is re-validated against the current
// population on every call, not just at construction time.
func (b BatchSpec) Sample(population int, rng *utils.RandSource) ([]int, error) {
	if err := b.Validate(population); err != nil {
		return nil, err
	}

	switch b.Kind {
	case BatchFull:
		indices := make([]int, population)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	case BatchFixed:
		return rng.Perm(population)[:b.N], nil
	default: // BatchFraction
		n := int(math.Round(float64(population) * b.Fraction))
		if n < 1 {
			n = 1
		}
		return rng.Perm(population)[:n], nil
	}
}
