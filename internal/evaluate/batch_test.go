package evaluate

import (
	"errors"
	"testing"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/utils"
)

func TestFullBatchUsesEveryScenario(t *testing.T) {
	indices, err := FullBatch().Sample(5, utils.NewRandSource(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(indices) != 5 {
		t.Fatalf("expected 5 indices, got %d", len(indices))
	}
	for i, idx := range indices {
		if idx != i {
			t.Fatalf("full batch should be in order, got %v", indices)
		}
	}
}

func TestFixedBatchDrawsWithoutReplacement(t *testing.T) {
	indices, err := FixedBatch(4).Sample(10, utils.NewRandSource(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(indices) != 4 {
		t.Fatalf("expected 4 indices, got %d", len(indices))
	}
	seen := make(map[int]bool)
	for _, idx := range indices {
		if idx < 0 || idx >= 10 {
			t.Fatalf("index %d out of range", idx)
		}
		if seen[idx] {
			t.Fatalf("index %d drawn twice: %v", idx, indices)
		}
		seen[idx] = true
	}
}

func TestFixedBatchOversizedRejectedAtCallTime(t *testing.T) {
	_, err := FixedBatch(11).Sample(10, utils.NewRandSource(1))
	var ve *sim.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestFractionBatchSize(t *testing.T) {
	cases := []struct {
		population int
		fraction   float64
		want       int
	}{
		{10, 0.5, 5},
		{10, 1.0, 10},
		{10, 0.04, 1}, // max(1, round(0.4))
		{7, 0.5, 4},   // round(3.5)
	}
	for _, c := range cases {
		indices, err := FractionBatch(c.fraction).Sample(c.population, utils.NewRandSource(3))
		if err != nil {
			t.Fatalf("fraction %v: unexpected error: %v", c.fraction, err)
		}
		if len(indices) != c.want {
			t.Errorf("fraction %v of %d: expected %d indices, got %d", c.fraction, c.population, c.want, len(indices))
		}
	}
}

func TestFractionBatchValidation(t *testing.T) {
	for _, f := range []float64{0, -0.5, 1.5} {
		if _, err := FractionBatch(f).Sample(10, utils.NewRandSource(1)); err == nil {
			t.Errorf("expected error for fraction %v", f)
		}
	}
}
