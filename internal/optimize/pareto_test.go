package optimize

import (
	"math"
	"testing"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

func minimizePair() []models.Objective {
	return []models.Objective{
		{Name: "cost", Direction: models.Minimize},
		{Name: "risk", Direction: models.Minimize},
	}
}

func frontierFrom(objectives ...[]float64) *Frontier {
	f := NewFrontier(minimizePair())
	for i, objs := range objectives {
		f.Merge([]float64{float64(i)}, objs)
	}
	return f
}

func objectiveSet(f *Frontier) map[[2]float64]bool {
	set := make(map[[2]float64]bool)
	for _, p := range f.Points() {
		set[[2]float64{p.Objectives[0], p.Objectives[1]}] = true
	}
	return set
}

func TestDominates(t *testing.T) {
	f := NewFrontier(minimizePair())
	cases := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"strictly better in all", []float64{1, 1}, []float64{2, 2}, true},
		{"better in one equal in other", []float64{1, 2}, []float64{2, 2}, true},
		{"equal vectors", []float64{1, 1}, []float64{1, 1}, false},
		{"trade-off", []float64{1, 3}, []float64{3, 1}, false},
		{"worse in one", []float64{1, 3}, []float64{2, 2}, false},
		{"length mismatch", []float64{1}, []float64{1, 1}, false},
	}
	for _, tc := range cases {
		if got := f.dominates(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: dominates(%v, %v) = %v, want %v", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDominatesWithMaximizeDirection(t *testing.T) {
	f := NewFrontier([]models.Objective{
		{Name: "reliability", Direction: models.Maximize},
		{Name: "cost", Direction: models.Minimize},
	})

	if !f.dominates([]float64{0.95, 100}, []float64{0.90, 100}) {
		t.Errorf("higher reliability at equal cost should dominate")
	}
	if f.dominates([]float64{0.90, 100}, []float64{0.95, 100}) {
		t.Errorf("lower reliability must not dominate")
	}
	if f.dominates([]float64{0.95, 120}, []float64{0.90, 100}) {
		t.Errorf("trade-off reported as dominance")
	}
}

func TestFrontierStoresNaturalScale(t *testing.T) {
	f := NewFrontier([]models.Objective{
		{Name: "reliability", Direction: models.Maximize},
		{Name: "cost", Direction: models.Minimize},
	})

	if !f.Merge([]float64{1}, []float64{0.90, 100}) {
		t.Fatalf("first merge rejected")
	}
	if f.Merge([]float64{2}, []float64{0.80, 100}) {
		t.Errorf("dominated candidate accepted")
	}
	if !f.Merge([]float64{3}, []float64{0.95, 90}) {
		t.Fatalf("dominating candidate rejected")
	}
	if f.Size() != 1 {
		t.Fatalf("expected frontier size 1, got %d", f.Size())
	}
	p := f.Points()[0]
	if p.Objectives[0] != 0.95 || p.Objectives[1] != 90 {
		t.Errorf("expected natural-scale objectives (0.95, 90), got %v", p.Objectives)
	}
}

func TestFrontierKeepsTradeOffs(t *testing.T) {
	f := frontierFrom(
		[]float64{1, 9},
		[]float64{2, 7},
		[]float64{4, 4},
		[]float64{7, 2},
		[]float64{9, 1},
	)
	if f.Size() != 5 {
		t.Fatalf("expected all 5 trade-off points kept, got %d", f.Size())
	}
}

func TestFrontierCollapsesToDominatingPoint(t *testing.T) {
	f := frontierFrom(
		[]float64{1, 9},
		[]float64{2, 7},
		[]float64{4, 4},
		[]float64{7, 2},
		[]float64{9, 1},
	)
	if !f.Merge([]float64{0}, []float64{0, 0}) {
		t.Fatalf("dominating point rejected")
	}
	if f.Size() != 1 {
		t.Fatalf("expected frontier to collapse to 1 point, got %d", f.Size())
	}
	p := f.Points()[0]
	if p.Objectives[0] != 0 || p.Objectives[1] != 0 {
		t.Errorf("wrong survivor: %v", p.Objectives)
	}
}

func TestFrontierRejectsDominatedCandidates(t *testing.T) {
	f := frontierFrom([]float64{1, 1})
	if f.Merge([]float64{9}, []float64{2, 2}) {
		t.Errorf("dominated candidate entered the frontier")
	}
	if f.Size() != 1 {
		t.Errorf("frontier grew on rejected merge: size %d", f.Size())
	}
}

func TestFrontierRejectsNonFiniteObjectives(t *testing.T) {
	f := frontierFrom([]float64{3, 3})
	cases := [][]float64{
		{math.NaN(), 1},
		{1, math.NaN()},
		{math.Inf(1), 1},
		{1, math.Inf(-1)},
	}
	for _, objs := range cases {
		if f.Merge([]float64{9}, objs) {
			t.Errorf("non-finite candidate %v entered the frontier", objs)
		}
	}
	if f.Size() != 1 {
		t.Errorf("frontier changed on rejected merges: size %d", f.Size())
	}
	if got := f.Points()[0].Objectives; got[0] != 3 || got[1] != 3 {
		t.Errorf("existing point disturbed: %v", got)
	}
}

func TestFrontierMergeIdempotent(t *testing.T) {
	f := NewFrontier(minimizePair())
	if !f.Merge([]float64{1}, []float64{3, 4}) {
		t.Fatalf("first merge rejected")
	}
	if f.Merge([]float64{1}, []float64{3, 4}) {
		t.Errorf("duplicate merge accepted")
	}
	if f.Size() != 1 {
		t.Errorf("expected size 1 after duplicate merge, got %d", f.Size())
	}
}

func TestFrontierRemovesNewlyDominated(t *testing.T) {
	f := frontierFrom(
		[]float64{5, 5},
		[]float64{1, 9},
	)
	if !f.Merge([]float64{2}, []float64{4, 4}) {
		t.Fatalf("improving candidate rejected")
	}
	set := objectiveSet(f)
	if len(set) != 2 || !set[[2]float64{4, 4}] || !set[[2]float64{1, 9}] {
		t.Errorf("expected {(4,4), (1,9)}, got %v", set)
	}
}

func TestFrontierPointsReturnsCopies(t *testing.T) {
	f := frontierFrom([]float64{1, 2})
	pts := f.Points()
	pts[0].Objectives[0] = 99
	if f.Points()[0].Objectives[0] != 1 {
		t.Errorf("mutating the returned slice leaked into the frontier")
	}
}
