// Package optimize searches the policy parameter space for the Pareto
// frontier of the configured objectives. Backends propose candidate
// parameter vectors; every evaluated candidate is merged into a running
// frontier regardless of how the backend itself ranks it.
package optimize

import (
	"math"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

// Frontier maintains the non-dominated set of evaluated candidates.
// Objective vectors are stored in their natural scale and direction;
// dominance checks negate maximize components on the fly so comparisons
// are uniformly minimization.
type Frontier struct {
	signs  []float64
	points []models.ParetoPoint
}

// NewFrontier creates an empty frontier for the given objective list.
func NewFrontier(objectives []models.Objective) *Frontier {
	signs := make([]float64, len(objectives))
	for i, obj := range objectives {
		if obj.Direction == models.Maximize {
			signs[i] = -1
		} else {
			signs[i] = 1
		}
	}
	return &Frontier{signs: signs}
}

// Size returns the number of non-dominated points
func (f *Frontier) Size() int {
	return len(f.points)
}

// Points returns a copy of the current frontier
func (f *Frontier) Points() []models.ParetoPoint {
	out := make([]models.ParetoPoint, len(f.points))
	for i, p := range f.points {
		out[i] = models.ParetoPoint{
			Params:     append([]float64(nil), p.Params...),
			Objectives: append([]float64(nil), p.Objectives...),
		}
	}
	return out
}

// Merge offers a candidate to the frontier, with objectives in natural
// scale. A candidate dominated by (or equal to) an existing point is
// discarded; otherwise it is added and every point it dominates is removed.
// Candidates with NaN or infinite objective values are discarded, since NaN
// comparisons would let them pass every dominance check. Merging the same
// candidate twice is a no-op. Returns true if the candidate entered the
// frontier.
func (f *Frontier) Merge(params, objectives []float64) bool {
	for _, v := range objectives {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for _, p := range f.points {
		if f.dominates(p.Objectives, objectives) || equalVectors(p.Objectives, objectives) {
			return false
		}
	}

	kept := f.points[:0]
	for _, p := range f.points {
		if !f.dominates(objectives, p.Objectives) {
			kept = append(kept, p)
		}
	}
	f.points = append(kept, models.ParetoPoint{
		Params:     append([]float64(nil), params...),
		Objectives: append([]float64(nil), objectives...),
	})
	return true
}

// dominates reports whether a dominates b: no worse in every component and
// strictly better in at least one, after flipping maximize components into
// minimization space.
func (f *Frontier) dominates(a, b []float64) bool {
	if len(a) != len(b) || len(a) != len(f.signs) {
		return false
	}
	strict := false
	for i := range a {
		av, bv := f.signs[i]*a[i], f.signs[i]*b[i]
		if av > bv {
			return false
		}
		if av < bv {
			strict = true
		}
	}
	return strict
}

func equalVectors(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
