package demo

import (
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/evaluate"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/metrics"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

// Metric aggregates demo outcomes across scenarios: the mean final value and
// the mean total increment.
func Metric() evaluate.MetricFn {
	return metrics.Compose(
		metrics.Mean("final_value", "final_value"),
		metrics.Mean("total_increment", "total_increment"),
	)
}

// Objectives returns the canonical demo objective list: grow the accumulator
// while spending as little increment as possible.
func Objectives() []models.Objective {
	return []models.Objective{
		{Name: "final_value", Direction: models.Maximize},
		{Name: "total_increment", Direction: models.Minimize},
	}
}
