// Package metrics builds metric aggregation functions from small declarative
// pieces: each aggregator names a metric, the outcome field it reads, and the
// statistic applied across scenarios.
package metrics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/evaluate"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

// Kind is the statistic an aggregator applies across scenario outcomes
type Kind string

const (
	// KindMean averages the field across outcomes
	KindMean Kind = "mean"
	// KindVariance takes the sample variance of the field
	KindVariance Kind = "variance"
	// KindQuantile takes an empirical quantile of the field
	KindQuantile Kind = "quantile"
)

// Aggregator produces one named metric from one outcome field
type Aggregator struct {
	Metric string  // name in the resulting metrics record
	Field  string  // outcome field to read
	Kind   Kind    // statistic to apply
	Q      float64 // quantile in [0, 1], used by KindQuantile only
}

// Mean aggregates the field by its mean
func Mean(metric, field string) Aggregator {
	return Aggregator{Metric: metric, Field: field, Kind: KindMean}
}

// Variance aggregates the field by its sample variance
func Variance(metric, field string) Aggregator {
	return Aggregator{Metric: metric, Field: field, Kind: KindVariance}
}

// Quantile aggregates the field by its empirical q-quantile
func Quantile(metric, field string, q float64) Aggregator {
	return Aggregator{Metric: metric, Field: field, Kind: KindQuantile, Q: q}
}

// Compose builds a metric function applying every aggregator to the outcome
// list. Outcomes must be map[string]float64 values.
func Compose(aggs ...Aggregator) evaluate.MetricFn {
	return func(outcomes []sim.Outcome) (models.MetricsRecord, error) {
		if len(outcomes) == 0 {
			return nil, fmt.Errorf("no outcomes to aggregate")
		}
		record := make(models.MetricsRecord, len(aggs))
		for _, agg := range aggs {
			values, err := fieldValues(outcomes, agg.Field)
			if err != nil {
				return nil, err
			}
			value, err := agg.apply(values)
			if err != nil {
				return nil, fmt.Errorf("metric %s: %w", agg.Metric, err)
			}
			record[agg.Metric] = value
		}
		return record, nil
	}
}

func (a Aggregator) apply(values []float64) (float64, error) {
	switch a.Kind {
	case KindMean:
		return stat.Mean(values, nil), nil
	case KindVariance:
		return stat.Variance(values, nil), nil
	case KindQuantile:
		if a.Q < 0 || a.Q > 1 {
			return 0, fmt.Errorf("quantile must be in [0, 1], got %v", a.Q)
		}
		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)
		return stat.Quantile(a.Q, stat.Empirical, sorted, nil), nil
	default:
		return 0, fmt.Errorf("unknown aggregator kind %q", a.Kind)
	}
}

func fieldValues(outcomes []sim.Outcome, field string) ([]float64, error) {
	values := make([]float64, len(outcomes))
	for i, outcome := range outcomes {
		fields, ok := outcome.(map[string]float64)
		if !ok {
			return nil, fmt.Errorf("outcome %d has type %T, expected map[string]float64", i, outcome)
		}
		value, ok := fields[field]
		if !ok {
			return nil, fmt.Errorf("outcome %d is missing field %q", i, field)
		}
		values[i] = value
	}
	return values, nil
}
