package evaluate

import (
	"fmt"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

// MetricMissingError reports a metric name an Objective requires that the
// aggregation function did not produce.
type MetricMissingError struct {
	Metric    string
	Available []string
}

func (e *MetricMissingError) Error() string {
	return fmt.Sprintf("objective metric %q missing from metrics record (available: %v)", e.Metric, e.Available)
}

// ExtractObjectives converts a metrics record to a numeric vector aligned
// with the objective list. Values for maximize-direction objectives are
// negated so downstream optimization always minimizes.
func ExtractObjectives(record models.MetricsRecord, objectives []models.Objective) ([]float64, error) {
	if err := models.ValidateObjectives(objectives); err != nil {
		return nil, err
	}

	vector := make([]float64, len(objectives))
	for i, obj := range objectives {
		value, ok := record[obj.Name]
		if !ok {
			names := make([]string, 0, len(record))
			for name := range record {
				names = append(names, name)
			}
			return nil, &MetricMissingError{Metric: obj.Name, Available: names}
		}
		if obj.Direction == models.Maximize {
			value = -value
		}
		vector[i] = value
	}
	return vector, nil
}
