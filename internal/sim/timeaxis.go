package sim

import (
	"fmt"
	"reflect"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/models"
)

// buildTimeAxis obtains the time axis from the config and validates it:
// non-empty, homogeneously typed, indexed 1-based in strictly increasing
// step order.
func buildTimeAxis(cfg Config, scenario Scenario) ([]models.TimeStep, error) {
	provider, ok := cfg.(TimeAxisProvider)
	if !ok {
		return nil, &InterfaceNotImplementedError{
			Method:    "TimeAxis",
			Receiver:  fmt.Sprintf("%T", cfg),
			Signature: "TimeAxis(scenario sim.Scenario) ([]any, error)",
		}
	}

	values, err := provider.TimeAxis(scenario)
	if err != nil {
		return nil, fmt.Errorf("time axis: %w", err)
	}
	if len(values) == 0 {
		return nil, &ValidationError{Field: "time axis", Reason: "must contain at least one step"}
	}

	want := reflect.TypeOf(values[0])
	steps := make([]models.TimeStep, len(values))
	for i, v := range values {
		if got := reflect.TypeOf(v); got != want {
			return nil, &TimeAxisTypeError{Index: i, Want: typeName(want), Got: typeName(got)}
		}
		steps[i] = models.TimeStep{Index: i + 1, Value: v}
	}
	return steps, nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
