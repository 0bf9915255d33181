// Package distrib implements the coordinator/worker protocol behind the
// distributed exploration strategy. Each grid cell crosses the wire as a
// structpb payload carrying indices, a parameter vector, and a seed; the
// worker reconstructs the model from its registry and runs the simulation
// locally.
package distrib

import (
	"encoding/json"
	"fmt"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
)

// CellRequest is one unit of distributed work
type CellRequest struct {
	Model         string
	PolicyIndex   int
	ScenarioIndex int
	Params        []float64
	Seed          int64
}

// CellResult is the outcome of one completed unit
type CellResult struct {
	PolicyIndex   int
	ScenarioIndex int
	Outcome       sim.Outcome
}

// encodeCellRequest packs a cell request into a structpb payload. The seed is
// carried as a string: seeds span the full int64 range and would lose
// precision as a JSON number.
func encodeCellRequest(req CellRequest) (*structpb.Struct, error) {
	params := make([]any, len(req.Params))
	for i, p := range req.Params {
		params[i] = p
	}
	return structpb.NewStruct(map[string]any{
		"model":          req.Model,
		"policy_index":   float64(req.PolicyIndex),
		"scenario_index": float64(req.ScenarioIndex),
		"params":         params,
		"seed":           strconv.FormatInt(req.Seed, 10),
	})
}

// decodeCellRequest unpacks a cell request payload
func decodeCellRequest(s *structpb.Struct) (CellRequest, error) {
	var req CellRequest
	if s == nil {
		return req, fmt.Errorf("empty cell request")
	}
	fields := s.GetFields()

	req.Model = fields["model"].GetStringValue()
	if req.Model == "" {
		return req, fmt.Errorf("cell request missing model name")
	}
	req.PolicyIndex = int(fields["policy_index"].GetNumberValue())
	req.ScenarioIndex = int(fields["scenario_index"].GetNumberValue())
	if req.PolicyIndex < 1 || req.ScenarioIndex < 1 {
		return req, fmt.Errorf("cell request has invalid indices (%d, %d)", req.PolicyIndex, req.ScenarioIndex)
	}

	seed, err := strconv.ParseInt(fields["seed"].GetStringValue(), 10, 64)
	if err != nil {
		return req, fmt.Errorf("cell request has invalid seed: %w", err)
	}
	req.Seed = seed

	if list := fields["params"].GetListValue(); list != nil {
		req.Params = make([]float64, len(list.GetValues()))
		for i, v := range list.GetValues() {
			req.Params[i] = v.GetNumberValue()
		}
	}
	return req, nil
}

// encodeCellResult packs a completed cell into a structpb payload.
// The outcome round-trips through JSON, so it must be JSON-encodable.
func encodeCellResult(res CellResult) (*structpb.Struct, error) {
	raw, err := json.Marshal(res.Outcome)
	if err != nil {
		return nil, fmt.Errorf("outcome is not serializable: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("outcome round-trip failed: %w", err)
	}
	outcome, err := structpb.NewValue(generic)
	if err != nil {
		return nil, fmt.Errorf("outcome is not representable: %w", err)
	}

	s, err := structpb.NewStruct(map[string]any{
		"policy_index":   float64(res.PolicyIndex),
		"scenario_index": float64(res.ScenarioIndex),
	})
	if err != nil {
		return nil, err
	}
	s.Fields["outcome"] = outcome
	return s, nil
}

// decodeCellResult unpacks a completed cell payload. Numeric outcome maps
// come back as map[string]float64 so coordinator-side consumers see the same
// shape as local strategies produce.
func decodeCellResult(s *structpb.Struct) (CellResult, error) {
	var res CellResult
	if s == nil {
		return res, fmt.Errorf("empty cell result")
	}
	fields := s.GetFields()
	res.PolicyIndex = int(fields["policy_index"].GetNumberValue())
	res.ScenarioIndex = int(fields["scenario_index"].GetNumberValue())
	if v, ok := fields["outcome"]; ok {
		res.Outcome = normalizeOutcome(v.AsInterface())
	}
	return res, nil
}

// normalizeOutcome converts all-numeric maps to map[string]float64
func normalizeOutcome(v any) sim.Outcome {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	numeric := make(map[string]float64, len(m))
	for k, val := range m {
		f, ok := val.(float64)
		if !ok {
			return v
		}
		numeric[k] = f
	}
	return numeric
}
