package distrib

import (
	"math"
	"testing"
)

func TestCellRequestRoundTrip(t *testing.T) {
	req := CellRequest{
		Model:         "accumulator",
		PolicyIndex:   3,
		ScenarioIndex: 7,
		Params:        []float64{0.25, 4.5},
		Seed:          math.MaxInt64 - 12,
	}

	payload, err := encodeCellRequest(req)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := decodeCellRequest(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if got.Model != req.Model || got.PolicyIndex != req.PolicyIndex || got.ScenarioIndex != req.ScenarioIndex {
		t.Errorf("identity fields mangled: got %+v", got)
	}
	if got.Seed != req.Seed {
		t.Errorf("seed lost precision: want %d, got %d", req.Seed, got.Seed)
	}
	if len(got.Params) != 2 || got.Params[0] != 0.25 || got.Params[1] != 4.5 {
		t.Errorf("params mangled: got %v", got.Params)
	}
}

func TestDecodeCellRequestRejectsBadPayloads(t *testing.T) {
	if _, err := decodeCellRequest(nil); err == nil {
		t.Errorf("expected error for nil payload")
	}

	missing, err := encodeCellRequest(CellRequest{PolicyIndex: 1, ScenarioIndex: 1, Seed: 1})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := decodeCellRequest(missing); err == nil {
		t.Errorf("expected error for missing model name")
	}

	zeroIdx, err := encodeCellRequest(CellRequest{Model: "m", Seed: 1})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := decodeCellRequest(zeroIdx); err == nil {
		t.Errorf("expected error for zero indices")
	}
}

func TestCellResultRoundTrip(t *testing.T) {
	res := CellResult{
		PolicyIndex:   2,
		ScenarioIndex: 5,
		Outcome:       map[string]float64{"final_value": 12.5, "total_increment": 3},
	}

	payload, err := encodeCellResult(res)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := decodeCellResult(payload)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if got.PolicyIndex != 2 || got.ScenarioIndex != 5 {
		t.Errorf("indices mangled: got %+v", got)
	}
	outcome, ok := got.Outcome.(map[string]float64)
	if !ok {
		t.Fatalf("expected numeric outcome map, got %T", got.Outcome)
	}
	if outcome["final_value"] != 12.5 || outcome["total_increment"] != 3 {
		t.Errorf("outcome values mangled: got %v", outcome)
	}
}

func TestEncodeCellResultRejectsUnserializableOutcome(t *testing.T) {
	_, err := encodeCellResult(CellResult{PolicyIndex: 1, ScenarioIndex: 1, Outcome: make(chan int)})
	if err == nil {
		t.Fatalf("expected error for channel-valued outcome")
	}
}

func TestNormalizeOutcomePreservesMixedMaps(t *testing.T) {
	mixed := map[string]any{"value": 1.5, "label": "high"}
	if _, ok := normalizeOutcome(mixed).(map[string]any); !ok {
		t.Errorf("mixed map should stay generic")
	}
	numeric := map[string]any{"a": 1.0, "b": 2.0}
	if _, ok := normalizeOutcome(numeric).(map[string]float64); !ok {
		t.Errorf("all-numeric map should normalize to map[string]float64")
	}
}
