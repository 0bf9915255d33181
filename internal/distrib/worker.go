package distrib

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dossgollin-lab/SimOptDecisions-sub000/internal/sim"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/logger"
	"github.com/dossgollin-lab/SimOptDecisions-sub000/pkg/utils"
)

// Worker executes grid cells on behalf of a remote coordinator. Workers are
// stateless between cells; every request carries its full context.
type Worker struct {
	registry *Registry
	log      *slog.Logger
}

// NewWorker creates a worker backed by the given model registry
func NewWorker(registry *Registry, log *slog.Logger) *Worker {
	if log == nil {
		log = logger.Default
	}
	return &Worker{registry: registry, log: log}
}

// EvaluateCell implements WorkerServer: it reconstructs the policy from the
// parameter vector, seeds the scenario's generator, and runs one simulation.
func (w *Worker) EvaluateCell(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cell, err := decodeCellRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	model, ok := w.registry.Lookup(cell.Model)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "model %q not registered on this worker", cell.Model)
	}
	if cell.ScenarioIndex > len(model.Scenarios) {
		return nil, status.Errorf(codes.InvalidArgument, "scenario index %d exceeds %d registered scenarios", cell.ScenarioIndex, len(model.Scenarios))
	}

	var policy sim.Policy = model.Prototype
	if len(cell.Params) > 0 {
		policy, err = model.Prototype.WithParams(cell.Params)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "rebuild policy: %v", err)
		}
	}

	outcome, err := sim.Run(model.Config, model.Scenarios[cell.ScenarioIndex-1], policy, sim.NoRecorder{}, utils.NewRandSource(cell.Seed))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "cell (%d, %d): %v", cell.PolicyIndex, cell.ScenarioIndex, err)
	}

	w.log.Debug("cell evaluated",
		"model", cell.Model,
		"policy_index", cell.PolicyIndex,
		"scenario_index", cell.ScenarioIndex)

	resp, err := encodeCellResult(CellResult{
		PolicyIndex:   cell.PolicyIndex,
		ScenarioIndex: cell.ScenarioIndex,
		Outcome:       outcome,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

// Serve runs a gRPC server for the worker on the given listener, blocking
// until the server stops.
func (w *Worker) Serve(lis net.Listener) error {
	server := grpc.NewServer()
	RegisterWorkerServer(server, w)
	w.log.Info("worker listening", "addr", lis.Addr().String())
	if err := server.Serve(lis); err != nil {
		return fmt.Errorf("worker server: %w", err)
	}
	return nil
}
