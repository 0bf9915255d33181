package distrib

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName        = "simopt.v1.Worker"
	evaluateCellMethod = "/simopt.v1.Worker/EvaluateCell"
)

// WorkerServer is the server side of the worker protocol
type WorkerServer interface {
	EvaluateCell(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// The service descriptor is written by hand: the payloads are plain
// structpb messages, so there is no generated code to anchor it to.
var workerServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*WorkerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "EvaluateCell",
			Handler:    evaluateCellHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

func evaluateCellHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServer).EvaluateCell(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: evaluateCellMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WorkerServer).EvaluateCell(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterWorkerServer registers a worker implementation on a gRPC server
func RegisterWorkerServer(s *grpc.Server, srv WorkerServer) {
	s.RegisterService(&workerServiceDesc, srv)
}
