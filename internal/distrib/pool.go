package distrib

import (
	"context"
	"fmt"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Pool is a coordinator-side set of worker connections. Cells are assigned
// round-robin; each connection multiplexes concurrent RPCs.
type Pool struct {
	conns []*grpc.ClientConn
	next  atomic.Uint64
}

// DialPool connects to every worker address
func DialPool(addrs []string) (*Pool, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("at least one worker address is required")
	}
	p := &Pool{conns: make([]*grpc.ClientConn, 0, len(addrs))}
	for _, addr := range addrs {
		conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("dial worker %s: %w", addr, err)
		}
		p.conns = append(p.conns, conn)
	}
	return p, nil
}

// NewPoolWithConns builds a pool from pre-established connections.
// Used by tests running workers over in-memory listeners.
func NewPoolWithConns(conns ...*grpc.ClientConn) *Pool {
	return &Pool{conns: conns}
}

// Size returns the number of worker connections
func (p *Pool) Size() int {
	return len(p.conns)
}

// Close closes every worker connection
func (p *Pool) Close() {
	for _, conn := range p.conns {
		if conn != nil {
			_ = conn.Close()
		}
	}
}

// Evaluate runs one cell on the next worker in round-robin order
func (p *Pool) Evaluate(ctx context.Context, req CellRequest) (CellResult, error) {
	in, err := encodeCellRequest(req)
	if err != nil {
		return CellResult{}, err
	}

	conn := p.conns[p.next.Add(1)%uint64(len(p.conns))]
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, evaluateCellMethod, in, out); err != nil {
		return CellResult{}, fmt.Errorf("evaluate cell (%d, %d): %w", req.PolicyIndex, req.ScenarioIndex, err)
	}
	return decodeCellResult(out)
}
