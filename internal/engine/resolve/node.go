package resolve

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lox/internal/adapters/memsolver" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lox/internal/adapters/pypimap"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lox/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lox/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			memsolver.NodeID,
			pypimap.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Resolver, error) {
			solver, err := graft.Dep[ports.Solver](ctx)
			if err != nil {
				return nil, err
			}

			lookup, err := graft.Dep[ports.PurlLookup](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			return NewResolver(solver, lookup, tracer), nil
		},
	})
}
