package memsolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lox/internal/core/ports"
)

// NodeID is the unique identifier for the in-memory solver adapter node.
const NodeID graft.ID = "adapter.solver"

func init() {
	graft.Register(graft.Node[ports.Solver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Solver, error) {
			return New(), nil
		},
	})
}
