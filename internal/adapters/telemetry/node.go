package telemetry

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/lox/internal/adapters/telemetry/progrock"
	"go.trai.ch/lox/internal/core/ports"
)

// TracerNodeID is the unique identifier for the telemetry adapter Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

// ProgressEnv selects the progrock progress renderer when set to a
// non-empty value. The default tracer is silent.
const ProgressEnv = "LOX_PROGRESS"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Tracer, error) {
			if os.Getenv(ProgressEnv) != "" {
				return progrock.New(), nil
			}
			return NewNoOpTracer(), nil
		},
	})
}
