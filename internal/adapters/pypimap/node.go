package pypimap

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/lox/internal/core/ports"
)

// NodeID is the unique identifier for the purl lookup adapter node.
const NodeID graft.ID = "adapter.purl_lookup"

// MappingURLEnv selects the mapping service endpoint. When unset the
// lookup layer is empty and only overrides contribute names.
const MappingURLEnv = "LOX_MAPPING_URL"

func init() {
	graft.Register(graft.Node[ports.PurlLookup]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PurlLookup, error) {
			url := os.Getenv(MappingURLEnv)
			if url == "" {
				return StaticLookup{}, nil
			}
			return NewClient(url), nil
		},
	})
}
