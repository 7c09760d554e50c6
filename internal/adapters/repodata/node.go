package repodata

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lox/internal/core/ports"
)

// NodeID is the unique identifier for the channel reader adapter node.
const NodeID graft.ID = "adapter.channel_reader"

func init() {
	graft.Register(graft.Node[ports.ChannelReader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ChannelReader, error) {
			return NewReader(), nil
		},
	})
}
