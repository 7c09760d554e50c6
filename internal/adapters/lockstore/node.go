package lockstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/lox/internal/core/ports"
)

// NodeID is the unique identifier for the lock store adapter node.
const NodeID graft.ID = "adapter.lock_store"

func init() {
	graft.Register(graft.Node[ports.LockStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LockStore, error) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			return NewStore(filepath.Join(cwd, DefaultFilename)), nil
		},
	})
}
