package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lox/internal/adapters/lockstore" //nolint:depguard // Wired in app layer
	"go.trai.ch/lox/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/lox/internal/adapters/manifest"  //nolint:depguard // Wired in app layer
	"go.trai.ch/lox/internal/adapters/repodata"  //nolint:depguard // Wired in app layer
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/lox/internal/engine/resolve"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID,
			repodata.NodeID,
			resolve.NodeID,
			lockstore.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ManifestLoader](ctx)
			if err != nil {
				return nil, err
			}

			channels, err := graft.Dep[ports.ChannelReader](ctx)
			if err != nil {
				return nil, err
			}

			resolver, err := graft.Dep[*resolve.Resolver](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.LockStore](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, channels, resolver, store, log), nil
		},
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: application, Logger: log}, nil
		},
	})
}
