// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/lox/internal/adapters/lockstore"
	_ "go.trai.ch/lox/internal/adapters/logger"
	_ "go.trai.ch/lox/internal/adapters/manifest"
	_ "go.trai.ch/lox/internal/adapters/memsolver"
	_ "go.trai.ch/lox/internal/adapters/pypimap"
	_ "go.trai.ch/lox/internal/adapters/repodata"
	_ "go.trai.ch/lox/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/lox/internal/app"
	_ "go.trai.ch/lox/internal/engine/resolve"
)
