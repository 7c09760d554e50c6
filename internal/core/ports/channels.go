package ports

import (
	"context"

	"go.trai.ch/lox/internal/core/domain"
)

// ChannelReader materializes channel contents into a package database for
// one resolution pass. Transport and authentication live behind this
// interface; the returned database is immutable for the duration of the
// pass.
//
//go:generate go run go.uber.org/mock/mockgen -source=channels.go -destination=mocks/mock_channels.go -package=mocks
type ChannelReader interface {
	Read(ctx context.Context, channels []string, platforms []domain.Platform) (*domain.PackageDatabase, error)
}
