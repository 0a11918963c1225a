package repositories

import (
	"context"

	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
)

// SnapshotRepository retains the last good market snapshot per viewer.
// Load returns (nil, nil) when nothing is retained.
type SnapshotRepository interface {
	Save(ctx context.Context, viewer string, snapshot *entities.MarketSnapshot) error
	Load(ctx context.Context, viewer string) (*entities.MarketSnapshot, error)
	Delete(ctx context.Context, viewer string) error
}
