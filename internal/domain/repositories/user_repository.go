package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
)

// UserRepository is the credential store. Find methods return (nil, nil)
// when no user matches. Create returns an error wrapping domain.ErrConflict
// when the email is taken.
type UserRepository interface {
	Create(ctx context.Context, user *entities.ValidatedUser) (*entities.User, error)
	FindById(ctx context.Context, id uuid.UUID) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateWatchlist(ctx context.Context, id uuid.UUID, watchlist []string) error
}
