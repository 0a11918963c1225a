package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/ytuqete/cryptoPulse/internal/application/command"
	"github.com/ytuqete/cryptoPulse/internal/application/common"
	"github.com/ytuqete/cryptoPulse/internal/application/query"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
)

type AuthService interface {
	Register(ctx context.Context, registerCommand *command.RegisterUserCommand) (*command.RegisterUserCommandResult, error)
	Login(ctx context.Context, loginCommand *command.LoginUserCommand) (*command.LoginUserCommandResult, error)
	Verify(token string) (*common.SessionResult, error)
}

type WatchlistService interface {
	Get(ctx context.Context, email string) (*query.WatchlistQueryResult, error)
	Toggle(ctx context.Context, toggleCommand *command.ToggleWatchCommand) (*command.ToggleWatchCommandResult, error)
	Authorize(ctx context.Context, userID uuid.UUID, email string) error
}

// MarketService aggregates venue listings and retains the last good result
// per viewer. Refresh always returns the retained snapshot on failure,
// which is nil when the viewer has never had a successful refresh.
type MarketService interface {
	Refresh(ctx context.Context, viewer string) (*entities.MarketSnapshot, error)
	Current(ctx context.Context, viewer string) (*entities.MarketSnapshot, error)
	Forget(ctx context.Context, viewer string) error
}
