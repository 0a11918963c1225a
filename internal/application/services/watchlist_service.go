package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/ytuqete/cryptoPulse/internal/application/command"
	"github.com/ytuqete/cryptoPulse/internal/application/interfaces"
	"github.com/ytuqete/cryptoPulse/internal/application/query"
	"github.com/ytuqete/cryptoPulse/internal/domain"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
	"github.com/ytuqete/cryptoPulse/internal/domain/repositories"
	"github.com/ytuqete/cryptoPulse/internal/infrastructure"
)

// WatchlistToggledEvent is published on infrastructure.SubjectWatchlistToggled.
type WatchlistToggledEvent struct {
	Email     string   `json:"email"`
	CoinID    string   `json:"coinId"`
	Watching  bool     `json:"watching"`
	Watchlist []string `json:"watchlist"`
}

type WatchlistService struct {
	userRepo  repositories.UserRepository
	publisher interfaces.EventPublisher
	logger    *slog.Logger
}

func NewWatchlistService(userRepo repositories.UserRepository, publisher interfaces.EventPublisher, logger *slog.Logger) *WatchlistService {
	if publisher == nil {
		publisher = infrastructure.NoopPublisher{}
	}
	return &WatchlistService{
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

var _ interfaces.WatchlistService = (*WatchlistService)(nil)

// Get returns the stored ids, or an empty list when no user has that email.
func (s *WatchlistService) Get(ctx context.Context, email string) (*query.WatchlistQueryResult, error) {
	email = entities.NormalizeEmail(email)
	result := &query.WatchlistQueryResult{Email: email, Watchlist: []string{}}
	if email == "" {
		return result, nil
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("watchlist get %q: %w", email, err)
	}
	if user != nil {
		result.Watchlist = append(result.Watchlist, user.Watchlist...)
	}
	return result, nil
}

// Authorize fails with domain.ErrForbidden unless email belongs to userID.
func (s *WatchlistService) Authorize(ctx context.Context, userID uuid.UUID, email string) error {
	email = entities.NormalizeEmail(email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("watchlist authorize %q: %w", email, err)
	}
	if user == nil || user.Id != userID {
		return fmt.Errorf("watchlist authorize %q for %s: %w", email, userID, domain.ErrForbidden)
	}
	return nil
}

func (s *WatchlistService) Toggle(ctx context.Context, toggleCommand *command.ToggleWatchCommand) (*command.ToggleWatchCommandResult, error) {
	email := entities.NormalizeEmail(toggleCommand.Email)
	coinID := strings.TrimSpace(toggleCommand.CoinID)
	if email == "" || coinID == "" {
		return nil, fmt.Errorf("watchlist toggle: email and coin id are required: %w", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("watchlist toggle %q: %w", email, err)
	}
	if user == nil {
		return nil, fmt.Errorf("watchlist toggle %q: %w", email, domain.ErrNotFound)
	}

	watching := user.ToggleWatch(coinID)
	if err := s.userRepo.UpdateWatchlist(ctx, user.Id, user.Watchlist); err != nil {
		return nil, fmt.Errorf("watchlist toggle %q: %w", email, err)
	}

	s.logger.Debug("watchlist toggled", "user_id", user.Id, "coin_id", coinID, "watching", watching)

	event := WatchlistToggledEvent{
		Email:     email,
		CoinID:    coinID,
		Watching:  watching,
		Watchlist: user.Watchlist,
	}
	if err := s.publisher.Publish(ctx, infrastructure.SubjectWatchlistToggled, event); err != nil {
		s.logger.Warn("publish watchlist event failed", "user_id", user.Id, "error", err)
	}

	return &command.ToggleWatchCommandResult{
		Watching:  watching,
		Watchlist: user.Watchlist,
	}, nil
}
