package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ytuqete/cryptoPulse/internal/application/command"
	"github.com/ytuqete/cryptoPulse/internal/application/common"
	"github.com/ytuqete/cryptoPulse/internal/application/interfaces"
	"github.com/ytuqete/cryptoPulse/internal/application/mapper"
	"github.com/ytuqete/cryptoPulse/internal/domain"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
	"github.com/ytuqete/cryptoPulse/internal/domain/repositories"
	"github.com/ytuqete/cryptoPulse/internal/infrastructure"
)

const notifyTimeout = 10 * time.Second

// UserRegisteredEvent is published on infrastructure.SubjectUserRegistered.
type UserRegisteredEvent struct {
	UserID       uuid.UUID `json:"userId"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type AuthService struct {
	userRepo   repositories.UserRepository
	jwtService interfaces.TokenService
	publisher  interfaces.EventPublisher
	mailer     interfaces.Mailer
	logger     *slog.Logger

	notifications sync.WaitGroup
}

func NewAuthService(
	userRepo repositories.UserRepository,
	jwtService interfaces.TokenService,
	publisher interfaces.EventPublisher,
	mailer interfaces.Mailer,
	logger *slog.Logger,
) *AuthService {
	if publisher == nil {
		publisher = infrastructure.NoopPublisher{}
	}
	if mailer == nil {
		mailer = infrastructure.NoopMailer{}
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		publisher:  publisher,
		mailer:     mailer,
		logger:     logger,
	}
}

var _ interfaces.AuthService = (*AuthService)(nil)

func (s *AuthService) Register(ctx context.Context, registerCommand *command.RegisterUserCommand) (*command.RegisterUserCommandResult, error) {
	email := entities.NormalizeEmail(registerCommand.Email)
	if email == "" || registerCommand.Password == "" {
		return nil, fmt.Errorf("register: email and password are required: %w", domain.ErrInvalidInput)
	}

	// Check if user already exists
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: lookup %q: %w", email, err)
	}
	if existingUser != nil {
		return nil, fmt.Errorf("register: email %q: %w", email, domain.ErrConflict)
	}

	newUser := entities.NewUser(email, registerCommand.Password)
	if err := newUser.HashPassword(); err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	validatedUser, err := entities.NewValidatedUser(newUser)
	if err != nil {
		return nil, fmt.Errorf("register: %v: %w", err, domain.ErrInvalidInput)
	}

	// The store enforces uniqueness too, for concurrent registrations.
	createdUser, err := s.userRepo.Create(ctx, validatedUser)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info("user registered", "user_id", createdUser.Id, "email", createdUser.Email)
	s.notifyRegistered(createdUser)

	return &command.RegisterUserCommandResult{
		Result: mapper.NewUserResultFromEntity(createdUser),
	}, nil
}

// notifyRegistered publishes the registration event and sends the welcome
// mail off the request path. Failures are logged only.
func (s *AuthService) notifyRegistered(user *entities.User) {
	event := UserRegisteredEvent{
		UserID:       user.Id,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt,
	}

	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, infrastructure.SubjectUserRegistered, event); err != nil {
			s.logger.Warn("publish registration event failed", "user_id", event.UserID, "error", err)
		}
		if err := s.mailer.SendWelcome(ctx, event.Email); err != nil {
			s.logger.Warn("welcome mail failed", "user_id", event.UserID, "error", err)
		}
	}()
}

// Wait blocks until pending registration notifications have finished.
func (s *AuthService) Wait() {
	s.notifications.Wait()
}

func (s *AuthService) Login(ctx context.Context, loginCommand *command.LoginUserCommand) (*command.LoginUserCommandResult, error) {
	email := entities.NormalizeEmail(loginCommand.Email)
	if email == "" || loginCommand.Password == "" {
		return nil, fmt.Errorf("login: email and password are required: %w", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: lookup %q: %w", email, err)
	}
	if user == nil {
		return nil, fmt.Errorf("login: %q: %w", email, domain.ErrNotFound)
	}

	if err := user.CheckPassword(loginCommand.Password); err != nil {
		return nil, fmt.Errorf("login: %q: %w", email, domain.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user.Id.String())
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	return &command.LoginUserCommandResult{
		Token: token,
		User:  mapper.NewUserResultFromEntity(user),
	}, nil
}

func (s *AuthService) Verify(token string) (*common.SessionResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("verify: empty token: %w", domain.ErrUnauthorized)
	}

	claims, err := s.jwtService.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("verify: %v: %w", err, domain.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("verify: subject %q: %w", claims.UserID, domain.ErrUnauthorized)
	}

	result := &common.SessionResult{UserID: userID}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}

// IsCredentialError reports whether err is an expected login or
// registration failure rather than a server fault.
func IsCredentialError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrUnauthorized)
}
