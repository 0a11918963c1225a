package interfaces

import (
	"context"

	"github.com/ytuqete/cryptoPulse/internal/infrastructure"
	"github.com/ytuqete/cryptoPulse/internal/infrastructure/upstream"
)

type TokenService interface {
	GenerateToken(userID string) (string, error)
	ParseToken(token string) (*infrastructure.Claims, error)
}

type Mailer interface {
	SendWelcome(ctx context.Context, recipientEmail string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

type PriceSource interface {
	ReferencePrice(ctx context.Context, asset, fiat string) (float64, error)
}

type CEXSource interface {
	Exchanges(ctx context.Context, perPage int) ([]upstream.CEXExchange, error)
}

type DEXSource interface {
	DEXOverview(ctx context.Context) ([]upstream.DEXProtocol, error)
}
