package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ytuqete/cryptoPulse/internal/application/interfaces"
	"github.com/ytuqete/cryptoPulse/internal/application/services"
	"github.com/ytuqete/cryptoPulse/internal/config"
	"github.com/ytuqete/cryptoPulse/internal/delivery/dashboard"
	"github.com/ytuqete/cryptoPulse/internal/domain/repositories"
	"github.com/ytuqete/cryptoPulse/internal/infrastructure"
	"github.com/ytuqete/cryptoPulse/internal/infrastructure/db/mongo"
	"github.com/ytuqete/cryptoPulse/internal/infrastructure/db/relational"
	"github.com/ytuqete/cryptoPulse/internal/infrastructure/upstream"
	"github.com/ytuqete/cryptoPulse/internal/interface/rest"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("close resource failed", "error", err)
			}
		}
	}()

	userRepo, closeStore, err := openUserStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)

	var snapshots repositories.SnapshotRepository
	if cfg.Redis.URL != "" {
		redisStore, err := infrastructure.NewRedisService(ctx, cfg.Redis.URL, cfg.Redis.SnapshotTTL, logger)
		if err != nil {
			return err
		}
		closers = append(closers, redisStore)
		snapshots = redisStore
	} else {
		snapshots = infrastructure.NewMemorySnapshotStore(cfg.Redis.SnapshotTTL)
	}

	var publisher interfaces.EventPublisher = infrastructure.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := infrastructure.NewNATSPublisher(cfg.NATS.URL, logger)
		if err != nil {
			return err
		}
		closers = append(closers, natsPublisher)
		publisher = natsPublisher
	}

	var mailer interfaces.Mailer = infrastructure.NoopMailer{}
	switch cfg.Mail.Provider {
	case config.MailSendGrid:
		mailer = infrastructure.NewSendGridMailer(cfg.Mail.APIKey, cfg.Mail.Sender, logger)
	case config.MailResend:
		mailer = infrastructure.NewResendMailer(cfg.Mail.APIKey, cfg.Mail.Sender, logger)
	}

	upstreamOpts := []upstream.ClientOption{
		upstream.WithTimeout(cfg.Market.UpstreamTimeout),
		upstream.WithLogger(logger),
	}
	coingecko := upstream.NewCoinGecko(cfg.Market.CoinGeckoBaseURL, upstreamOpts...)
	llama := upstream.NewLlama(cfg.Market.LlamaBaseURL, upstreamOpts...)

	jwtService := infrastructure.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	authService := services.NewAuthService(userRepo, jwtService, publisher, mailer, logger)
	defer authService.Wait()
	watchlistService := services.NewWatchlistService(userRepo, publisher, logger)
	marketService := services.NewMarketService(coingecko, coingecko, llama, snapshots, services.MarketOptions{
		ReferenceAsset: cfg.Market.ReferenceAsset,
		ReferenceFiat:  cfg.Market.ReferenceFiat,
		CEXPageSize:    cfg.Market.CEXPageSize,
		DEXRevenueRate: cfg.Market.DEXRevenueRate,
		CEXRevenueRate: cfg.Market.CEXRevenueRate,
	}, logger)

	routerCfg := rest.RouterConfig{
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		AuthRequired: cfg.HTTP.AuthRequired,
	}
	if cfg.HTTP.AuthRateLimit > 0 {
		limiter := infrastructure.NewRateLimiter(cfg.HTTP.AuthRateLimit, cfg.HTTP.AuthRateBurst, 10*time.Minute)
		go limiter.RunCleanup(time.Minute, ctx.Done())
		routerCfg.AuthLimiter = limiter
	}

	e := rest.NewRouter(routerCfg, rest.NewHandler(authService, watchlistService, marketService, logger), logger)

	renderer, err := dashboard.NewRenderer()
	if err != nil {
		return fmt.Errorf("parse dashboard templates: %w", err)
	}
	sessions := dashboard.NewSessionManager(authService, cfg.CookieSecure)
	dashboard.NewHandler(authService, marketService, sessions, logger).Register(e, renderer)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("server listening", "addr", addr, "store", cfg.Store.Driver, "auth_required", cfg.HTTP.AuthRequired)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func openUserStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (repositories.UserRepository, io.Closer, error) {
	switch cfg.Driver {
	case config.StoreMongo:
		client, err := mongo.Connect(ctx, cfg.MongoURI, logger)
		if err != nil {
			return nil, nil, err
		}
		repo := mongo.NewUserRepo(client.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return repo, closerFunc(func() error { return client.Disconnect(context.Background()) }), nil

	default:
		db, err := relational.Open(cfg.Driver, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("database handle: %w", err)
		}
		return relational.NewUserRepository(db), sqlDB, nil
	}
}
