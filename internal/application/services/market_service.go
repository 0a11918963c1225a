package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ytuqete/cryptoPulse/internal/application/interfaces"
	"github.com/ytuqete/cryptoPulse/internal/domain"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
	"github.com/ytuqete/cryptoPulse/internal/domain/repositories"
	"github.com/ytuqete/cryptoPulse/internal/infrastructure/upstream"
	"golang.org/x/sync/errgroup"
)

// MarketOptions holds the aggregation constants.
type MarketOptions struct {
	ReferenceAsset string
	ReferenceFiat  string
	CEXPageSize    int
	DEXRevenueRate float64
	CEXRevenueRate float64
}

func DefaultMarketOptions() MarketOptions {
	return MarketOptions{
		ReferenceAsset: "bitcoin",
		ReferenceFiat:  "usd",
		CEXPageSize:    100,
		DEXRevenueRate: 0.002,
		CEXRevenueRate: 0.001,
	}
}

type MarketService struct {
	prices    interfaces.PriceSource
	cex       interfaces.CEXSource
	dex       interfaces.DEXSource
	snapshots repositories.SnapshotRepository
	opts      MarketOptions
	logger    *slog.Logger
	now       func() time.Time
}

func NewMarketService(
	prices interfaces.PriceSource,
	cex interfaces.CEXSource,
	dex interfaces.DEXSource,
	snapshots repositories.SnapshotRepository,
	opts MarketOptions,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		prices:    prices,
		cex:       cex,
		dex:       dex,
		snapshots: snapshots,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

var _ interfaces.MarketService = (*MarketService)(nil)

// Refresh fetches all three upstreams concurrently and retains the result
// for viewer. On failure the previously retained snapshot is returned
// unchanged together with an error wrapping domain.ErrUpstream.
func (s *MarketService) Refresh(ctx context.Context, viewer string) (*entities.MarketSnapshot, error) {
	var (
		price     float64
		exchanges []upstream.CEXExchange
		protocols []upstream.DEXProtocol
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.prices.ReferencePrice(gctx, s.opts.ReferenceAsset, s.opts.ReferenceFiat)
		if err != nil {
			return fmt.Errorf("reference price: %w", err)
		}
		price = p
		return nil
	})
	g.Go(func() error {
		list, err := s.dex.DEXOverview(gctx)
		if err != nil {
			return fmt.Errorf("dex overview: %w", err)
		}
		protocols = list
		return nil
	})
	g.Go(func() error {
		list, err := s.cex.Exchanges(gctx, s.opts.CEXPageSize)
		if err != nil {
			return fmt.Errorf("cex listing: %w", err)
		}
		exchanges = list
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("market sync failed", "viewer", viewer, "error", err)
		previous, loadErr := s.snapshots.Load(ctx, viewer)
		if loadErr != nil {
			s.logger.Error("load retained snapshot failed", "viewer", viewer, "error", loadErr)
			previous = nil
		}
		return previous, fmt.Errorf("refresh markets: %w: %w", domain.ErrUpstream, err)
	}

	snapshot := entities.NewMarketSnapshot(
		NormalizeCEX(exchanges, price, s.opts.CEXRevenueRate),
		NormalizeDEX(protocols, s.opts.DEXRevenueRate),
		price,
		s.now(),
	)

	if err := s.snapshots.Save(ctx, viewer, snapshot); err != nil {
		s.logger.Error("retain snapshot failed", "viewer", viewer, "error", err)
	}

	s.logger.Info("market sync complete",
		"viewer", viewer,
		"exchanges", len(snapshot.Exchanges),
		"total_volume", snapshot.TotalVolume,
	)
	return snapshot, nil
}

// Current returns the retained snapshot for viewer without fetching.
// It returns (nil, nil) when nothing is retained.
func (s *MarketService) Current(ctx context.Context, viewer string) (*entities.MarketSnapshot, error) {
	snapshot, err := s.snapshots.Load(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *MarketService) Forget(ctx context.Context, viewer string) error {
	if err := s.snapshots.Delete(ctx, viewer); err != nil {
		return fmt.Errorf("forget snapshot: %w", err)
	}
	return nil
}

// NormalizeDEX maps DEX overview protocols to records. Revenue is the
// reported daily revenue when present and non-zero, else volume × rate.
func NormalizeDEX(protocols []upstream.DEXProtocol, rate float64) []entities.ExchangeRecord {
	records := make([]entities.ExchangeRecord, 0, len(protocols))
	for _, p := range protocols {
		volume := entities.NonNegative(p.Total24h.Or(0))
		records = append(records, entities.ExchangeRecord{
			ID:            p.Slug,
			Name:          p.Name,
			Type:          entities.ExchangeTypeDEX,
			Volume24h:     volume,
			EstRevenue24h: entities.NonNegative(p.DailyRevenue.Or(volume * rate)),
			LogoURL:       p.Logo,
		})
	}
	return records
}

// NormalizeCEX converts BTC-denominated exchange volume into the reference
// fiat at price and derives revenue as volume × rate.
func NormalizeCEX(exchanges []upstream.CEXExchange, price, rate float64) []entities.ExchangeRecord {
	records := make([]entities.ExchangeRecord, 0, len(exchanges))
	for _, e := range exchanges {
		volume := entities.NonNegative(e.BTCVolume() * price)
		records = append(records, entities.ExchangeRecord{
			ID:            e.ID,
			Name:          e.Name,
			Type:          entities.ExchangeTypeCEX,
			Volume24h:     volume,
			EstRevenue24h: entities.NonNegative(volume * rate),
			LogoURL:       e.Image,
		})
	}
	return records
}
