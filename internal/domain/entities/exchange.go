package entities

import (
	"math"
	"sort"
	"time"
)

type ExchangeType string

const (
	ExchangeTypeCEX ExchangeType = "CEX"
	ExchangeTypeDEX ExchangeType = "DEX"
)

// ExchangeRecord is one venue row of the combined market list. Records are
// built fresh on every aggregation and never persisted on their own.
type ExchangeRecord struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Type          ExchangeType `json:"type"`
	Volume24h     float64      `json:"volume24h"`
	EstRevenue24h float64      `json:"estRevenue24h"`
	LogoURL       string       `json:"logoUrl"`
}

// MarketSnapshot is the result of one successful aggregation.
type MarketSnapshot struct {
	Exchanges      []ExchangeRecord `json:"exchanges"`
	TotalVolume    float64          `json:"totalVolume"`
	ReferencePrice float64          `json:"referencePrice"`
	FetchedAt      time.Time        `json:"fetchedAt"`
}

// NewMarketSnapshot concatenates cex and dex, sorts the result by 24h volume
// descending (stable, so equal volumes keep CEX-first input order) and totals it.
func NewMarketSnapshot(cex, dex []ExchangeRecord, referencePrice float64, fetchedAt time.Time) *MarketSnapshot {
	combined := make([]ExchangeRecord, 0, len(cex)+len(dex))
	combined = append(combined, cex...)
	combined = append(combined, dex...)
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Volume24h > combined[j].Volume24h
	})

	var total float64
	for _, r := range combined {
		total += r.Volume24h
	}

	return &MarketSnapshot{
		Exchanges:      combined,
		TotalVolume:    total,
		ReferencePrice: referencePrice,
		FetchedAt:      fetchedAt,
	}
}

// NonNegative maps negative, NaN and infinite values to 0.
func NonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
