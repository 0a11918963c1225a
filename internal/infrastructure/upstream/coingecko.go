package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CoinGecko serves the reference price and the centralized exchange listing.
type CoinGecko struct {
	*Client
}

func NewCoinGecko(baseURL string, opts ...ClientOption) *CoinGecko {
	return &CoinGecko{Client: newClient("coingecko", baseURL, opts...)}
}

// ReferencePrice returns the price of asset in fiat from /simple/price.
func (c *CoinGecko) ReferencePrice(ctx context.Context, asset, fiat string) (float64, error) {
	query := url.Values{}
	query.Set("ids", asset)
	query.Set("vs_currencies", fiat)

	var resp map[string]map[string]Number
	if err := c.get(ctx, "/simple/price", query, &resp); err != nil {
		return 0, err
	}

	price, ok := resp[asset][fiat]
	if !ok || !price.Valid {
		return 0, fmt.Errorf("coingecko: no %s price for %s", fiat, asset)
	}
	return price.Value, nil
}

// Exchanges returns the first page of the exchanges listing.
func (c *CoinGecko) Exchanges(ctx context.Context, perPage int) ([]CEXExchange, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))

	var resp []CEXExchange
	if err := c.get(ctx, "/exchanges", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
