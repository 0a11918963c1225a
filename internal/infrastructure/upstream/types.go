package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number is a lenient numeric field. It decodes JSON numbers, numeric
// strings and null. Valid is false for null, empty or unparsable input.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("number string: %w", err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		*n = Number{Value: v, Valid: true}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

// Or returns the value when it is present and non-zero, fallback otherwise.
func (n Number) Or(fallback float64) float64 {
	if n.Valid && n.Value != 0 {
		return n.Value
	}
	return fallback
}

// DEXProtocol is one entry of the DefiLlama DEX overview.
type DEXProtocol struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Logo         string `json:"logo"`
	Total24h     Number `json:"total24h"`
	DailyRevenue Number `json:"dailyRevenue"`
}

type dexOverviewResponse struct {
	Protocols []DEXProtocol `json:"protocols"`
}

// CEXExchange is one entry of the CoinGecko exchanges listing.
type CEXExchange struct {
	ID                          string `json:"id"`
	Name                        string `json:"name"`
	Image                       string `json:"image"`
	TradeVolume24hBTCNormalized Number `json:"trade_volume_24h_btc_normalized"`
	TradeVolume24hBTC           Number `json:"trade_volume_24h_btc"`
}

// BTCVolume prefers the normalized figure and falls back to the raw one.
func (e CEXExchange) BTCVolume() float64 {
	return e.TradeVolume24hBTCNormalized.Or(e.TradeVolume24hBTC.Or(0))
}
