package upstream

import "context"

// Llama serves the DefiLlama DEX overview.
type Llama struct {
	*Client
}

func NewLlama(baseURL string, opts ...ClientOption) *Llama {
	return &Llama{Client: newClient("llama", baseURL, opts...)}
}

// DEXOverview returns the protocols of /overview/dexs. A missing protocols
// field yields an empty list.
func (l *Llama) DEXOverview(ctx context.Context) ([]DEXProtocol, error) {
	var resp dexOverviewResponse
	if err := l.get(ctx, "/overview/dexs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Protocols, nil
}
