package rest

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
)

const publicViewer = "api"

type marketResponse struct {
	Exchanges      []entities.ExchangeRecord `json:"exchanges"`
	TotalVolume    float64                   `json:"totalVolume"`
	ReferencePrice float64                   `json:"referencePrice"`
	FetchedAt      time.Time                 `json:"fetchedAt"`
	Stale          bool                      `json:"stale"`
	Error          string                    `json:"error,omitempty"`
}

// handleMarkets runs one aggregation. When the upstreams fail it answers
// with the last good snapshot marked stale, or 502 when there is none.
func (h *Handler) handleMarkets(c echo.Context) error {
	viewer := publicViewer
	if userID, ok := c.Get(contextUserID).(string); ok && userID != "" {
		viewer = publicViewer + ":" + userID
	}

	snapshot, err := h.markets.Refresh(c.Request().Context(), viewer)
	if err != nil && snapshot == nil {
		return errorJSON(c, http.StatusBadGateway, "UPSTREAM FAILURE")
	}

	exchanges := snapshot.Exchanges
	if exchanges == nil {
		exchanges = []entities.ExchangeRecord{}
	}
	resp := marketResponse{
		Exchanges:      exchanges,
		TotalVolume:    snapshot.TotalVolume,
		ReferencePrice: snapshot.ReferencePrice,
		FetchedAt:      snapshot.FetchedAt,
	}
	if err != nil {
		resp.Stale = true
		resp.Error = "SYNC FAILED"
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
