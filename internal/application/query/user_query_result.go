package query

type WatchlistQueryResult struct {
	Email     string   `json:"email"`
	Watchlist []string `json:"watchlist"`
}
