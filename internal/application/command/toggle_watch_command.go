package command

type ToggleWatchCommand struct {
	Email  string `json:"email"`
	CoinID string `json:"coinId"`
}

type ToggleWatchCommandResult struct {
	Watching  bool     `json:"watching"`
	Watchlist []string `json:"watchlist"`
}
