package database

// RoundResult is one player's score in a finished round.
type RoundResult struct {
	ID         string `json:"id"`
	GameID     string `json:"game_id"`
	CreatedAt  string `json:"created_at"` // RFC 3339, UTC
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Seat       int    `json:"seat"`
	Scope      int    `json:"scope"`
	Captured   int    `json:"captured"`
	Denari     int    `json:"denari"`
	SetteBello int    `json:"sette_bello"`
	Primiera   int    `json:"primiera"`
	Total      int    `json:"total"`
}
