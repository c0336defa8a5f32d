package models

// Turn records one play. Turns are never modified after creation.
type Turn struct {
	PlayerID  string `json:"playerId"`
	Cards     []Card `json:"cards"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// TaxRequest asks FromPlayerID to hand CardCount cards to ToPlayerID.
type TaxRequest struct {
	FromPlayerID string `json:"fromPlayerId"`
	ToPlayerID   string `json:"toPlayerId"`
	CardCount    int    `json:"cardCount"`
}

// GameResult is one line of the final standings.
type GameResult struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Position   int    `json:"position"`
}
