package models

// PlayerType distinguishes connected humans from server-driven AI seats.
type PlayerType string

const (
	Human PlayerType = "human"
	AI    PlayerType = "ai"
)

// Player is a seat in a room. Cards, HasFinished and FinishOrder are reset at
// every game start; Position carries the previous round's rank (0 if none).
type Player struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        PlayerType `json:"type"`
	Cards       []Card     `json:"cards"`
	Position    int        `json:"position"`
	IsReady     bool       `json:"isReady"`
	HasFinished bool       `json:"hasFinished"`
	FinishOrder *int       `json:"finishOrder,omitempty"`

	// Difficulty is only set for AI seats.
	Difficulty string `json:"difficulty,omitempty"`

	// CardCount is filled in snapshots where Cards has been hidden from the viewer.
	CardCount int `json:"cardCount"`
}

// IsAI reports whether the seat is driven by the server.
func (p *Player) IsAI() bool {
	return p.Type == AI
}

// Clone returns a deep copy of the player.
func (p Player) Clone() Player {
	out := p
	out.Cards = CloneCards(p.Cards)
	if p.FinishOrder != nil {
		order := *p.FinishOrder
		out.FinishOrder = &order
	}
	return out
}

// ClonePlayers deep-copies a slice of players.
func ClonePlayers(players []Player) []Player {
	if players == nil {
		return nil
	}
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = p.Clone()
	}
	return out
}
