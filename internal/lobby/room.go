// internal/lobby/room.go
package lobby

import (
	"github.com/jason-s-yu/dalmuti/internal/game"
	"github.com/jason-s-yu/dalmuti/internal/models"
	"github.com/jason-s-yu/dalmuti/internal/rating"
)

// MaxPlayers is the seat limit of every room.
const MaxPlayers = 8

// Room is a group of seats that play consecutive games together.
type Room struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Players     []models.Player    `json:"players"`
	MaxPlayers  int                `json:"maxPlayers"`
	CurrentGame *game.Game         `json:"currentGame"`
	HostID      string             `json:"hostId"`
	GameOptions models.GameOptions `json:"gameOptions"`

	// Ratings holds each player's standing across the games played in this
	// room. Departed players keep their entry.
	Ratings map[string]rating.Rating `json:"ratings,omitempty"`
}

// Clone returns a deep copy of the room, including its game.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	out := *r
	out.Players = models.ClonePlayers(r.Players)
	out.CurrentGame = r.CurrentGame.Clone()
	out.GameOptions = r.GameOptions.Clone()
	if r.Ratings != nil {
		out.Ratings = make(map[string]rating.Rating, len(r.Ratings))
		for id, rt := range r.Ratings {
			out.Ratings[id] = rt
		}
	}
	return &out
}

// Public is a copy safe to send to every member: the game, if any, has all
// hands hidden.
func (r *Room) Public() *Room {
	out := r.Clone()
	if out.CurrentGame != nil {
		out.CurrentGame = out.CurrentGame.PublicView()
	}
	return out
}

// Player returns the seat with the given id, or nil.
func (r *Room) Player(playerID string) *models.Player {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

// HumanIDs lists the ids of the human seats, in seat order.
func (r *Room) HumanIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if !p.IsAI() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// InProgress reports whether a game is being played (tax or play phase).
func (r *Room) InProgress() bool {
	if r.CurrentGame == nil {
		return false
	}
	return r.CurrentGame.Phase == game.PhaseTax || r.CurrentGame.Phase == game.PhasePlaying
}

func (r *Room) aiCount() int {
	count := 0
	for i := range r.Players {
		if r.Players[i].IsAI() {
			count++
		}
	}
	return count
}
