// internal/game/game.go
package game

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/jason-s-yu/dalmuti/internal/models"
)

// Phase is the lifecycle stage of a game.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseTax      Phase = "tax"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Game holds the whole state of one Dalmuti round. It is a plain value owned
// by the room directory; callers mutate it only through the methods below,
// each of which validates fully before changing anything.
type Game struct {
	RoomID             string             `json:"roomId"`
	Phase              Phase              `json:"phase"`
	Players            []models.Player    `json:"players"`
	CurrentPlayerIndex int                `json:"currentPlayerIndex"`
	CurrentTurn        *models.Turn       `json:"currentTurn"`
	PassCount          int                `json:"passCount"`
	TurnHistory        []models.Turn      `json:"turnHistory"`
	IsRevolution       bool               `json:"isRevolution"`
	TaxPhaseComplete   bool               `json:"taxPhaseComplete"`
	FinishedPlayers    []string           `json:"finishedPlayers"`
	GameOptions        models.GameOptions `json:"gameOptions"`
	TurnStartTime      *int64             `json:"turnStartTime,omitempty"`

	// PendingTax lists the exchanges still owed while Phase is PhaseTax.
	PendingTax []models.TaxRequest `json:"pendingTax"`

	// Version increments on every successful transition. Timers capture it
	// so a callback scheduled for an older state can tell it is stale.
	Version uint64 `json:"version"`
}

// NewGame deals a fresh round for players. On a restart each player's
// Position is seeded from the previous round's FinishOrder (unchanged if the
// player never finished). A nil rng uses a time-seeded source.
func NewGame(roomID string, players []models.Player, opts models.GameOptions, isRestart bool, rng *rand.Rand) *Game {
	hands := Deal(len(players), rng)
	gamePlayers := models.ClonePlayers(players)
	for i := range gamePlayers {
		p := &gamePlayers[i]
		if isRestart && p.FinishOrder != nil {
			p.Position = *p.FinishOrder
		}
		p.Cards = SortHand(hands[i], false)
		p.CardCount = len(p.Cards)
		p.HasFinished = false
		p.FinishOrder = nil
	}

	g := &Game{
		RoomID:          roomID,
		Phase:           PhasePlaying,
		Players:         gamePlayers,
		TurnHistory:     []models.Turn{},
		FinishedPlayers: []string{},
		GameOptions:     opts.Clone(),
		PendingTax:      []models.TaxRequest{},
	}
	if opts.EnableTax {
		g.PendingTax = CalculateTaxRequests(gamePlayers)
	}
	if len(g.PendingTax) > 0 {
		g.Phase = PhaseTax
	} else {
		g.TaxPhaseComplete = true
	}
	g.refreshTurnStart()
	return g
}

// CurrentPlayer returns the seat whose turn it is, or nil for an empty game.
func (g *Game) CurrentPlayer() *models.Player {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return nil
	}
	return &g.Players[g.CurrentPlayerIndex]
}

// Player returns the seat with the given id, or nil.
func (g *Game) Player(playerID string) *models.Player {
	if idx := g.playerIndex(playerID); idx >= 0 {
		return &g.Players[idx]
	}
	return nil
}

func (g *Game) playerIndex(playerID string) int {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// Play puts cards from playerID's hand on the table.
func (g *Game) Play(playerID string, cards []models.Card) error {
	idx, err := g.checkActor(playerID)
	if err != nil {
		return err
	}
	player := &g.Players[idx]

	held, err := resolveCards(player.Cards, cards)
	if err != nil {
		return err
	}
	if !CanPlay(held, g.CurrentTurn, g.IsRevolution) {
		return fmt.Errorf("%w: %d card(s) of rank %d cannot be played on the table", ErrIllegalPlay, len(held), EffectiveRank(held))
	}

	toggled := g.GameOptions.EnableRevolution && IsRevolutionTrigger(held)
	if toggled {
		g.IsRevolution = !g.IsRevolution
	}

	player.Cards = SortHand(removeCards(player.Cards, held), g.IsRevolution)
	player.CardCount = len(player.Cards)
	if toggled {
		for i := range g.Players {
			if i != idx {
				g.Players[i].Cards = SortHand(g.Players[i].Cards, g.IsRevolution)
			}
		}
	}

	if len(player.Cards) == 0 {
		player.HasFinished = true
		g.FinishedPlayers = append(g.FinishedPlayers, playerID)
		order := len(g.FinishedPlayers)
		player.FinishOrder = &order
	}

	turn := models.Turn{
		PlayerID:  playerID,
		Cards:     held,
		Timestamp: time.Now().UnixMilli(),
	}
	g.CurrentTurn = &turn
	g.TurnHistory = append(g.TurnHistory, turn)
	g.PassCount = 0
	g.CurrentPlayerIndex = g.NextPlayerIndex(idx)
	if g.IsFinished() {
		g.Phase = PhaseFinished
	}
	g.refreshTurnStart()
	g.Version++
	return nil
}

// Pass skips playerID's turn. Once every other active player has passed in a
// row the table clears and the next player leads.
func (g *Game) Pass(playerID string) error {
	idx, err := g.checkActor(playerID)
	if err != nil {
		return err
	}

	g.CurrentPlayerIndex = g.NextPlayerIndex(idx)
	g.PassCount++
	if g.PassCount >= g.unfinishedCount()-1 {
		g.CurrentTurn = nil
		g.PassCount = 0
	}
	g.refreshTurnStart()
	g.Version++
	return nil
}

// checkActor verifies playerID may act now and returns its seat index.
func (g *Game) checkActor(playerID string) (int, error) {
	idx := g.playerIndex(playerID)
	if idx < 0 {
		return -1, fmt.Errorf("%w: player %s is not in this game", ErrNotFound, playerID)
	}
	if g.Phase != PhasePlaying {
		return -1, fmt.Errorf("%w: game is in the %s phase", ErrInvalidState, g.Phase)
	}
	if idx != g.CurrentPlayerIndex {
		return -1, fmt.Errorf("%w: waiting for %s", ErrNotYourTurn, g.Players[g.CurrentPlayerIndex].Name)
	}
	if g.Players[idx].HasFinished {
		return -1, fmt.Errorf("%w: %s has no cards left", ErrAlreadyFinished, g.Players[idx].Name)
	}
	return idx, nil
}

// NextPlayerIndex scans forward from from, wrapping, and returns the first
// seat that has not finished. If every seat has finished it returns from.
func (g *Game) NextPlayerIndex(from int) int {
	n := len(g.Players)
	if n == 0 {
		return 0
	}
	for step := 1; step <= n; step++ {
		next := (from + step) % n
		if !g.Players[next].HasFinished {
			return next
		}
	}
	return from
}

func (g *Game) finishedCount() int {
	count := 0
	for i := range g.Players {
		if g.Players[i].HasFinished {
			count++
		}
	}
	return count
}

func (g *Game) unfinishedCount() int {
	return len(g.Players) - g.finishedCount()
}

// IsFinished reports whether all but one player have emptied their hands.
// The remaining player takes last place without a play of their own.
func (g *Game) IsFinished() bool {
	return len(g.Players) > 0 && g.finishedCount() >= len(g.Players)-1
}

// FinalRankings returns the players ordered by FinishOrder, with the player
// who never finished last.
func (g *Game) FinalRankings() []models.Player {
	ranked := models.ClonePlayers(g.Players)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].FinishOrder, ranked[j].FinishOrder
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
	return ranked
}

// Results builds the final standings. The implicit last place gets the
// player count as its position.
func (g *Game) Results() []models.GameResult {
	ranked := g.FinalRankings()
	results := make([]models.GameResult, len(ranked))
	for i, p := range ranked {
		position := len(ranked)
		if p.FinishOrder != nil {
			position = *p.FinishOrder
		}
		results[i] = models.GameResult{PlayerID: p.ID, PlayerName: p.Name, Position: position}
	}
	return results
}

// ReplaceWithAI hands playerID's seat over to the server so the round can go
// on after the human leaves.
func (g *Game) ReplaceWithAI(playerID, difficulty string) error {
	p := g.Player(playerID)
	if p == nil {
		return fmt.Errorf("%w: player %s is not in this game", ErrNotFound, playerID)
	}
	p.Type = models.AI
	p.Difficulty = difficulty
	p.IsReady = true
	g.Version++
	return nil
}

func (g *Game) refreshTurnStart() {
	if !g.GameOptions.HasTimeLimit() {
		g.TurnStartTime = nil
		return
	}
	now := time.Now().UnixMilli()
	g.TurnStartTime = &now
}

// Clone returns a deep copy of the game.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	out.Players = models.ClonePlayers(g.Players)
	if g.CurrentTurn != nil {
		turn := *g.CurrentTurn
		turn.Cards = models.CloneCards(g.CurrentTurn.Cards)
		out.CurrentTurn = &turn
	}
	out.TurnHistory = make([]models.Turn, len(g.TurnHistory))
	for i, t := range g.TurnHistory {
		t.Cards = models.CloneCards(t.Cards)
		out.TurnHistory[i] = t
	}
	out.FinishedPlayers = append([]string{}, g.FinishedPlayers...)
	out.PendingTax = append([]models.TaxRequest{}, g.PendingTax...)
	out.GameOptions = g.GameOptions.Clone()
	if g.TurnStartTime != nil {
		ts := *g.TurnStartTime
		out.TurnStartTime = &ts
	}
	return &out
}

// resolveCards maps the proposed cards onto the copies held in hand, by id.
// Unknown or repeated ids are rejected.
func resolveCards(hand, proposed []models.Card) ([]models.Card, error) {
	if len(proposed) == 0 {
		return nil, fmt.Errorf("%w: no cards selected", ErrIllegalPlay)
	}
	byID := make(map[string]models.Card, len(hand))
	for _, c := range hand {
		byID[c.ID] = c
	}
	seen := make(map[string]bool, len(proposed))
	held := make([]models.Card, 0, len(proposed))
	for _, c := range proposed {
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: card %s selected twice", ErrIllegalPlay, c.ID)
		}
		seen[c.ID] = true
		card, ok := byID[c.ID]
		if !ok {
			return nil, fmt.Errorf("%w: card %s is not in your hand", ErrIllegalPlay, c.ID)
		}
		held = append(held, card)
	}
	return held, nil
}

// removeCards returns hand without the cards in remove, matched by id.
func removeCards(hand, remove []models.Card) []models.Card {
	drop := make(map[string]bool, len(remove))
	for _, c := range remove {
		drop[c.ID] = true
	}
	kept := make([]models.Card, 0, len(hand))
	for _, c := range hand {
		if !drop[c.ID] {
			kept = append(kept, c)
		}
	}
	return kept
}
