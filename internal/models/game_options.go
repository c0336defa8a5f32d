package models

// GameOptions are the room-level rule toggles copied into each game at creation.
type GameOptions struct {
	EnableRevolution bool `json:"enableRevolution"`
	EnableTax        bool `json:"enableTax"`
	// TurnTimeLimit is the per-turn limit in seconds; nil means unlimited.
	TurnTimeLimit *int `json:"turnTimeLimit,omitempty"`
}

// MaxTurnTimeLimit is the longest accepted turn limit, in seconds.
const MaxTurnTimeLimit = 3600

// DefaultGameOptions are applied to newly created rooms.
func DefaultGameOptions() GameOptions {
	return GameOptions{
		EnableRevolution: true,
		EnableTax:        true,
	}
}

// HasTimeLimit reports whether turns are timed.
func (o GameOptions) HasTimeLimit() bool {
	return o.TurnTimeLimit != nil && *o.TurnTimeLimit > 0
}

// Clone returns a copy that shares no pointers with o.
func (o GameOptions) Clone() GameOptions {
	out := o
	if o.TurnTimeLimit != nil {
		limit := *o.TurnTimeLimit
		out.TurnTimeLimit = &limit
	}
	return out
}
