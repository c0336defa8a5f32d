package game

import "errors"

// Failure kinds returned by the game, the room directory and the coordinator.
// Call sites wrap these with fmt.Errorf("%w: ...") so callers can classify
// with errors.Is while the wrapped message stays readable for clients.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidState     = errors.New("invalid state")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrAlreadyFinished  = errors.New("already finished")
	ErrIllegalPlay      = errors.New("illegal play")
)
