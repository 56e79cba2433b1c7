package game

import "errors"

// Error taxonomy for the engine. IllegalAction rejections leave state
// unchanged; InvariantViolation means a conservation or integrity check
// failed and the hand must not continue.
var (
	ErrIllegalAction      = errors.New("illegal action")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvariantViolation = errors.New("invariant violation")
)
