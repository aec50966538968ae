package game

import "errors"

var (
	// Roster construction
	ErrNoPlayers         = errors.New("player count must be positive")
	ErrRolePoolMismatch  = errors.New("role pool size does not match player count")
	ErrNamePoolExhausted = errors.New("not enough AI names for the requested seats")

	// Intents
	ErrNotInitialized = errors.New("game has not been initialized")
	ErrBusy           = errors.New("another operation is in progress")
	ErrGameOver       = errors.New("game is over")
	ErrWrongPhase     = errors.New("action not allowed in the current phase")
	ErrInvalidActor   = errors.New("actor is unknown or not alive")
	ErrInvalidTarget  = errors.New("target is unknown, dead or not allowed")
	ErrNotEligible    = errors.New("actor's role cannot perform this action")
	ErrNoHuman        = errors.New("no living human player")
	ErrEmptyMessage   = errors.New("message is empty")
)
