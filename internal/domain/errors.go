package domain

import (
	"errors"
	"fmt"
)

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrInvalidWinner      = errors.New("winner must be 'Blue' or 'Red'")
	ErrInvalidPayload     = errors.New("invalid game payload")
	ErrLedgerInconsistent = errors.New("combination ledger inconsistent")
)

// GameError attaches the failing operation and game id to an error.
type GameError struct {
	Op     string
	GameID int64
	Err    error
}

func (e *GameError) Error() string {
	if e.GameID == 0 {
		return fmt.Sprintf("%s game: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s game %d: %v", e.Op, e.GameID, e.Err)
}

func (e *GameError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a client-side payload problem.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidWinner) || errors.Is(err, ErrInvalidPayload)
}
