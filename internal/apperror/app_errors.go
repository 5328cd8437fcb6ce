package apperror

import "errors"

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrNoActiveGames   = errors.New("no active games")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrUnknownGameType = errors.New("unknown game type")
)
