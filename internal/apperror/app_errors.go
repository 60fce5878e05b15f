package apperror

import "errors"

var (
	ErrGameFinished         = errors.New("game is already finished")
	ErrCellOccupied         = errors.New("cell is already occupied")
	ErrNotYourTurn          = errors.New("it is not your turn")
	ErrInvalidCoordinate    = errors.New("coordinate is outside the board")
	ErrGameNotFound         = errors.New("game not found")
	ErrUnknownDifficulty    = errors.New("unknown difficulty")
	ErrMissingConfiguration = errors.New("missing configuration")
)
