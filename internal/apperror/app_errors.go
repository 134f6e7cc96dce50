package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameIsFull       = errors.New("game already has two players")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrNotInGame        = errors.New("player is not in a game")
	ErrCellOccupied     = errors.New("cell is already occupied")
)
