package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gomoku/internal/apperror"
)

var ErrInvalidCell = errors.New("invalid cell position")

// Game is the authoritative state of one board: the grid, whose turn it is and how the game ended.
type Game struct {
	ID        string    `json:"id"`
	Board     Board     `json:"board"`
	Turn      Cell      `json:"turn"`
	GameOver  bool      `json:"game_over"`
	Winner    Cell      `json:"winner"`
	LastMove  *Position `json:"last_move,omitempty"`
	MoveCount int       `json:"move_count"`
	Players   []*Player `json:"players,omitempty"`
}

// Snapshot is an immutable copy of a game's visible state, handed to renderers and clients.
type Snapshot struct {
	ID        string    `json:"id,omitempty"`
	Board     Board     `json:"board"`
	Turn      Cell      `json:"turn"`
	GameOver  bool      `json:"game_over"`
	Winner    Cell      `json:"winner"`
	LastMove  *Position `json:"last_move,omitempty"`
	MoveCount int       `json:"move_count"`
	BoardFull bool      `json:"board_full"`
}

func NewGame(id string) *Game {
	game := &Game{ID: id}
	game.Reset()

	return game
}

// Reset - clears the board and starts over with Black to move. Seated players are kept.
func (that *Game) Reset() {
	that.Board = Board{}
	that.Turn = CellBlack
	that.GameOver = false
	that.Winner = CellEmpty
	that.LastMove = nil
	that.MoveCount = 0
}

// PlaceStone - places the current player's stone at (row, col).
// It returns false without touching the game when the game is over or the cell is taken.
func (that *Game) PlaceStone(row, col int) bool {
	return that.MakeTurn(row, col) == nil
}

// MakeTurn - same as PlaceStone, but tells why a placement was rejected.
func (that *Game) MakeTurn(row, col int) error {
	if that.GameOver {
		return apperror.ErrGameFinished
	}

	pos := Position{Row: row, Col: col}
	if !pos.InBounds() {
		return fmt.Errorf("%w: row %d col %d", ErrInvalidCell, row, col)
	}

	if !that.Board.IsEmpty(pos) {
		return apperror.ErrCellOccupied
	}

	that.Board[row][col] = that.Turn
	that.LastMove = &pos
	that.MoveCount++

	if IsWinningMove(that.Board, pos, that.Turn) {
		that.GameOver = true
		that.Winner = that.Turn

		return nil
	}

	that.Turn = that.Turn.Opponent()

	return nil
}

func (that *Game) IsFinished() bool {
	return that.GameOver
}

// IsWaiting - a game with seated players waits until both seats are taken.
// Games without seats (local play) never wait.
func (that *Game) IsWaiting() bool {
	return len(that.Players) == 1
}

func (that *Game) Snapshot() Snapshot {
	snapshot := Snapshot{
		ID:        that.ID,
		Board:     that.Board,
		Turn:      that.Turn,
		GameOver:  that.GameOver,
		Winner:    that.Winner,
		MoveCount: that.MoveCount,
		BoardFull: that.Board.IsFull(),
	}

	if that.LastMove != nil {
		lastMove := *that.LastMove
		snapshot.LastMove = &lastMove
	}

	return snapshot
}

// PlayerByStone - returns the seated player holding the given colour, or nil.
func (that *Game) PlayerByStone(stone Cell) *Player {
	for _, player := range that.Players {
		if player.Stone == stone {
			return player
		}
	}

	return nil
}
