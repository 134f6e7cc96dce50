package entity

// BoardSize is the number of lines in each direction of the board.
const BoardSize = 15

// winLength is the shortest run that wins. Longer runs (overlines) win too.
const winLength = 5

type Cell int

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

// Opponent - returns the other player. Empty has no opponent and is returned as is.
func (c Cell) Opponent() Cell {
	switch c {
	case CellBlack:
		return CellWhite
	case CellWhite:
		return CellBlack
	default:
		return CellEmpty
	}
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// StarPoints are the reference dots drawn on an empty board.
var StarPoints = [5]Position{
	{Row: 3, Col: 3},
	{Row: 3, Col: 11},
	{Row: 7, Col: 7},
	{Row: 11, Col: 3},
	{Row: 11, Col: 11},
}

// axes are the four undirected lines through a cell: horizontal, vertical and both diagonals.
var axes = [4]Position{
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
	{Row: 1, Col: 1},
	{Row: 1, Col: -1},
}

type Board [BoardSize][BoardSize]Cell

func (that *Board) At(pos Position) Cell {
	return that[pos.Row][pos.Col]
}

func (that *Board) IsEmpty(pos Position) bool {
	return that[pos.Row][pos.Col] == CellEmpty
}

func (that *Board) IsFull() bool {
	return that.CountStones() == BoardSize*BoardSize
}

func (that *Board) CountStones() int {
	count := 0
	for row := range that {
		for col := range that[row] {
			if that[row][col] != CellEmpty {
				count++
			}
		}
	}

	return count
}

// IsWinningMove - reports whether the stone of player at pos completes a line of five or more.
// Only the four axes through pos are examined; the board is not modified.
func IsWinningMove(board Board, pos Position, player Cell) bool {
	if player == CellEmpty || !pos.InBounds() {
		return false
	}

	for _, axis := range axes {
		count := 1
		count += countDirection(&board, pos, axis.Row, axis.Col, player)
		count += countDirection(&board, pos, -axis.Row, -axis.Col, player)

		if count >= winLength {
			return true
		}
	}

	return false
}

// countDirection - counts contiguous stones of player starting next to pos and walking by (dRow, dCol).
func countDirection(board *Board, pos Position, dRow, dCol int, player Cell) int {
	count := 0

	next := Position{Row: pos.Row + dRow, Col: pos.Col + dCol}
	for next.InBounds() && board.At(next) == player {
		count++
		next.Row += dRow
		next.Col += dCol
	}

	return count
}
