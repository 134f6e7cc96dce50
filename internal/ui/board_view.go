package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rocketscienceinc/gomoku/internal/entity"
)

// Every intersection takes two columns (the point and the line to its right) and one row.
const (
	cellWidth  = 2
	cellHeight = 1

	boardWidth  = (entity.BoardSize-1)*cellWidth + 1
	boardHeight = (entity.BoardSize-1)*cellHeight + 1
)

const (
	stoneRune     = '●'
	starPointRune = '╋'
)

var (
	boardColor     = tcell.NewRGBColor(220, 179, 92)
	lineColor      = tcell.ColorBlack
	lastMoveColor  = tcell.ColorRed
	blackStoneFg   = tcell.ColorBlack
	whiteStoneFg   = tcell.ColorWhite
	boardLineStyle = tcell.StyleDefault.Background(boardColor).Foreground(lineColor)
)

// BoardView draws a game snapshot and reports clicked intersections.
type BoardView struct {
	*tview.Box

	snapshot entity.Snapshot
	onSelect func(pos entity.Position)
}

// NewBoardView - onSelect is called with the intersection nearest to a left click on the board.
func NewBoardView(onSelect func(pos entity.Position)) *BoardView {
	return &BoardView{
		Box:      tview.NewBox(),
		onSelect: onSelect,
	}
}

// SetSnapshot - replaces the state drawn on the next redraw.
func (that *BoardView) SetSnapshot(snapshot entity.Snapshot) {
	that.snapshot = snapshot
}

func (that *BoardView) Snapshot() entity.Snapshot {
	return that.snapshot
}

// origin - screen position of intersection (0, 0). The board is centred in the inner rect.
func (that *BoardView) origin() (int, int) {
	x, y, width, height := that.GetInnerRect()

	return x + max(0, (width-boardWidth)/2), y + max(0, (height-boardHeight)/2)
}

func (that *BoardView) Draw(screen tcell.Screen) {
	that.DrawForSubclass(screen, that)

	originX, originY := that.origin()

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			x := originX + col*cellWidth
			y := originY + row*cellHeight
			pos := entity.Position{Row: row, Col: col}

			screen.SetContent(x, y, that.pointRune(pos), nil, that.pointStyle(pos))

			if col < entity.BoardSize-1 {
				screen.SetContent(x+1, y, '─', nil, boardLineStyle)
			}
		}
	}
}

func (that *BoardView) pointRune(pos entity.Position) rune {
	if that.snapshot.Board.At(pos) != entity.CellEmpty {
		return stoneRune
	}

	if isStarPoint(pos) {
		return starPointRune
	}

	return gridRune(pos)
}

func (that *BoardView) pointStyle(pos entity.Position) tcell.Style {
	style := boardLineStyle

	switch that.snapshot.Board.At(pos) {
	case entity.CellBlack:
		style = style.Foreground(blackStoneFg)
	case entity.CellWhite:
		style = style.Foreground(whiteStoneFg)
	default:
		return style
	}

	if lastMove := that.snapshot.LastMove; lastMove != nil && *lastMove == pos {
		style = style.Background(lastMoveColor)
	}

	return style
}

// MouseHandler - a left click selects the nearest intersection.
func (that *BoardView) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return that.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (bool, tview.Primitive) {
		if action != tview.MouseLeftClick || !that.InRect(event.Position()) {
			return false, nil
		}

		setFocus(that)

		x, y := event.Position()
		originX, originY := that.origin()

		if pos, ok := PointerToCell(originX, originY, x, y); ok && that.onSelect != nil {
			that.onSelect(pos)
		}

		return true, nil
	})
}

// PointerToCell - maps a screen position to the nearest intersection of a board drawn at
// (originX, originY). Positions further than half a cell from the board map to nothing.
func PointerToCell(originX, originY, x, y int) (entity.Position, bool) {
	dx := x - originX + cellWidth/2
	dy := y - originY + cellHeight/2

	// integer division truncates toward zero, so negatives are rejected first
	if dx < 0 || dy < 0 {
		return entity.Position{}, false
	}

	pos := entity.Position{Row: dy / cellHeight, Col: dx / cellWidth}

	return pos, pos.InBounds()
}

func isStarPoint(pos entity.Position) bool {
	for _, star := range entity.StarPoints {
		if star == pos {
			return true
		}
	}

	return false
}

func gridRune(pos entity.Position) rune {
	last := entity.BoardSize - 1

	isTop := pos.Row == 0
	isBottom := pos.Row == last
	isLeft := pos.Col == 0
	isRight := pos.Col == last

	switch {
	case isTop && isLeft:
		return '┌'
	case isTop && isRight:
		return '┐'
	case isBottom && isLeft:
		return '└'
	case isBottom && isRight:
		return '┘'
	case isTop:
		return '┬'
	case isBottom:
		return '┴'
	case isLeft:
		return '├'
	case isRight:
		return '┤'
	default:
		return '┼'
	}
}
