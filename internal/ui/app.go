package ui

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/rocketscienceinc/gomoku/internal/entity"
	"github.com/rocketscienceinc/gomoku/internal/gomoku"
)

const (
	rulesText   = "Rules: click to place stones in turn, five in a row wins"
	restartText = "Restart"
	resultPage  = "result"
	boardPage   = "board"
)

type gameController interface {
	Subscribe(listener gomoku.Listener)
	PlaceStone(pos entity.Position) bool
	Reset()
}

// App is the terminal window of a local game. All listener callbacks run on the tview event loop.
type App struct {
	logger     *slog.Logger
	controller gameController

	app    *tview.Application
	pages  *tview.Pages
	board  *BoardView
	status *tview.TextView
	info   *tview.TextView
}

func NewApp(logger *slog.Logger, controller gameController) *App {
	window := &App{
		logger:     logger.With("component", "ui"),
		controller: controller,
		app:        tview.NewApplication(),
		pages:      tview.NewPages(),
	}

	window.board = NewBoardView(func(pos entity.Position) {
		controller.PlaceStone(pos)
	})
	window.board.SetBorder(true).SetTitle(" Gomoku ").SetTitleAlign(tview.AlignCenter)

	window.status = tview.NewTextView().SetTextAlign(tview.AlignCenter)
	window.info = tview.NewTextView().SetText(rulesText)

	restart := tview.NewButton(restartText).SetSelectedFunc(controller.Reset)

	footer := tview.NewFlex().
		AddItem(restart, len(restartText)+4, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(window.info, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(window.status, 1, 0, false).
		AddItem(window.board, boardHeight+2, 0, true).
		AddItem(footer, 1, 0, false)

	window.pages.AddPage(boardPage, layout, true, true)

	window.app.SetRoot(window.pages, true).
		EnableMouse(true).
		SetInputCapture(window.handleKey)

	controller.Subscribe(window)

	return window
}

// Run - blocks until the window is closed.
func (that *App) Run() error {
	that.logger.Info("starting terminal ui")

	if err := that.app.Run(); err != nil {
		return fmt.Errorf("failed to run terminal ui: %w", err)
	}

	return nil
}

// Stop - closes the window. Safe to call from any goroutine.
func (that *App) Stop() {
	that.app.Stop()
}

func (that *App) OnStateChanged(snapshot entity.Snapshot) {
	that.board.SetSnapshot(snapshot)
	that.status.SetText(fmt.Sprintf("%s    Moves: %d", statusText(snapshot), snapshot.MoveCount))

	if !snapshot.GameOver && that.pages.HasPage(resultPage) {
		that.closeResult()
	}
}

func (that *App) OnGameFinished(snapshot entity.Snapshot) {
	modal := tview.NewModal().
		SetText(resultText(snapshot)).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			that.closeResult()
		})

	that.pages.AddPage(resultPage, modal, false, true)
	that.app.SetFocus(modal)
}

func (that *App) closeResult() {
	that.pages.RemovePage(resultPage)
	that.app.SetFocus(that.board)
}

func (that *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() != tcell.KeyRune {
		return event
	}

	switch event.Rune() {
	case 'r':
		that.controller.Reset()
		return nil
	case 'q':
		that.app.Stop()
		return nil
	}

	return event
}

func statusText(snapshot entity.Snapshot) string {
	switch {
	case snapshot.GameOver:
		return resultText(snapshot)
	case snapshot.BoardFull:
		return "Board full: no winner"
	default:
		return "Turn: " + snapshot.Turn.String()
	}
}

func resultText(snapshot entity.Snapshot) string {
	return fmt.Sprintf("Game over: %s wins!", snapshot.Winner.String())
}
