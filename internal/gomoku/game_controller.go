package gomoku

import (
	"log/slog"

	"github.com/rocketscienceinc/gomoku/internal/entity"
)

// Listener receives the state of the game after every change.
// OnGameFinished is called once per finished game, right after the winning OnStateChanged.
type Listener interface {
	OnStateChanged(snapshot entity.Snapshot)
	OnGameFinished(snapshot entity.Snapshot)
}

// GameController owns one local game session. It is not safe for concurrent use:
// all calls are expected to come from the single UI event loop.
type GameController struct {
	logger    *slog.Logger
	game      *entity.Game
	listeners []Listener
}

func NewGameController(logger *slog.Logger, game *entity.Game) *GameController {
	return &GameController{
		logger: logger.With("component", "game_controller", "gameID", game.ID),
		game:   game,
	}
}

// Subscribe - registers a listener and immediately sends it the current state.
func (that *GameController) Subscribe(listener Listener) {
	that.listeners = append(that.listeners, listener)
	listener.OnStateChanged(that.game.Snapshot())
}

func (that *GameController) Snapshot() entity.Snapshot {
	return that.game.Snapshot()
}

// PlaceStone - places the current player's stone and notifies listeners.
// Rejected placements are ignored silently and return false.
func (that *GameController) PlaceStone(pos entity.Position) bool {
	log := that.logger.With("method", "PlaceStone", "row", pos.Row, "col", pos.Col)

	player := that.game.Turn
	if err := that.game.MakeTurn(pos.Row, pos.Col); err != nil {
		log.Debug("placement rejected", "reason", err)
		return false
	}

	log.Debug("stone placed", "player", player.String())

	snapshot := that.game.Snapshot()
	that.notifyStateChanged(snapshot)

	if snapshot.GameOver {
		log.Info("game finished", "winner", snapshot.Winner.String(), "moves", snapshot.MoveCount)
		that.notifyGameFinished(snapshot)
	}

	return true
}

// Reset - starts a new game on the same session.
func (that *GameController) Reset() {
	that.game.Reset()
	that.logger.Info("game reset")

	that.notifyStateChanged(that.game.Snapshot())
}

func (that *GameController) notifyStateChanged(snapshot entity.Snapshot) {
	for _, listener := range that.listeners {
		listener.OnStateChanged(snapshot)
	}
}

func (that *GameController) notifyGameFinished(snapshot entity.Snapshot) {
	for _, listener := range that.listeners {
		listener.OnGameFinished(snapshot)
	}
}
