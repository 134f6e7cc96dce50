package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gomoku/internal/apperror"
	"github.com/rocketscienceinc/gomoku/internal/entity"
	"github.com/rocketscienceinc/gomoku/internal/pkg"
	"github.com/rocketscienceinc/gomoku/internal/repository"
)

var ErrPlayerInAnotherGame = errors.New("player is already in another game")

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager runs server-side games. Every exported method holds one mutex for its
// whole duration, so a game is never loaded and mutated by two requests at once.
type GameManager struct {
	logger *slog.Logger
	mu     sync.Mutex

	playerRepo playerRepo
	gameRepo   gameRepo
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
	}
}

// MakeTurn - places the player's stone. The game is returned along with game rule errors
// so the caller can show the current board.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, row, col int) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if !player.InGame() {
		return nil, apperror.ErrNotInGame
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("%w by id", err)
	}

	if game.IsWaiting() {
		return game, apperror.ErrGameIsNotStarted
	}

	if game.IsFinished() {
		return game, apperror.ErrGameFinished
	}

	if game.Turn != player.Stone {
		return game, apperror.ErrNotYourTurn
	}

	if err = game.MakeTurn(row, col); err != nil {
		return game, fmt.Errorf("failed make turn: %w", err)
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed update game: %w", err)
	}

	if game.IsFinished() {
		that.logger.Info("game finished", "gameID", game.ID, "winner", game.Winner.String(), "moves", game.MoveCount)
	}

	return game, nil
}

// ConnectToGame - seats the player in the free seat of an existing game.
func (that *GameManager) ConnectToGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	existingGame, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed get game by id: %w", err)
	}

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if player.GameID == existingGame.ID {
		return existingGame, nil
	}

	if len(existingGame.Players) >= 2 {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameIsFull, gameID)
	}

	if player.InGame() {
		if err = that.releaseStaleSeat(ctx, player); err != nil {
			return nil, err
		}
	}

	player.GameID = existingGame.ID
	player.Stone = entity.CellWhite
	if existingGame.PlayerByStone(entity.CellBlack) == nil {
		player.Stone = entity.CellBlack
	}

	existingGame.Players = append(existingGame.Players, player)
	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, fmt.Errorf("failed update game by id: %w", err)
	}

	that.logger.Info("player joined game", "gameID", existingGame.ID, "playerID", player.ID, "stone", player.Stone.String())

	return existingGame, nil
}

// GetOrCreateGame - returns the player's current game or opens a new one with the player as Black.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if !player.InGame() {
		newGame, err := that.createGame(ctx, player)
		if err != nil {
			return nil, fmt.Errorf("failed create game: %w", err)
		}

		return newGame, nil
	}

	existingGame, err := that.getGameByID(ctx, player.GameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		// the game expired while the player was away
		newGame, err := that.createGame(ctx, player)
		if err != nil {
			return nil, fmt.Errorf("failed create game: %w", err)
		}

		return newGame, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed get game: %w", err)
	}

	return existingGame, nil
}

// ResetGame - clears the board of the player's game. Both seats are kept.
func (that *GameManager) ResetGame(ctx context.Context, playerID string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, err := that.getGameByPlayerID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	game.Reset()

	if err = that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed update game: %w", err)
	}

	that.logger.Info("game reset", "gameID", game.ID, "playerID", playerID)

	return game, nil
}

// LeaveGame - ends the player's game for everybody seated in it.
// The returned game still lists the released players so they can be notified.
func (that *GameManager) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, err := that.getGameByPlayerID(ctx, playerID)
	if err != nil {
		return nil, err
	}

	that.deleteGame(ctx, game)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.getGameByID(ctx, gameID)
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if id == "" {
		player, err := that.createPlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create new player %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id %w", err)
	}

	return player, nil
}

func (that *GameManager) createGame(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	gameID := pkg.GenerateGameID()
	player.GameID = gameID
	player.Stone = entity.CellBlack

	if err := that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed update player: %w", err)
	}

	newGame := entity.NewGame(gameID)
	newGame.Players = []*entity.Player{
		player,
	}

	if err := that.gameRepo.CreateOrUpdate(ctx, newGame); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", gameID, "playerID", player.ID)

	return newGame, nil
}

func (that *GameManager) getGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed get player by id: %w", err)
	}

	if !player.InGame() {
		return nil, apperror.ErrNotInGame
	}

	game, err := that.getGameByID(ctx, player.GameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		if err = that.clearSeat(ctx, player); err != nil {
			return nil, err
		}

		return nil, apperror.ErrNotInGame
	}

	if err != nil {
		return nil, err
	}

	return game, nil
}

// releaseStaleSeat - frees the seat of a player whose game no longer exists.
// A seat in a live game is kept and reported as ErrPlayerInAnotherGame.
func (that *GameManager) releaseStaleSeat(ctx context.Context, player *entity.Player) error {
	_, err := that.getGameByID(ctx, player.GameID)
	if err == nil {
		return fmt.Errorf("%w: game id %s", ErrPlayerInAnotherGame, player.GameID)
	}

	if !errors.Is(err, repository.ErrGameNotFound) {
		return err
	}

	return that.clearSeat(ctx, player)
}

func (that *GameManager) clearSeat(ctx context.Context, player *entity.Player) error {
	that.logger.Info("releasing seat of a missing game", "playerID", player.ID, "gameID", player.GameID)

	player.Leave()

	if err := that.updatePlayer(ctx, player); err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}

	return nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

// updateGame - saves the game and its seated players, so the players expire together with the game.
func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	for _, player := range game.Players {
		if err := that.updatePlayer(ctx, player); err != nil {
			return err
		}
	}

	return nil
}

func (that *GameManager) deleteGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "deleteGame", "gameID", game.ID)

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		player.Leave()

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to update player", "error", err)
		}
	}

	log.Info("game deleted")
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	playerID := pkg.GenerateNewSessionID()

	player := &entity.Player{
		ID: playerID,
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
