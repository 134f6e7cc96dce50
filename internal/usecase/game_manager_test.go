package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku/internal/apperror"
	"github.com/rocketscienceinc/gomoku/internal/entity"
	"github.com/rocketscienceinc/gomoku/internal/repository"
	mockedUseCase "github.com/rocketscienceinc/gomoku/mocks/usecase"
)

var (
	errSomeError     = errors.New("some error")
	errStorageIsFull = errors.New("storage is full")
)

func newTestManager(t *testing.T) (*GameManager, *mockedUseCase.MockplayerRepo, *mockedUseCase.MockgameRepo) {
	t.Helper()

	mockPlayerRepo := mockedUseCase.NewMockplayerRepo(t)
	mockGameRepo := mockedUseCase.NewMockgameRepo(t)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return NewGameManager(logger, mockPlayerRepo, mockGameRepo), mockPlayerRepo, mockGameRepo
}

// startedGame - a game with Black and White seated and no stones on the board.
func startedGame() (*entity.Game, *entity.Player, *entity.Player) {
	black := &entity.Player{ID: "p1", Stone: entity.CellBlack, GameID: "G1"}
	white := &entity.Player{ID: "p2", Stone: entity.CellWhite, GameID: "G1"}

	game := entity.NewGame("G1")
	game.Players = []*entity.Player{black, white}

	return game, black, white
}

func TestGameManager_GetOrCreatePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a new player when playerID is empty", func(t *testing.T) {
		// Given: a manager with an empty player repository
		manager, mockPlayerRepo, _ := newTestManager(t)

		mockPlayerRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Player")).
			Return(nil).
			Once()

		// When: Calling GetOrCreatePlayer with an empty playerID
		player, err := manager.GetOrCreatePlayer(ctx, "")

		// Then: A new player should be created, and no error should occur
		require.NoError(t, err)
		assert.NotEmpty(t, player.ID)
		assert.False(t, player.InGame())
	})

	t.Run("Returns existing player when playerID is not empty", func(t *testing.T) {
		// Given: a player repository that returns an existing player
		manager, mockPlayerRepo, _ := newTestManager(t)

		existingPlayer := &entity.Player{ID: "player123"}
		mockPlayerRepo.EXPECT().
			GetByID(mock.Anything, "player123").
			Return(existingPlayer, nil).
			Once()

		// When: Calling GetOrCreatePlayer with a known playerID
		player, err := manager.GetOrCreatePlayer(ctx, "player123")

		// Then: The existing player should be returned
		require.NoError(t, err)
		assert.Equal(t, existingPlayer, player)
	})

	t.Run("Returns error if CreateOrUpdate fails for new player", func(t *testing.T) {
		// Given: a player repository that fails on CreateOrUpdate
		manager, mockPlayerRepo, _ := newTestManager(t)

		mockPlayerRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Player")).
			Return(errStorageIsFull).
			Once()

		// When: Calling GetOrCreatePlayer with an empty playerID
		player, err := manager.GetOrCreatePlayer(ctx, "")

		// Then: the storage error is returned
		require.ErrorIs(t, err, errStorageIsFull)
		assert.Nil(t, player)
	})
}

func TestGameManager_GetOrCreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates new game when player has no game", func(t *testing.T) {
		// Given: a player that is not seated anywhere
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		player := &entity.Player{ID: "p1"}
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p1").Return(player, nil).Once()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, player).Return(nil).Once()
		mockGameRepo.EXPECT().CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: Calling GetOrCreateGame
		game, err := manager.GetOrCreateGame(ctx, "p1")

		// Then: a new waiting game is opened with the player as Black
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.True(t, game.IsWaiting())
		assert.Equal(t, entity.CellBlack, game.Turn)
		assert.Equal(t, game.ID, player.GameID)
		assert.Equal(t, entity.CellBlack, player.Stone)
	})

	t.Run("Returns the current game of a seated player", func(t *testing.T) {
		// Given: a player already seated in G1
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		existingGame, black, _ := startedGame()
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p1").Return(black, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(existingGame, nil).Once()

		// When: Calling GetOrCreateGame
		game, err := manager.GetOrCreateGame(ctx, "p1")

		// Then: the existing game is returned untouched
		require.NoError(t, err)
		assert.Equal(t, existingGame, game)
	})

	t.Run("Opens a new game when the previous one expired", func(t *testing.T) {
		// Given: a player whose game is gone from storage
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		player := &entity.Player{ID: "p1", Stone: entity.CellWhite, GameID: "OLD"}
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p1").Return(player, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "OLD").Return(nil, repository.ErrGameNotFound).Once()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, player).Return(nil).Once()
		mockGameRepo.EXPECT().CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: Calling GetOrCreateGame
		game, err := manager.GetOrCreateGame(ctx, "p1")

		// Then: a fresh game is created
		require.NoError(t, err)
		assert.NotEqual(t, "OLD", game.ID)
		assert.Equal(t, entity.CellBlack, player.Stone)
	})

	t.Run("Returns error if storage fails", func(t *testing.T) {
		// Given: a game repository that is down
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		player := &entity.Player{ID: "p1", GameID: "G1"}
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p1").Return(player, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(nil, errSomeError).Once()

		// When: Calling GetOrCreateGame
		game, err := manager.GetOrCreateGame(ctx, "p1")

		// Then: the error is returned
		require.ErrorIs(t, err, errSomeError)
		assert.Nil(t, game)
	})
}

func TestGameManager_ConnectToGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Seats the second player as White", func(t *testing.T) {
		// Given: a game waiting for an opponent
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		waitingGame, black, _ := startedGame()
		waitingGame.Players = []*entity.Player{black}
		newcomer := &entity.Player{ID: "p2"}

		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(waitingGame, nil).Once()
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p2").Return(newcomer, nil).Once()
		mockGameRepo.EXPECT().CreateOrUpdate(mock.Anything, waitingGame).Return(nil).Once()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, black).Return(nil).Once()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, newcomer).Return(nil).Once()

		// When: the second player connects
		game, err := manager.ConnectToGame(ctx, "G1", "p2")

		// Then: the game starts with the newcomer playing White
		require.NoError(t, err)
		assert.False(t, game.IsWaiting())
		assert.Equal(t, entity.CellWhite, newcomer.Stone)
		assert.Equal(t, "G1", newcomer.GameID)
		assert.Equal(t, newcomer, game.PlayerByStone(entity.CellWhite))
	})

	t.Run("Is idempotent for a seated player", func(t *testing.T) {
		// Given: a player already seated in the game
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		existingGame, _, white := startedGame()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(existingGame, nil).Once()
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p2").Return(white, nil).Once()

		// When: the player connects again
		game, err := manager.ConnectToGame(ctx, "G1", "p2")

		// Then: nothing changes
		require.NoError(t, err)
		assert.Len(t, game.Players, 2)
	})

	t.Run("Rejects a third player", func(t *testing.T) {
		// Given: a game with both seats taken
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		fullGame, _, _ := startedGame()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(fullGame, nil).Once()
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p3").Return(&entity.Player{ID: "p3"}, nil).Once()

		// When: a third player tries to connect
		game, err := manager.ConnectToGame(ctx, "G1", "p3")

		// Then: ErrGameIsFull is returned
		require.ErrorIs(t, err, apperror.ErrGameIsFull)
		assert.Nil(t, game)
	})

	t.Run("Rejects a player seated in another game", func(t *testing.T) {
		// Given: a player that holds a seat elsewhere
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		waitingGame := entity.NewGame("G1")
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(waitingGame, nil).Once()
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p3").
			Return(&entity.Player{ID: "p3", GameID: "G2", Stone: entity.CellBlack}, nil).
			Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G2").Return(entity.NewGame("G2"), nil).Once()

		// When: the player tries to connect
		_, err := manager.ConnectToGame(ctx, "G1", "p3")

		// Then: the player is told to leave the other game first
		require.ErrorIs(t, err, ErrPlayerInAnotherGame)
		assert.Empty(t, waitingGame.Players)
	})

	t.Run("Releases the seat of an expired game and joins", func(t *testing.T) {
		// Given: a player still seated in a game that has expired
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		waitingGame, black, _ := startedGame()
		waitingGame.Players = []*entity.Player{black}
		returning := &entity.Player{ID: "p3", GameID: "EXPIRED", Stone: entity.CellBlack}

		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(waitingGame, nil).Once()
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p3").Return(returning, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "EXPIRED").Return(nil, repository.ErrGameNotFound).Once()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, returning).Return(nil).Twice()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, black).Return(nil).Once()
		mockGameRepo.EXPECT().CreateOrUpdate(mock.Anything, waitingGame).Return(nil).Once()

		// When: the player connects to the waiting game
		game, err := manager.ConnectToGame(ctx, "G1", "p3")

		// Then: the old seat is dropped and the player plays White in the new game
		require.NoError(t, err)
		assert.Equal(t, "G1", returning.GameID)
		assert.Equal(t, entity.CellWhite, returning.Stone)
		assert.Equal(t, returning, game.PlayerByStone(entity.CellWhite))
	})

	t.Run("Returns error for unknown game", func(t *testing.T) {
		// Given: no such game
		manager, _, mockGameRepo := newTestManager(t)

		mockGameRepo.EXPECT().GetByID(mock.Anything, "NOPE").Return(nil, repository.ErrGameNotFound).Once()

		// When: a player tries to connect
		_, err := manager.ConnectToGame(ctx, "NOPE", "p2")

		// Then: ErrGameNotFound is returned
		require.ErrorIs(t, err, repository.ErrGameNotFound)
	})
}

func TestGameManager_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Places a stone and passes the turn", func(t *testing.T) {
		// Given: a started game, Black to move
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		existingGame, black, white := startedGame()
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p1").Return(black, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(existingGame, nil).Once()
		mockGameRepo.EXPECT().CreateOrUpdate(mock.Anything, existingGame).Return(nil).Once()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, black).Return(nil).Once()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, white).Return(nil).Once()

		// When: Black plays the centre
		game, err := manager.MakeTurn(ctx, "p1", 7, 7)

		// Then: the stone is stored and White moves next
		require.NoError(t, err)
		assert.Equal(t, entity.CellBlack, game.Board[7][7])
		assert.Equal(t, entity.CellWhite, game.Turn)
	})

	t.Run("Rejects a move out of turn", func(t *testing.T) {
		// Given: a started game, Black to move
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		existingGame, _, white := startedGame()
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p2").Return(white, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(existingGame, nil).Once()

		// When: White tries to move
		game, err := manager.MakeTurn(ctx, "p2", 7, 7)

		// Then: ErrNotYourTurn is returned with the untouched game
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, entity.Board{}, game.Board)
	})

	t.Run("Rejects a move while waiting for an opponent", func(t *testing.T) {
		// Given: a game with a single seat taken
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		waitingGame, black, _ := startedGame()
		waitingGame.Players = []*entity.Player{black}
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p1").Return(black, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(waitingGame, nil).Once()

		// When: Black tries to move
		_, err := manager.MakeTurn(ctx, "p1", 7, 7)

		// Then: ErrGameIsNotStarted is returned
		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})

	t.Run("Rejects a move from a player without a game", func(t *testing.T) {
		// Given: an unseated player
		manager, mockPlayerRepo, _ := newTestManager(t)

		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p9").Return(&entity.Player{ID: "p9"}, nil).Once()

		// When: the player tries to move
		game, err := manager.MakeTurn(ctx, "p9", 7, 7)

		// Then: ErrNotInGame is returned
		require.ErrorIs(t, err, apperror.ErrNotInGame)
		assert.Nil(t, game)
	})

	t.Run("Rejects an occupied cell without saving", func(t *testing.T) {
		// Given: a stone at the centre and White to move
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		existingGame, _, white := startedGame()
		require.True(t, existingGame.PlaceStone(7, 7))
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p2").Return(white, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(existingGame, nil).Once()

		// When: White plays the same cell
		game, err := manager.MakeTurn(ctx, "p2", 7, 7)

		// Then: ErrCellOccupied is returned and nothing is persisted
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, entity.CellWhite, game.Turn)
	})

	t.Run("Finishes the game on five in a row", func(t *testing.T) {
		// Given: Black has four in row 7
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		existingGame, black, _ := startedGame()
		for col := 0; col < 4; col++ {
			require.True(t, existingGame.PlaceStone(7, col))
			require.True(t, existingGame.PlaceStone(8, col))
		}

		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p1").Return(black, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(existingGame, nil).Once()
		mockGameRepo.EXPECT().CreateOrUpdate(mock.Anything, existingGame).Return(nil).Once()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Twice()

		// When: Black completes the line
		game, err := manager.MakeTurn(ctx, "p1", 7, 4)

		// Then: Black wins and the finished game is kept for a rematch
		require.NoError(t, err)
		assert.True(t, game.IsFinished())
		assert.Equal(t, entity.CellBlack, game.Winner)
	})

	t.Run("Rejects a move in a finished game", func(t *testing.T) {
		// Given: a finished game
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		existingGame, _, white := startedGame()
		existingGame.GameOver = true
		existingGame.Winner = entity.CellBlack
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p2").Return(white, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(existingGame, nil).Once()

		// When: White tries to move
		_, err := manager.MakeTurn(ctx, "p2", 0, 0)

		// Then: ErrGameFinished is returned
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Rejects coordinates outside the board", func(t *testing.T) {
		// Given: a started game, Black to move
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		existingGame, black, _ := startedGame()
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p1").Return(black, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(existingGame, nil).Once()

		// When: Black sends a cell past the edge
		_, err := manager.MakeTurn(ctx, "p1", 15, 0)

		// Then: ErrInvalidCell is returned
		require.ErrorIs(t, err, entity.ErrInvalidCell)
	})
}

func TestGameManager_ResetGame(t *testing.T) {
	ctx := context.Background()

	// Given: a finished game
	manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

	existingGame, black, white := startedGame()
	for col := 0; col < 4; col++ {
		require.True(t, existingGame.PlaceStone(7, col))
		require.True(t, existingGame.PlaceStone(8, col))
	}
	require.True(t, existingGame.PlaceStone(7, 4))

	mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p2").Return(white, nil).Once()
	mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(existingGame, nil).Once()
	mockGameRepo.EXPECT().CreateOrUpdate(mock.Anything, existingGame).Return(nil).Once()
	mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, black).Return(nil).Once()
	mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, white).Return(nil).Once()

	// When: the loser asks for a rematch
	game, err := manager.ResetGame(ctx, "p2")

	// Then: the board is empty, Black moves first and both seats are kept
	require.NoError(t, err)
	assert.Equal(t, entity.Board{}, game.Board)
	assert.False(t, game.IsFinished())
	assert.Equal(t, entity.CellBlack, game.Turn)
	assert.Len(t, game.Players, 2)
}

func TestGameManager_LeaveGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the game and releases both seats", func(t *testing.T) {
		// Given: a started game
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		existingGame, black, _ := startedGame()
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p1").Return(black, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "G1").Return(existingGame, nil).Once()
		mockGameRepo.EXPECT().DeleteByID(mock.Anything, "G1").Return(nil).Once()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Player")).Return(nil).Twice()

		// When: Black leaves
		game, err := manager.LeaveGame(ctx, "p1")

		// Then: every seated player is released
		require.NoError(t, err)
		require.Len(t, game.Players, 2)
		for _, player := range game.Players {
			assert.False(t, player.InGame())
			assert.Equal(t, entity.CellEmpty, player.Stone)
		}
	})

	t.Run("Returns ErrNotInGame for an unseated player", func(t *testing.T) {
		// Given: an unseated player
		manager, mockPlayerRepo, _ := newTestManager(t)

		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p9").Return(&entity.Player{ID: "p9"}, nil).Once()

		// When: the player leaves
		_, err := manager.LeaveGame(ctx, "p9")

		// Then: ErrNotInGame is returned
		require.ErrorIs(t, err, apperror.ErrNotInGame)
	})

	t.Run("Clears the seat of an expired game", func(t *testing.T) {
		// Given: a player still seated in a game that has expired
		manager, mockPlayerRepo, mockGameRepo := newTestManager(t)

		stale := &entity.Player{ID: "p4", GameID: "EXPIRED", Stone: entity.CellWhite}
		mockPlayerRepo.EXPECT().GetByID(mock.Anything, "p4").Return(stale, nil).Once()
		mockGameRepo.EXPECT().GetByID(mock.Anything, "EXPIRED").Return(nil, repository.ErrGameNotFound).Once()
		mockPlayerRepo.EXPECT().CreateOrUpdate(mock.Anything, stale).Return(nil).Once()

		// When: the player leaves
		_, err := manager.LeaveGame(ctx, "p4")

		// Then: ErrNotInGame is returned and the seat is released for good
		require.ErrorIs(t, err, apperror.ErrNotInGame)
		assert.False(t, stale.InGame())
		assert.Equal(t, entity.CellEmpty, stale.Stone)
	})
}

func TestGameManager_GetGame(t *testing.T) {
	ctx := context.Background()

	// Given: no such game
	manager, _, mockGameRepo := newTestManager(t)
	mockGameRepo.EXPECT().GetByID(mock.Anything, "NOPE").Return(nil, repository.ErrGameNotFound).Once()

	// When: the game is requested
	game, err := manager.GetGame(ctx, "NOPE")

	// Then: the not found error is kept
	require.ErrorIs(t, err, repository.ErrGameNotFound)
	assert.Nil(t, game)
}
