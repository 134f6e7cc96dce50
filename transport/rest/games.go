package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/gomoku/internal/entity"
	"github.com/rocketscienceinc/gomoku/internal/repository"
)

type gameGetter interface {
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
}

type GamesHandler interface {
	GetGame(w http.ResponseWriter, r *http.Request)
}

type gamesHandler struct {
	logger *slog.Logger
	games  gameGetter
}

func NewGamesHandler(logger *slog.Logger, games gameGetter) GamesHandler {
	return &gamesHandler{
		logger: logger,
		games:  games,
	}
}

// GetGame - returns the public snapshot of a game, seats are not exposed.
func (that *gamesHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetGame")

	gameID := chi.URLParam(r, "id")

	game, err := that.games.GetGame(r.Context(), gameID)
	if errors.Is(err, repository.ErrGameNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "game not found"})
		return
	}

	if err != nil {
		log.Error("failed to get game", "gameID", gameID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, game.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
