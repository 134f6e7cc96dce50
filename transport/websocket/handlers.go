package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gomoku/internal/apperror"
	"github.com/rocketscienceinc/gomoku/internal/entity"
	"github.com/rocketscienceinc/gomoku/internal/repository"
	"github.com/rocketscienceinc/gomoku/internal/usecase"
)

var errSendQueueFull = errors.New("client send queue is full or closed")

// gameRuleErrors are shown to the player as they are, together with the current board.
var gameRuleErrors = []error{
	apperror.ErrGameFinished,
	apperror.ErrGameIsNotStarted,
	apperror.ErrGameIsFull,
	apperror.ErrNotYourTurn,
	apperror.ErrNotInGame,
	apperror.ErrCellOccupied,
	entity.ErrInvalidCell,
	repository.ErrGameNotFound,
	repository.ErrPlayerNotFound,
	usecase.ErrPlayerInAnotherGame,
}

func (that *Server) handleConnect(ctx context.Context, msg *Message, client *Client) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if err := decodePayload(msg, &payloadReq); err != nil {
		return that.sendErrorResponse(client, msg.Action, "invalid payload")
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.uGame.GetOrCreatePlayer(ctx, playerID)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		// unknown session, most likely expired
		player, err = that.uGame.GetOrCreatePlayer(ctx, "")
	}

	if err != nil {
		log.Error("failed to create or get", "player", err)
		return that.sendErrorResponse(client, msg.Action, "failed to create a new player")
	}

	that.hub.Bind(player.ID, client)

	payloadResp := Payload{
		Player: player,
	}

	if player.InGame() {
		game, err := that.uGame.GetGame(ctx, player.GameID)
		if err != nil {
			log.Warn("failed to get the game of a returning player", "gameID", player.GameID, "error", err)
		} else {
			payloadResp.Game = snapshotOf(game)
		}
	}

	if err = that.sendMessage(client, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, client *Client) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, ok := that.requirePlayer(msg, client)
	if !ok {
		return nil
	}

	game, err := that.uGame.GetOrCreateGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to create or get", "game", err)
		return that.replyWithError(client, msg.Action, nil, err, "failed to create a new game")
	}

	that.broadcastGame(msg.Action, game)

	log.Info("player is in game", "gameID", game.ID, "playerID", payloadReq.Player.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, client *Client) error {
	log := that.logger.With("method", "handleJoinGame")

	payloadReq, ok := that.requirePlayer(msg, client)
	if !ok {
		return nil
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		log.Error("Game is missing in payload")
		return that.sendErrorResponse(client, msg.Action, "Game is required")
	}

	game, err := that.uGame.ConnectToGame(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to join game", "gameID", payloadReq.Game.ID, "error", err)
		return that.replyWithError(client, msg.Action, nil, err, "failed to join game")
	}

	that.broadcastGame(msg.Action, game)

	log.Info("player joined game", "gameID", game.ID, "playerID", payloadReq.Player.ID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, client *Client) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, ok := that.requirePlayer(msg, client)
	if !ok {
		return nil
	}

	if payloadReq.Cell == nil {
		log.Error("Cell is missing in payload")
		return that.sendErrorResponse(client, msg.Action, "Cell is required")
	}

	game, err := that.uGame.MakeTurn(ctx, payloadReq.Player.ID, payloadReq.Cell.Row, payloadReq.Cell.Col)
	if err != nil {
		log.Debug("turn rejected", "playerID", payloadReq.Player.ID, "error", err)
		return that.replyWithError(client, msg.Action, game, err, "failed to make turn")
	}

	that.broadcastGame(msg.Action, game)

	if game.IsFinished() {
		log.Info("game finished", "gameID", game.ID, "winner", game.Winner.String())
	}

	return nil
}

func (that *Server) handleGameReset(ctx context.Context, msg *Message, client *Client) error {
	log := that.logger.With("method", "handleGameReset")

	payloadReq, ok := that.requirePlayer(msg, client)
	if !ok {
		return nil
	}

	game, err := that.uGame.ResetGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to reset game", "error", err)
		return that.replyWithError(client, msg.Action, nil, err, "failed to reset game")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, client *Client) error {
	log := that.logger.With("method", "handleGameLeave")

	payloadReq, ok := that.requirePlayer(msg, client)
	if !ok {
		return nil
	}

	game, err := that.uGame.LeaveGame(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to leave game", "error", err)
		return that.replyWithError(client, msg.Action, nil, err, "game doesn't exist")
	}

	that.broadcastGame(msg.Action, game)

	log.Info("player left", "gameID", game.ID, "playerID", payloadReq.Player.ID)

	return nil
}

// requirePlayer - decodes the payload and binds the sender's player id to the connection.
// On failure the client has already been answered.
func (that *Server) requirePlayer(msg *Message, client *Client) (*Payload, bool) {
	log := that.logger.With("method", "requirePlayer")

	var payloadReq Payload
	if err := decodePayload(msg, &payloadReq); err != nil {
		log.Warn("failed to unmarshal payload", "error", err)

		if err = that.sendErrorResponse(client, msg.Action, "invalid payload"); err != nil {
			log.Error("failed to send error response", "error", err)
		}

		return nil, false
	}

	if payloadReq.Player == nil || payloadReq.Player.ID == "" {
		log.Error("Player is missing in payload")

		if err := that.sendErrorResponse(client, msg.Action, "Player is required"); err != nil {
			log.Error("failed to send error response", "error", err)
		}

		return nil, false
	}

	that.hub.Bind(payloadReq.Player.ID, client)

	return &payloadReq, true
}

// broadcastGame - sends the game to every seated player, each with their own seat.
func (that *Server) broadcastGame(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcastGame", "gameID", game.ID)

	snapshot := snapshotOf(game)

	for _, player := range game.Players {
		data, err := encodeMessage(action, Payload{Player: player, Game: snapshot})
		if err != nil {
			log.Error("failed to encode game update", "error", err)
			return
		}

		if !that.hub.SendTo(player.ID, data) {
			log.Warn("connection not found for player", "playerID", player.ID)
		}
	}
}

// replyWithError - answers the sender only. Game rule errors are passed on verbatim,
// anything else is replaced by fallback.
func (that *Server) replyWithError(client *Client, action string, game *entity.Game, err error, fallback string) error {
	payload := Payload{
		Game:  snapshotOf(game),
		Error: fallback,
	}

	for _, ruleErr := range gameRuleErrors {
		if errors.Is(err, ruleErr) {
			payload.Error = ruleErr.Error()
			break
		}
	}

	return that.sendMessage(client, action, payload)
}

func (that *Server) sendErrorResponse(client *Client, action, errorMsg string) error {
	payload := Payload{Error: errorMsg}
	if err := that.sendMessage(client, action, payload); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

func (that *Server) sendMessage(client *Client, action string, payload Payload) error {
	data, err := encodeMessage(action, payload)
	if err != nil {
		return err
	}

	if !client.enqueue(data) {
		return errSendQueueFull
	}

	return nil
}

func encodeMessage(action string, payload Payload) ([]byte, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: payloadJSON})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return data, nil
}

func decodePayload(msg *Message, payload *Payload) error {
	if len(msg.Payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}

func snapshotOf(game *entity.Game) *entity.Snapshot {
	if game == nil {
		return nil
	}

	snapshot := game.Snapshot()

	return &snapshot
}
