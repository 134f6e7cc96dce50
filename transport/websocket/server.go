package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku/internal/entity"
)

const (
	maxMessageSize  = 4096
	shutdownTimeout = 5 * time.Second
)

type uGame interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)

	ConnectToGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, row, col int) (*entity.Game, error)
	ResetGame(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, message *Message, client *Client) error

type Server struct {
	logger *slog.Logger
	uGame  uGame
	hub    *Hub

	upgrader     websocket.Upgrader
	pingInterval time.Duration

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, uGame uGame) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,
		hub:    NewHub(),

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pingInterval: idlePingInterval,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameJoin] = server.handleJoinGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameReset] = server.handleGameReset
	server.handlers[actionGameLeave] = server.handleGameLeave

	return server
}

// Handler - returns the router serving the /ws endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return router
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and processes its messages until the peer goes away.
func (that *Server) serveWS(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)

	client := newClient(conn)

	go func() {
		defer conn.Close()

		if err := client.writePump(that.pingInterval); err != nil {
			log.Debug("write pump stopped", "error", err)
		}
	}()

	log.Info("WebSocket connection established", "remote", req.RemoteAddr)

	that.handleMessages(ctx, client)

	for _, playerID := range that.hub.Unbind(client) {
		log.Info("player disconnected", "playerID", playerID, "connected", that.hub.Len())
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, client *Client) {
	log := that.logger.With("method", "handleMessages")

	for {
		_, reqBody, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}

			return
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)

			if err = that.sendErrorResponse(client, actionError, "invalid message"); err != nil {
				log.Error("failed to send error response", "error", err)
			}

			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)

			if err = that.sendErrorResponse(client, message.Action, "unknown action"); err != nil {
				log.Error("failed to send error response", "error", err)
			}

			continue
		}

		if err = handler(ctx, &message, client); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
