package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/gomoku/internal/config"
	"github.com/rocketscienceinc/gomoku/internal/entity"
	"github.com/rocketscienceinc/gomoku/internal/gomoku"
	"github.com/rocketscienceinc/gomoku/internal/pkg"
	"github.com/rocketscienceinc/gomoku/internal/repository"
	"github.com/rocketscienceinc/gomoku/internal/repository/storage"
	"github.com/rocketscienceinc/gomoku/internal/ui"
	"github.com/rocketscienceinc/gomoku/internal/usecase"
	"github.com/rocketscienceinc/gomoku/transport/rest"
	"github.com/rocketscienceinc/gomoku/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application in the mode set by the config.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if conf.Mode == config.ModeServer {
		return runServer(ctx, logger, conf)
	}

	return runDesktop(ctx, logger)
}

// runDesktop - runs a local two-player game in the terminal until the window is closed.
func runDesktop(ctx context.Context, logger *slog.Logger) error {
	log := logger.With("component", "app")

	controller := gomoku.NewGameController(logger, entity.NewGame(pkg.GenerateGameID()))
	window := ui.NewApp(logger, controller)

	go func() {
		<-ctx.Done()
		window.Stop()
	}()

	log.Info("Starting desktop game")

	if err := window.Run(); err != nil {
		return fmt.Errorf("desktop ui error: %w", err)
	}

	return nil
}

// runServer - serves remote games over HTTP and WebSocket until ctx is done or a server fails.
func runServer(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" || redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	playerRepo := repository.NewPlayerRepository(redisStorage, conf.GameTTL)
	gameRepo := repository.NewGameRepository(redisStorage, conf.GameTTL)
	gameManager := usecase.NewGameManager(logger, playerRepo, gameRepo)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, gameManager)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
