package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/tictactoe-ai/internal/api/controller"
	apirepository "ctchen222/tictactoe-ai/internal/api/repository"
	"ctchen222/tictactoe-ai/internal/api/service"
	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/config"
	"ctchen222/tictactoe-ai/internal/db"
	"ctchen222/tictactoe-ai/internal/logger"
	"ctchen222/tictactoe-ai/internal/repository"
	"ctchen222/tictactoe-ai/internal/room"
	"ctchen222/tictactoe-ai/internal/server"
	"ctchen222/tictactoe-ai/internal/session"
	"ctchen222/tictactoe-ai/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "optional config file (.env, yaml, json)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry before the logger so the otelslog bridge picks up the provider.
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Options{
		Endpoint:       cfg.OTLPEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("error shutting down telemetry", "error", err)
		}
	}()
	logger.Init(cfg.LogLevel)

	rdb, err := db.NewRedisClient(ctx, cfg.RedisConnString)
	if err != nil {
		return err
	}
	defer rdb.Close()

	sqlDB, err := db.Connect(ctx, cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// Repositories
	gameRepo := repository.NewGameRepository(rdb, cfg.GameTTL)
	scoreRepo := repository.NewScoreRepository(sqlDB)
	bus := repository.NewEventBus(rdb)
	userRepo := apirepository.NewUserRepository(sqlDB)

	// Services
	engine := bot.NewEngine(nil)
	sessions, err := session.NewService(gameRepo, scoreRepo, bus, engine, cfg.ComputerMoveDelay)
	if err != nil {
		return err
	}
	defer sessions.Close()
	userService := service.NewUserService(userRepo, cfg.JWTSecret, cfg.TokenTTL)

	rooms := room.NewHandler(sessions, bus)
	srv := server.NewServer(server.Deps{
		Users:     controller.NewUserController(userService),
		Games:     controller.NewGameController(sessions),
		Engine:    controller.NewEngineController(engine),
		Rooms:     rooms,
		Auth:      userService,
		StaticDir: cfg.StaticDir,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server started", "http.addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	rooms.Close()
	slog.Info("server exiting")
	return nil
}
