package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/nations-cup/brackets"
	"github.com/Dosada05/nations-cup/config"
	"github.com/Dosada05/nations-cup/db"
	"github.com/Dosada05/nations-cup/events"
	"github.com/Dosada05/nations-cup/handlers"
	"github.com/Dosada05/nations-cup/repositories"
	api "github.com/Dosada05/nations-cup/routes"
	"github.com/Dosada05/nations-cup/services"
	"github.com/Dosada05/nations-cup/simulation"
	"github.com/Dosada05/nations-cup/squad"
	"github.com/Dosada05/nations-cup/storage"
	"github.com/go-chi/chi/v5"
)

//	@title			Nations Cup API
//	@version		1.0
//	@description	Eight-team single-elimination tournament engine.
//	@BasePath		/api/v1
func main() {
	if err := run(); err != nil {
		slog.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver),
		slog.String("squad_policy", cfg.SquadPolicy.Name),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	seed := time.Now().UnixNano()
	if cfg.RandomSeed != nil {
		seed = *cfg.RandomSeed
	}
	logger.Info("random source initialized", slog.Int64("seed", seed))

	simulator, err := simulation.New(rand.New(rand.NewSource(seed)), cfg.Simulation)
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}
	generator := brackets.NewSingleEliminationGenerator(rand.New(rand.NewSource(seed + 1)))

	// Инициализация WebSocket Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(hubCtx)
	logger.Info("WebSocket Hub started")

	live := services.NewLiveBroadcaster(wsHub)
	listeners := []services.MatchCompletedListener{
		services.NewStandingsRecorder(repos.Teams),
		live,
	}

	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, cfg.R2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		listeners = append(listeners, services.NewMatchArchiver(uploader, logger))
		logger.Info("match report archiving enabled", slog.String("bucket", cfg.R2.BucketName))
	}

	if cfg.RedisURL != "" {
		redisClient, err := events.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		publisher := events.NewStreamPublisher(redisClient, cfg.MatchEventsStream)
		listeners = append(listeners, publisher)
		logger.Info("match event stream enabled", slog.String("stream", publisher.Stream()))
	}

	// Инициализация сервисов
	bracketService := services.NewBracketService(repos, generator, logger, live)
	tournamentService := services.NewTournamentService(repos.Tournaments, logger)
	teamService := services.NewTeamService(repos, bracketService, squad.NewValidator(cfg.SquadPolicy), logger)
	matchService := services.NewMatchService(repos, bracketService, simulator, logger, listeners...)
	logger.Info("services initialized", slog.Int("match_listeners", len(listeners)))

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{Logger: logger, AllowedOrigins: cfg.CORSAllowedOrigins},
		handlers.NewTournamentHandler(tournamentService, bracketService),
		handlers.NewTeamHandler(teamService),
		handlers.NewMatchHandler(matchService),
		handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		stopHub()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}

func openStore(cfg *config.Config, logger *slog.Logger) (repositories.Repositories, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		return repositories.NewMemoryRepositories(), func() {}, nil
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		return repositories.Repositories{}, nil, err
	}
	closeDB := func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}
	logger.Info("database connection established")

	if err := db.Migrate(dbConn); err != nil {
		closeDB()
		return repositories.Repositories{}, nil, err
	}
	logger.Info("database migrations applied")

	return repositories.NewPostgresRepositories(dbConn, logger), closeDB, nil
}
