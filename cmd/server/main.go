package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dating-service/internal/api/routes"
	"dating-service/internal/config"
	"dating-service/internal/database"
	"dating-service/internal/matching"
	"dating-service/internal/repositories/postgres"
	"dating-service/internal/services"
	"dating-service/internal/websocket"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	slog.Info("Starting dating server")

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	db, err := database.NewPostgresConnection(cfg.Database.DSN())
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Repositories and services
	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	criteriaRepo := postgres.NewCriteriaRepository(db)

	redisService := services.NewRedisService(redisClient)
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpirationTime)
	profileService := services.NewProfileService(profileRepo, criteriaRepo)

	// Call events go to Kafka when brokers are configured, otherwise
	// matchmaking runs without the audit stream.
	var recorder matching.EventRecorder = matching.NopEventRecorder{}
	if cfg.Kafka.Enabled() {
		producer, err := services.NewCallEventProducer(cfg.Kafka.Brokers)
		if err != nil {
			slog.Error("Failed to connect to Kafka", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		recorder = services.NewCallEventService(producer, cfg.Kafka.Topic)
	}

	table, err := matching.LoadCompatibilityTable()
	if err != nil {
		slog.Error("Failed to load compatibility table", "error", err)
		os.Exit(1)
	}

	hub := websocket.NewHub(redisService, cfg.Match.LobbyDebounce, logger)

	engine := matching.NewEngine(
		matching.NewCandidateQueue(),
		table,
		profileService,
		hub,
		recorder,
		matching.EngineConfig{
			MaxAttempts:   cfg.Match.MaxAttempts,
			RetryDelay:    cfg.Match.RetryDelay,
			PassThreshold: cfg.Match.PassThreshold,
		},
		logger,
	)
	hub.SetMatchmaker(engine)
	go hub.Run()

	router := routes.NewRouter(hub, authService, redisService, logger)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
