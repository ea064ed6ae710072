package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medilink-backend/internal/config"
	"medilink-backend/internal/database"
	"medilink-backend/internal/handlers"
	"medilink-backend/internal/middleware"
	"medilink-backend/internal/repository"
	"medilink-backend/internal/router"
	"medilink-backend/internal/services"
	"medilink-backend/internal/websocket"
	"medilink-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting MediLink Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	profileRepo := repository.NewProfileRepo(pool)
	historyRepo := repository.NewHistoryRepo(pool)
	chatRepo := repository.NewChatRepo(pool)
	reportRepo := repository.NewReportRepo(pool)
	appointmentRepo := repository.NewAppointmentRepo(pool)

	// ──── Step 5: Initialize Completion Client ────
	completionClient, err := services.NewCompletionClient(services.CompletionConfig{
		Token:       cfg.AIToken,
		Endpoint:    cfg.AIEndpoint,
		Model:       cfg.AIModel,
		MaxTokens:   cfg.AIMaxTokens,
		Temperature: cfg.AITemperature,
		MaxRetries:  cfg.AIMaxRetries,
		RetryDelay:  time.Duration(cfg.AIRetryDelayMS) * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("✗ Completion client initialization failed: %v", err)
	}
	log.Println("✓ Completion client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	publisher := services.NewPublisher(redisClients.Queue)
	historyQueue := services.NewHistoryQueue(redisClients.Queue)
	triageService := services.NewTriageService(
		completionClient,
		historyRepo,
		profileRepo,
		reportRepo,
		historyQueue,
		publisher,
	)
	chatService := services.NewChatService(chatRepo, profileRepo, publisher)

	// ──── Step 6: Start Persistence Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, historyRepo, 3)
	workerPool.Start()
	log.Println("✓ Worker pool started (3 goroutines)")

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub)
	log.Println("✓ WebSocket hub started")

	// ──── Initialize Handlers ────
	triageHandler := handlers.NewTriageHandler(triageService)
	chatHandler := handlers.NewChatHandler(chatService)
	wsHandler := handlers.NewWSHandler(wsHub, jwtAuth, chatService)
	doctorHandler := handlers.NewDoctorHandler(profileRepo)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentRepo, profileRepo)
	reportHandler := handlers.NewReportHandler(reportRepo, profileRepo)
	meHandler := handlers.NewMeHandler(profileRepo)

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		triageHandler,
		chatHandler,
		wsHandler,
		doctorHandler,
		appointmentHandler,
		reportHandler,
		meHandler,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ MediLink Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws/updates", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
