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

	"github.com/google/uuid"

	"rada-learning/internal/config"
	"rada-learning/internal/database"
	"rada-learning/internal/handlers"
	"rada-learning/internal/learning"
	"rada-learning/internal/middleware"
	"rada-learning/internal/models"
	"rada-learning/internal/repository"
	"rada-learning/internal/router"
	"rada-learning/internal/services"
	"rada-learning/internal/session"
	"rada-learning/internal/websocket"
	"rada-learning/internal/worker"
)

func main() {
	log.Println("🚀 Starting Rada Learning...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 3: PostgreSQL + Migrations (optional in api mode) ────
	healthChecks := map[string]handlers.HealthCheck{"redis": redisClients.Ping}
	var jobRepo *repository.JobRepo
	var contentRepo *repository.ContentRepo
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool, "migrations"); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		healthChecks["postgres"] = pool.Ping
		jobRepo = repository.NewJobRepo(pool)
		contentRepo = repository.NewContentRepo(pool)
	}

	// ──── Step 4: Content Source ────
	var source learning.ContentSource
	switch cfg.ContentSource {
	case "api":
		source = services.NewContentAPI(cfg.ContentAPIURL)
		log.Printf("✓ Content source: PoliHub API at %s", cfg.ContentAPIURL)
	case "postgres":
		if contentRepo == nil {
			log.Fatalf("✗ Content source postgres needs DATABASE_URL")
		}
		source = contentRepo
		log.Println("✓ Content source: PostgreSQL")
	default:
		log.Fatalf("✗ Unknown content source %q", cfg.ContentSource)
	}
	source = services.NewCachedContent(source, redisClients.Queue, cfg.ContentCacheTTL)
	log.Printf("✓ Content cache enabled (ttl %s)", cfg.ContentCacheTTL)

	// ──── Step 5: Reward Pipeline ────
	jwtAuth := middleware.NewJWTAuth(cfg.TrustServiceSecret)
	var rewards session.RewardFactory
	var workerPool *worker.Pool
	if cfg.TrustAPIURL != "" {
		var queue *services.RewardQueue
		if jobRepo != nil {
			queue = services.NewRewardQueue(redisClients.Queue, jobRepo)
		} else {
			queue = services.NewRewardQueue(redisClients.Queue, nil)
		}
		rewards = queue.Hook

		trust := services.NewTrustClient(cfg.TrustAPIURL, jwtAuth)
		if jobRepo != nil {
			workerPool = worker.NewPool(redisClients.Queue, trust, jobRepo, cfg.RewardWorkers)
		} else {
			workerPool = worker.NewPool(redisClients.Queue, trust, nil, cfg.RewardWorkers)
		}
		workerPool.Start()
		log.Printf("✓ Reward worker pool started (%d goroutines)", cfg.RewardWorkers)
	} else {
		rewards = func(id uuid.UUID, v models.Viewer) learning.RewardHook {
			return services.LogRewards{SessionID: id, UserID: v.UserID}
		}
		log.Println("✓ TRUST_API_URL not set; XP awards are logged only")
	}

	// ──── Step 6: Sessions + WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.FrontendURL)
	sessions := session.NewManager(session.Options{
		Source:    source,
		Rewards:   rewards,
		Publisher: wsHub,
		PageSize:  cfg.CatalogPageSize,
		IdleTTL:   cfg.SessionIdleTTL,
	})
	sessions.Start()
	log.Printf("✓ Session manager started (idle ttl %s)", cfg.SessionIdleTTL)

	// ──── Step 7: Start HTTP Server ────
	catalogHandler := handlers.NewCatalogHandler(source, cfg.CatalogPageSize)
	sessionHandler := handlers.NewSessionHandler(sessions, wsHub, jwtAuth.Enabled())

	healthHandler := handlers.NewHealthHandler(healthChecks)

	// Session creation limiter (20 req/min per viewer or IP)
	createLimiter := middleware.NewRateLimiter(20, time.Minute)

	r := router.New(jwtAuth, createLimiter, catalogHandler, sessionHandler, healthHandler, cfg.FrontendURL)

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
		sessions.Stop()
		createLimiter.Stop()
		if workerPool != nil {
			workerPool.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Rada Learning ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/sessions/{id}/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
