package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"rada-learning/internal/catalog"
	"rada-learning/internal/config"
	"rada-learning/internal/database"
	"rada-learning/internal/repository"
	"rada-learning/internal/services"
)

func main() {
	file := flag.String("file", "catalog.json", "catalog JSON to import")
	migrations := flag.String("migrations", "migrations", "migrations directory")
	flag.Parse()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("✗ DATABASE_URL is required for seeding")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("✗ Open catalog: %v", err)
	}
	modules, err := catalog.Load(f)
	f.Close()
	if err != nil {
		log.Fatalf("✗ Invalid catalog %s:\n%v", *file, err)
	}
	log.Printf("✓ Catalog parsed (%d modules)", len(modules))

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(pool, *migrations); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var videos *services.VideoService
	if cfg.YouTubeLookup {
		videos = services.NewVideoService()
	}

	repo := repository.NewContentRepo(pool)
	for i := range modules {
		m := &modules[i]
		if videos != nil {
			videos.FillDurations(ctx, m)
		}
		if err := repo.UpsertModule(ctx, m, i); err != nil {
			log.Fatalf("✗ Import module %s: %v", m.ID, err)
		}
		log.Printf("  %s: %d lessons, %d quizzes", m.ID, len(m.Lessons), len(m.Quizzes))
	}
	log.Printf("✓ Imported %d modules", len(modules))

	// Sessions read through the Redis cache; drop stale entries.
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Printf("Content cache not invalidated: %v", err)
		return
	}
	defer redisClients.Close()
	cache := services.NewCachedContent(repo, redisClients.Queue, cfg.ContentCacheTTL)
	if err := cache.Invalidate(ctx); err != nil {
		log.Printf("Content cache not invalidated: %v", err)
		return
	}
	log.Println("✓ Content cache invalidated")
}
