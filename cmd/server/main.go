package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/tabletop-engine/internal/clients/dnd5e"
	"github.com/KirkDiggler/tabletop-engine/internal/config"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/characters"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/gamestate"
	"github.com/KirkDiggler/tabletop-engine/internal/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Spell catalog client
	spellClient, err := dnd5e.New(&dnd5e.Config{
		HttpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create spell catalog client: %v", err)
	}

	providerConfig := &services.ProviderConfig{
		SpellClient: spellClient,
	}

	// Keep Redis client for cleanup
	var redisClient *redis.Client

	log.Printf("Connecting to Redis at: %s", cfg.Redis.Addr)
	redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		cancel()
		log.Printf("Failed to connect to Redis: %v", err)
		log.Println("Falling back to in-memory repositories")
		_ = redisClient.Close()
		redisClient = nil
	} else {
		cancel()
		log.Println("Connected to Redis")
		providerConfig.GameStateRepository = gamestate.NewRedisRepository(&gamestate.RedisRepoConfig{
			Client:   redisClient,
			StateTTL: cfg.Redis.StateTTL,
		})
		providerConfig.CharacterRepository = characters.NewRedisRepository(&characters.RedisRepoConfig{
			Client: redisClient,
		})
	}

	provider := services.NewProvider(providerConfig)

	log.Println("Session engine is running. Press CTRL-C to exit.")

	// Wait for interrupt, then drain the per-session workers
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	g, shutdownCtx := errgroup.WithContext(shutdownCtx)
	g.Go(func() error {
		return provider.Dispatcher.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Printf("Dispatcher shutdown error: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}

	log.Println("Shutdown complete")
}
