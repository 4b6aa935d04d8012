package main

import (
	"log"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/ardalanebrahimi/mini-coder-sub001/internal/config"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/domain"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/http"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/http/middleware"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/ledger"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/observability"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/provider/echo"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/provider/openai"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/store/memory"
	"github.com/ardalanebrahimi/mini-coder-sub001/internal/store/redis"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(func() domain.EventPublisher {
		return observability.NewEventBus(slog.Default())
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// Redis client (optional; in-process stores are used when disabled)
	if err := container.Provide(func(cfg *config.RedisConfig) *goredis.Client {
		if cfg.Addr == "" {
			return nil
		}
		return goredis.NewClient(&goredis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}); err != nil {
		log.Fatalf("Failed to provide Redis client: %v", err)
	}

	// Stores
	if err := container.Provide(func(client *goredis.Client, tokens *config.TokenConfig) ledger.BalanceStore {
		if client == nil {
			log.Println("REDIS_ADDR not set, using in-memory balance store")
			return memory.NewBalanceStore(tokens.StartingBalance)
		}
		return redis.NewBalanceStore(client, tokens.StartingBalance)
	}); err != nil {
		log.Fatalf("Failed to provide balance store: %v", err)
	}
	if err := container.Provide(func(client *goredis.Client) domain.LikeStore {
		if client == nil {
			return memory.NewLikeStore()
		}
		return redis.NewLikeStore(client)
	}); err != nil {
		log.Fatalf("Failed to provide like store: %v", err)
	}

	// Token Ledger
	if err := container.Provide(ledger.NewTokenLedger); err != nil {
		log.Fatalf("Failed to provide token ledger: %v", err)
	}

	// Generation client: OpenAI when configured, echo otherwise
	if err := container.Provide(func(cfg *openai.Config) (domain.GenerationClient, error) {
		if cfg.APIKey == "" {
			log.Println("OPENAI_API_KEY not set, using echo generation client")
			return echo.NewClient(), nil
		}
		return openai.NewClient(*cfg)
	}); err != nil {
		log.Fatalf("Failed to provide generation client: %v", err)
	}

	// Domain Services
	if err := container.Provide(func(tokens *config.TokenConfig) domain.CostPolicy {
		return domain.CostPolicy{
			Generate: tokens.GenerateCost,
			Modify:   tokens.ModifyCost,
		}
	}); err != nil {
		log.Fatalf("Failed to provide cost policy: %v", err)
	}
	if err := container.Provide(func(tokens *config.TokenConfig) domain.Limits {
		return domain.Limits{MaxPromptChars: tokens.MaxPromptChars}
	}); err != nil {
		log.Fatalf("Failed to provide limits: %v", err)
	}
	if err := container.Provide(domain.NewGenerationService); err != nil {
		log.Fatalf("Failed to provide generation service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
