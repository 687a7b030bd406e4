package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"relay-llm/internal/config"
	"relay-llm/internal/db"
	apihttp "relay-llm/internal/http"
	"relay-llm/internal/llm"
	"relay-llm/internal/repository"
	"relay-llm/internal/service"
	"relay-llm/internal/slackapi"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	messageRepo, closeStore, err := openMessageRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer closeStore()

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.OpenAIAPIKey, cfg.LLMModel, logger)
	exchangeSvc := service.NewExchangeService(logger, llmClient, messageRepo, cfg.SystemPrompt, cfg.HistoryWindow)

	var (
		smsLimiter  service.RateLimiter
		dedup       = service.NewMemoryEventDeduper(cfg.SlackEventTTL())
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			smsLimiter = service.NewRedisRateLimiter(redisClient, cfg.SMSRateWindow(), cfg.SMSRateLimit)
			dedup = service.NewRedisEventDeduper(redisClient, cfg.SlackEventTTL())
		}
		cancel()
	}

	poster := slackapi.NewDisabledPoster("slack bot token not configured")
	if cfg.SlackBotToken != "" {
		poster = slackapi.NewPoster(cfg.SlackBotToken)
	}
	if cfg.SlackSigningSecret == "" {
		logger.Warn("slack signing secret not configured")
	}
	if cfg.APIKeyRequired && cfg.APIKey == "" {
		logger.Warn("api key not configured")
	}

	slackRelay := service.NewSlackRelay(logger, exchangeSvc, poster, dedup)
	messageHandler := apihttp.NewMessageHandler(logger, exchangeSvc)
	slackHandler := apihttp.NewSlackHandler(logger, cfg.SlackSigningSecret, slackRelay)
	router := apihttp.NewRouter(logger, apihttp.RouterOptions{
		APIKey:         cfg.APIKey,
		RequireAPIKey:  cfg.APIKeyRequired,
		SMSRateLimiter: smsLimiter,
	}, messageHandler, slackHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("model", llmClient.Model()),
		zap.Bool("postgres", cfg.UsePostgres()),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// openMessageRepository elige PostgreSQL si hay DATABASE_URL y SQLite local en otro caso.
func openMessageRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.MessageRepository, func(), error) {
	if cfg.UsePostgres() {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPgMessageRepository(pool), pool.Close, nil
	}

	gdb, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using sqlite store", zap.String("path", cfg.SQLitePath))
	return repository.NewGormMessageRepository(gdb), func() { _ = sqlDB.Close() }, nil
}
