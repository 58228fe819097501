package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/internal/logger"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/server"
	"catalog/internal/services"
	"catalog/internal/validation"
	"catalog/pkg/cache"
	"catalog/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of the given password and exit")
	issueToken := flag.String("issue-token", "", "print a write token for the given subject and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := services.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if *issueToken != "" {
		if !cfg.AuthEnabled() {
			fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
			os.Exit(1)
		}
		token, err := services.NewTokenService(services.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}).IssueToken(*issueToken)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

// run starts the server and blocks until SIGINT or SIGTERM.
func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if a.mq != nil && cfg.AuditConsumer {
		if err := a.mq.ConsumeProductEvents(ctx, rabbitmq.AuditLogHandler(log.Named("audit"))); err != nil {
			log.Warn("failed to start product audit consumer", zap.Error(err))
		}
	}
	if a.limiter != nil {
		go pruneLimiter(ctx, a.limiter)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort), zap.String("driver", cfg.DBDriver))
		errCh <- a.http.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := a.http.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error("error during fiber shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
	return nil
}

// application owns every resource opened at startup.
type application struct {
	http    *fiber.App
	db      *gorm.DB
	redis   *redis.Client
	mq      *rabbitmq.Client
	limiter *middleware.RateLimiter
	log     *zap.Logger
}

func newApplication(ctx context.Context, cfg config.Config, log *zap.Logger) (*application, error) {
	a := &application{log: log}
	checks := map[string]handlers.Check{}

	var repo repositories.ProductRepository
	if cfg.DBDriver == config.DriverMemory {
		log.Warn("using in-memory product store; data is lost on restart")
		repo = repositories.NewMemoryProductRepository()
	} else {
		db, err := database.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		a.db = db
		checks["database"] = database.Ping(db)
		repo = repositories.NewGORMProductRepository(db)
	}

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.redis = client
		redisCache := cache.New(client, "catalog:")
		checks["cache"] = redisCache.Ping
		repo = repositories.NewCachedProductRepository(repo, redisCache, cfg.CacheTTL, log)
	}

	// A nil *rabbitmq.Client must not reach the service as a non-nil
	// interface.
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			a.close()
			return nil, err
		}
		a.mq = mq
		publisher = mq
	}

	v := validation.New()
	deps := server.Deps{
		Logger:     log,
		Products:   services.NewProductService(repo, v, publisher, log),
		Validator:  v,
		Checks:     checks,
		Production: cfg.IsProduction(),
	}
	if cfg.AuthEnabled() {
		deps.Tokens = services.NewTokenService(services.TokenConfig{
			Secret:            cfg.JWTSecret,
			TTL:               cfg.TokenTTL,
			AdminUsername:     cfg.AdminUsername,
			AdminPasswordHash: cfg.AdminPassword,
		})
	} else {
		log.Warn("JWT_SECRET is not set; write endpoints are unauthenticated")
	}
	if cfg.RateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		deps.Limiter = a.limiter
	}

	a.http = server.New(deps)
	return a, nil
}

func (a *application) close() {
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			a.log.Warn("failed to close RabbitMQ client", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.log.Warn("failed to close database", zap.Error(err))
		}
	}
}

func pruneLimiter(ctx context.Context, l *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune(10 * time.Minute)
		}
	}
}
