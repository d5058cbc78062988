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

	"github.com/joho/godotenv"

	"emi-calculator/config"
	httpLayer "emi-calculator/http"
	"emi-calculator/logger"
	"emi-calculator/repository"
	"emi-calculator/service"
)

func main() {
	configPath := flag.String("config", "configs", "directory holding config.yaml; empty reads the environment only")
	flag.Parse()

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("server exited")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path, "config")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()
	limits := cfg.Limits.Limits()

	loanRepo, closeRepo, err := newLoanRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	cache, closeCache, err := newCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	loanService := service.NewLoanService(loanRepo, cache, limits, log)
	termRecommendationService := service.NewTermRecommendationService(limits, log)

	var rateLimiter *httpLayer.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window)
		defer rateLimiter.Stop()
	}

	router := httpLayer.NewRouter(httpLayer.Dependencies{
		Loans:       loanService,
		Terms:       termRecommendationService,
		RateLimiter: rateLimiter,
		Logger:      log,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("API listening",
			slog.String("addr", server.Addr),
			slog.String("environment", cfg.App.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// newLoanRepository uses PostgreSQL when a database URL is configured and
// falls back to process memory otherwise.
func newLoanRepository(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.LoanRepository, func(), error) {
	if cfg.Database.URL == "" {
		if cfg.App.IsProduction() {
			log.Warn("no database configured; calculation history is kept in memory")
		}
		return repository.NewLoanRepositoryMemory(), func() {}, nil
	}

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		log.Info("database migrations applied")
	}

	pool, err := repository.NewPostgresPool(ctx, cfg.Database.URL, repository.PoolConfig{
		MaxConns:        cfg.Database.MaxConnections,
		MinConns:        cfg.Database.MinConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("using postgres calculation history")
	return repository.NewLoanRepositoryPostgres(pool), pool.Close, nil
}

// newCache uses Redis when an address is configured, an in-process map otherwise.
func newCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.CacheRepository, func(), error) {
	if cfg.Cache.RedisAddr == "" {
		return repository.NewMockCache(), func() {}, nil
	}

	cache, err := repository.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("using redis result cache", slog.String("addr", cfg.Cache.RedisAddr))
	return cache, func() { _ = cache.Close() }, nil
}
