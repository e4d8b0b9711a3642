package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/baharkarakas/publishing-backend/internal/api"
	"github.com/baharkarakas/publishing-backend/internal/auth"
	"github.com/baharkarakas/publishing-backend/internal/config"
	"github.com/baharkarakas/publishing-backend/internal/db"
	"github.com/baharkarakas/publishing-backend/internal/logger"
	"github.com/baharkarakas/publishing-backend/internal/metrics"
	"github.com/baharkarakas/publishing-backend/internal/repository"
	"github.com/baharkarakas/publishing-backend/internal/repository/memory"
	"github.com/baharkarakas/publishing-backend/internal/repository/postgres"
	"github.com/baharkarakas/publishing-backend/internal/services"
	"github.com/baharkarakas/publishing-backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("exit", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	tm, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return err
	}

	metrics.Init()
	wp := worker.NewPool(cfg.WorkerCount)
	// drain pending audit writes before the store closes
	defer wp.Stop()

	audit := services.NewAuditor(repos.AuditLogs, wp, log)
	authSvc := services.NewAuthService(
		repos.Users,
		auth.NewBcryptHasher(bcrypt.DefaultCost),
		tm,
		audit,
		services.LockPolicy{MaxAttempts: cfg.MaxLoginAttempts, Duration: cfg.LockDuration},
		services.WithLogger(log),
	)
	articleSvc := services.NewArticleService(repos.Articles, audit, services.WithLogger(log))

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterDeps{
			AuthSvc:    authSvc,
			ArticleSvc: articleSvc,
			Log:        log,
			SigninRPS:  cfg.RateRPS,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "memory_store", cfg.UsesMemoryStore())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Set, func(), error) {
	if cfg.UsesMemoryStore() {
		log.Warn("using in-memory store; data is lost on exit")
		return memory.NewStore().Set(), func() {}, nil
	}

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			return repository.Set{}, nil, err
		}
		log.Info("migrations applied")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return repository.Set{}, nil, err
	}
	return postgres.NewRepositories(pool), pool.Close, nil
}
