// Command seed creates the initial ADMIN account if it does not exist yet.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/baharkarakas/publishing-backend/internal/auth"
	"github.com/baharkarakas/publishing-backend/internal/config"
	"github.com/baharkarakas/publishing-backend/internal/db"
	"github.com/baharkarakas/publishing-backend/internal/logger"
	"github.com/baharkarakas/publishing-backend/internal/models"
	"github.com/baharkarakas/publishing-backend/internal/repository/postgres"
	"github.com/baharkarakas/publishing-backend/internal/services"
)

const (
	adminLogin = "admin"
	adminName  = "Administrator"
)

// readPassword is swapped in tests.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func main() {
	cfg, err := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" || cfg.UsesMemoryStore() {
		log.Error("seed needs a persistent DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	password, err := adminPassword(os.Getenv("SEED_ADMIN_PASSWORD"), os.Stderr)
	if err != nil {
		log.Error("admin password", "err", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(pool)
	svc := services.NewAuthService(repos.Users, auth.NewBcryptHasher(bcrypt.DefaultCost), nil, nil, services.DefaultLockPolicy, services.WithLogger(log))
	created, err := seedAdmin(ctx, svc, password)
	if err != nil {
		log.Error("seed admin", "err", err)
		os.Exit(1)
	}
	if created {
		log.Info("admin user created", "login", adminLogin)
	} else {
		log.Info("admin user already exists", "login", adminLogin)
	}
}

// adminPassword prefers the environment and falls back to a no-echo prompt.
func adminPassword(fromEnv string, prompt io.Writer) (string, error) {
	if fromEnv != "" {
		return fromEnv, nil
	}
	fmt.Fprint(prompt, "Admin password: ")
	b, err := readPassword()
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	p := strings.TrimSpace(string(b))
	if p == "" {
		return "", errors.New("empty password")
	}
	return p, nil
}

func seedAdmin(ctx context.Context, svc *services.AuthService, password string) (bool, error) {
	_, err := svc.Register(ctx, services.RegisterInput{
		Name:     adminName,
		Login:    adminLogin,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, models.ErrDuplicateIdentity) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
