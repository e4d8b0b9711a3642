package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/baharkarakas/publishing-backend/internal/auth"
	"github.com/baharkarakas/publishing-backend/internal/metrics"
	"github.com/baharkarakas/publishing-backend/internal/models"
	repo "github.com/baharkarakas/publishing-backend/internal/repository"
	"github.com/baharkarakas/publishing-backend/internal/validate"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

type TokenIssuer interface {
	Issue(c auth.Claims) (string, time.Time, error)
	Verify(token string) (*auth.Claims, error)
}

// LockPolicy: after MaxAttempts consecutive failures the account is locked
// for Duration.
type LockPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

var DefaultLockPolicy = LockPolicy{MaxAttempts: 5, Duration: 15 * time.Minute}

type RegisterInput struct {
	Name     string      `json:"name"`
	Login    string      `json:"login"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(3, 20)),
		validation.Field(&in.Login, validation.Required, validation.RuneLength(3, 20), validate.Handle),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&in.Role, validation.Required, validation.In(models.RoleAdmin, models.RoleAuthor, models.RoleModerator)),
	)
}

type AuthResult struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type AuthService struct {
	users  repo.Users
	hasher PasswordHasher
	tokens TokenIssuer
	audit  *Auditor
	policy LockPolicy
	now    func() time.Time
	log    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repo.Users, hasher PasswordHasher, tokens TokenIssuer, audit *Auditor, policy LockPolicy, opts ...Option) *AuthService {
	o := buildOptions(opts)
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultLockPolicy.MaxAttempts
	}
	if policy.Duration <= 0 {
		policy.Duration = DefaultLockPolicy.Duration
	}
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		audit:  audit,
		policy: policy,
		now:    o.now,
		log:    o.log,
	}
}

// Register creates a user. The returned user carries no credential fields.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Login = strings.TrimSpace(in.Login)
	if in.Role == "" {
		in.Role = models.RoleAuthor
	}
	if err := validate.Check(in); err != nil {
		return models.User{}, err
	}

	if _, err := s.users.GetByLogin(ctx, in.Login); err == nil {
		return models.User{}, models.ErrDuplicateIdentity
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup login: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, models.User{
		Name:         in.Name,
		Login:        in.Login,
		Role:         in.Role,
		PasswordHash: hash,
	})
	if errors.Is(err, repo.ErrConflict) {
		// login or name taken between the lookup and the insert
		return models.User{}, models.ErrDuplicateIdentity
	}
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", "user_id", u.ID, "login", u.Login, "role", u.Role)
	s.audit.Record("user", u.ID, "user.registered", map[string]any{"role": u.Role})
	return u.Public(), nil
}

// Authenticate checks the lock, then the password. Failure counters are
// persisted before the error is returned.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return AuthResult{}, models.NewValidationError("login", "login and password are required")
	}

	u, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, repo.ErrNotFound) {
		// same cost and same answer as a wrong password
		_, _ = s.hasher.Verify(password, s.placeholderHash())
		metrics.AuthAttempts.WithLabelValues("invalid_credentials").Inc()
		return AuthResult{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("lookup login: %w", err)
	}

	now := s.now()
	if locked, remaining := u.LockedAt(now); locked {
		metrics.AuthAttempts.WithLabelValues("locked").Inc()
		return AuthResult{}, &models.LockedError{Remaining: remaining}
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return AuthResult{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return AuthResult{}, s.recordFailure(ctx, u, now)
	}

	tok, exp, err := s.tokens.Issue(auth.ClaimsFor(u))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	if err := s.users.RecordLogin(ctx, u.ID, tok, now); err != nil {
		if errors.Is(err, repo.ErrStale) {
			// a concurrent failure locked the account after the lock check
			return AuthResult{}, s.lockedNow(ctx, u.ID, now)
		}
		return AuthResult{}, fmt.Errorf("record login: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	s.log.Info("login succeeded", "user_id", u.ID, "login", u.Login)
	s.audit.Record("user", u.ID, "auth.succeeded", nil)
	return AuthResult{User: u.Public(), Token: tok, ExpiresAt: exp}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, u models.User, now time.Time) error {
	updated, err := s.users.RecordFailedLogin(ctx, u.ID, s.policy.MaxAttempts, s.policy.Duration, now)
	if errors.Is(err, repo.ErrStale) {
		// a concurrent failure locked the account first
		return s.lockedNow(ctx, u.ID, now)
	}
	if err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}

	if locked, remaining := updated.LockedAt(now); locked {
		metrics.AuthAttempts.WithLabelValues("locked").Inc()
		metrics.AuthLockouts.Inc()
		s.log.Warn("account locked", "user_id", u.ID, "login", u.Login, "attempts", updated.LoginAttempts)
		s.audit.Record("user", u.ID, "auth.locked", map[string]any{"attempts": updated.LoginAttempts})
		return &models.LockedError{Remaining: remaining, JustLocked: true}
	}

	metrics.AuthAttempts.WithLabelValues("invalid_credentials").Inc()
	s.log.Info("login failed", "user_id", u.ID, "login", u.Login, "attempts", updated.LoginAttempts)
	s.audit.Record("user", u.ID, "auth.failed", map[string]any{"attempts": updated.LoginAttempts})
	return models.ErrInvalidCredentials
}

// lockedNow reloads a user whose conditional write lost to a lock.
func (s *AuthService) lockedNow(ctx context.Context, id string, now time.Time) error {
	cur, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("reload user: %w", err)
	}
	if locked, remaining := cur.LockedAt(now); locked {
		metrics.AuthAttempts.WithLabelValues("locked").Inc()
		return &models.LockedError{Remaining: remaining}
	}
	metrics.AuthAttempts.WithLabelValues("invalid_credentials").Inc()
	return models.ErrInvalidCredentials
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("placeholder-password")
	})
	return s.dummyHash
}

// VerifyToken recovers the claims or fails with models.ErrInvalidToken.
func (s *AuthService) VerifyToken(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}
