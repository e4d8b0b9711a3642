package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/publishing-backend/internal/models"
	"github.com/baharkarakas/publishing-backend/internal/repository"
)

type usersRepo struct{ db DBTX }

func NewUsers(db DBTX) repository.Users {
	return &usersRepo{db: db}
}

const userCols = `id, name, login, role, password_hash, login_attempts, lock_until, COALESCE(current_token, ''), created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Login, &u.Role, &u.PasswordHash, &u.LoginAttempts, &u.LockUntil, &u.CurrentToken, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO users(id, name, login, role, password_hash) VALUES($1,$2,$3,$4,$5)`,
		u.ID, u.Name, u.Login, u.Role, u.PasswordHash,
	)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return r.GetByID(ctx, u.ID)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) GetByLogin(ctx context.Context, login string) (models.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE login=$1`, login))
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// RecordFailedLogin does the increment and the lock decision in one
// statement so concurrent failures cannot both read the same count.
func (r *usersRepo) RecordFailedLogin(ctx context.Context, id string, threshold int, lockFor time.Duration, now time.Time) (models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users
		    SET login_attempts = login_attempts + 1,
		        lock_until = CASE WHEN login_attempts + 1 >= $2 THEN $3::timestamptz ELSE lock_until END,
		        updated_at = now()
		  WHERE id = $1
		    AND (lock_until IS NULL OR lock_until <= $4)
		  RETURNING `+userCols,
		id, threshold, now.Add(lockFor), now,
	))
	if errors.Is(err, repository.ErrNotFound) {
		exists, xerr := r.exists(ctx, id)
		if xerr != nil {
			return models.User{}, xerr
		}
		if exists {
			return models.User{}, repository.ErrStale
		}
	}
	return u, err
}

func (r *usersRepo) RecordLogin(ctx context.Context, id, token string, now time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		    SET login_attempts = 0, lock_until = NULL, current_token = $2, updated_at = now()
		  WHERE id = $1
		    AND (lock_until IS NULL OR lock_until <= $3)`,
		id, token, now,
	)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return repository.ErrStale
	}
	return repository.ErrNotFound
}

func (r *usersRepo) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, id).Scan(&exists)
	return exists, mapErr(err)
}
