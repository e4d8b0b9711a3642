package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/publishing-backend/internal/models"
	"github.com/baharkarakas/publishing-backend/internal/repository"
)

type articlesRepo struct{ db DBTX }

func NewArticles(db DBTX) repository.Articles {
	return &articlesRepo{db: db}
}

// author name is joined explicitly on every read path
const articleCols = `a.id, a.title, a.content, a.author_id, u.name, a.status, a.moderator_comments, a.created_at, a.updated_at`

func scanArticle(row pgx.Row) (models.Article, error) {
	var (
		a        models.Article
		comments *string
	)
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.AuthorName, &a.Status, &comments, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.Article{}, mapErr(err)
	}
	a.ModeratorComments = models.CommentFromPtr(comments)
	return a, nil
}

func (r *articlesRepo) Create(ctx context.Context, a models.Article) (models.Article, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO articles(id, title, content, author_id, status, moderator_comments)
		 VALUES($1,$2,$3,$4,$5,$6)`,
		a.ID, a.Title, a.Content, a.AuthorID, a.Status, a.ModeratorComments.Ptr(),
	)
	if err != nil {
		return models.Article{}, mapErr(err)
	}
	return r.GetByID(ctx, a.ID)
}

func (r *articlesRepo) GetByID(ctx context.Context, id string) (models.Article, error) {
	return scanArticle(r.db.QueryRow(ctx,
		`SELECT `+articleCols+`
		   FROM articles a JOIN users u ON u.id = a.author_id
		  WHERE a.id = $1`, id))
}

func (r *articlesRepo) Update(ctx context.Context, a models.Article, expected models.ArticleStatus) (models.Article, error) {
	out, err := scanArticle(r.db.QueryRow(ctx,
		`WITH a AS (
		   UPDATE articles
		      SET title = $2, content = $3, status = $4, moderator_comments = $5, updated_at = now()
		    WHERE id = $1 AND status = $6
		    RETURNING *
		 )
		 SELECT `+articleCols+` FROM a JOIN users u ON u.id = a.author_id`,
		a.ID, a.Title, a.Content, a.Status, a.ModeratorComments.Ptr(), expected,
	))
	if errors.Is(err, repository.ErrNotFound) {
		return models.Article{}, r.staleOrMissing(ctx, a.ID)
	}
	return out, err
}

func (r *articlesRepo) Delete(ctx context.Context, id string, expected models.ArticleStatus) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1 AND status = $2`, id, expected)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

func (r *articlesRepo) ListByAuthor(ctx context.Context, authorID string) ([]models.Article, error) {
	return r.list(ctx,
		`SELECT `+articleCols+`
		   FROM articles a JOIN users u ON u.id = a.author_id
		  WHERE a.author_id = $1
		  ORDER BY a.created_at DESC, a.id`, authorID)
}

func (r *articlesRepo) ListByStatus(ctx context.Context, status models.ArticleStatus, newestFirst bool) ([]models.Article, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	return r.list(ctx,
		`SELECT `+articleCols+`
		   FROM articles a JOIN users u ON u.id = a.author_id
		  WHERE a.status = $1
		  ORDER BY a.created_at `+order+`, a.id`, status)
}

func (r *articlesRepo) list(ctx context.Context, q string, args ...any) ([]models.Article, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *articlesRepo) staleOrMissing(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE id=$1)`, id).Scan(&exists); err != nil {
		return mapErr(err)
	}
	if exists {
		return repository.ErrStale
	}
	return repository.ErrNotFound
}
