package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/publishing-backend/internal/models"
	"github.com/baharkarakas/publishing-backend/internal/repository"
)

const (
	qSelectArticleByID = `(?s)^SELECT\s+a\.id,.*u\.name,.*FROM\s+articles\s+a\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*a\.author_id\s+WHERE\s+a\.id\s*=\s*\$1$`
	qArticleExists     = `(?s)^SELECT\s+EXISTS\(SELECT\s+1\s+FROM\s+articles\s+WHERE\s+id\s*=\s*\$1\)$`
	qUpdateArticle     = `(?s)^WITH\s+a\s+AS\s+\(\s*UPDATE\s+articles\s+SET\s+title\s*=\s*\$2,\s*content\s*=\s*\$3,\s*status\s*=\s*\$4,\s*moderator_comments\s*=\s*\$5,` +
		`.*WHERE\s+id\s*=\s*\$1\s+AND\s+status\s*=\s*\$6\s+RETURNING\s+\*\s*\)\s*SELECT\s+a\.id,.*FROM\s+a\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*a\.author_id$`
	qDeleteArticle = `(?s)^DELETE\s+FROM\s+articles\s+WHERE\s+id\s*=\s*\$1\s+AND\s+status\s*=\s*\$2$`
)

var articleColumns = []string{"id", "title", "content", "author_id", "name", "status", "moderator_comments", "created_at", "updated_at"}

func articleRows(a models.Article) *pgxmock.Rows {
	return pgxmock.NewRows(articleColumns).
		AddRow(a.ID, a.Title, a.Content, a.AuthorID, a.AuthorName, a.Status, a.ModeratorComments.Ptr(), a.CreatedAt, a.UpdatedAt)
}

func draft() models.Article {
	return models.Article{
		ID:         "9a7d3c1b-2e4f-4a6b-8c0d-1e2f3a4b5c6d",
		Title:      "T1",
		Content:    "body",
		AuthorID:   alice().ID,
		AuthorName: "Alice",
		Status:     models.StatusDraft,
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	}
}

func exists(v bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"exists"}).AddRow(v)
}

func TestArticles_CreateJoinsAuthorName(t *testing.T) {
	mock := newMock(t)
	articles := NewArticles(mock)
	a := draft()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+articles\(id,\s*title,\s*content,\s*author_id,\s*status,\s*moderator_comments\)\s+VALUES\(\$1,\$2,\$3,\$4,\$5,\$6\)$`).
		WithArgs(a.ID, "T1", "body", a.AuthorID, models.StatusDraft, (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(qSelectArticleByID).WithArgs(a.ID).WillReturnRows(articleRows(a))

	got, err := articles.Create(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.AuthorName)
	assert.False(t, got.ModeratorComments.Present())
}

func TestArticles_CreateUnknownAuthor(t *testing.T) {
	mock := newMock(t)
	articles := NewArticles(mock)
	a := draft()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+articles`).
		WithArgs(a.ID, "T1", "body", a.AuthorID, models.StatusDraft, (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := articles.Create(context.Background(), a)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestArticles_GetByIDMalformedIsNotFound(t *testing.T) {
	mock := newMock(t)
	articles := NewArticles(mock)

	mock.ExpectQuery(qSelectArticleByID).
		WithArgs("42").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	_, err := articles.GetByID(context.Background(), "42")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestArticles_UpdateComparesStatus(t *testing.T) {
	mock := newMock(t)
	articles := NewArticles(mock)

	next := draft()
	next.Status = models.StatusRejected
	next.ModeratorComments = models.SomeComment("needs citations")
	mock.ExpectQuery(qUpdateArticle).
		WithArgs(next.ID, "T1", "body", models.StatusRejected, next.ModeratorComments.Ptr(), models.StatusOnModeration).
		WillReturnRows(articleRows(next))

	got, err := articles.Update(context.Background(), next, models.StatusOnModeration)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	c, ok := got.ModeratorComments.Get()
	require.True(t, ok)
	assert.Equal(t, "needs citations", c)
}

func TestArticles_UpdateLostRace(t *testing.T) {
	cases := map[string]struct {
		exists bool
		want   error
	}{
		"status moved on": {exists: true, want: repository.ErrStale},
		"article deleted": {exists: false, want: repository.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mock := newMock(t)
			next := draft()
			next.Status = models.StatusOnModeration

			mock.ExpectQuery(qUpdateArticle).
				WithArgs(next.ID, "T1", "body", models.StatusOnModeration, (*string)(nil), models.StatusDraft).
				WillReturnError(pgx.ErrNoRows)
			mock.ExpectQuery(qArticleExists).WithArgs(next.ID).WillReturnRows(exists(tc.exists))

			_, err := NewArticles(mock).Update(context.Background(), next, models.StatusDraft)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestArticles_Delete(t *testing.T) {
	id := draft().ID

	t.Run("matching status", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(qDeleteArticle).
			WithArgs(id, models.StatusRejected).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, NewArticles(mock).Delete(context.Background(), id, models.StatusRejected))
	})

	cases := map[string]struct {
		exists bool
		want   error
	}{
		"status moved on": {exists: true, want: repository.ErrStale},
		"already gone":    {exists: false, want: repository.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectExec(qDeleteArticle).
				WithArgs(id, models.StatusDraft).
				WillReturnResult(pgxmock.NewResult("DELETE", 0))
			mock.ExpectQuery(qArticleExists).WithArgs(id).WillReturnRows(exists(tc.exists))

			err := NewArticles(mock).Delete(context.Background(), id, models.StatusDraft)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestArticles_ListByStatusOrder(t *testing.T) {
	cases := map[string]struct {
		newestFirst bool
		order       string
	}{
		"queue oldest first":     {newestFirst: false, order: "ASC"},
		"published newest first": {newestFirst: true, order: "DESC"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mock := newMock(t)
			a := draft()
			a.Status = models.StatusPublished

			mock.ExpectQuery(`(?s)WHERE\s+a\.status\s*=\s*\$1\s+ORDER\s+BY\s+a\.created_at\s+` + tc.order + `,\s*a\.id$`).
				WithArgs(models.StatusPublished).
				WillReturnRows(articleRows(a))

			got, err := NewArticles(mock).ListByStatus(context.Background(), models.StatusPublished, tc.newestFirst)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, a.ID, got[0].ID)
		})
	}
}

func TestArticles_ListByAuthorEmpty(t *testing.T) {
	mock := newMock(t)
	id := alice().ID

	mock.ExpectQuery(`(?s)WHERE\s+a\.author_id\s*=\s*\$1\s+ORDER\s+BY\s+a\.created_at\s+DESC,\s*a\.id$`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(articleColumns))

	got, err := NewArticles(mock).ListByAuthor(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
