package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/baharkarakas/publishing-backend/internal/metrics"
	"github.com/baharkarakas/publishing-backend/internal/models"
	repo "github.com/baharkarakas/publishing-backend/internal/repository"
	"github.com/baharkarakas/publishing-backend/internal/validate"
)

const (
	opCreate  = "create"
	opEdit    = "edit"
	opSubmit  = "submit"
	opDelete  = "delete"
	opApprove = "approve"
	opReject  = "reject"
)

type rule struct {
	from []models.ArticleStatus
	// to is empty for operations that keep the status
	to models.ArticleStatus
}

func (r rule) allows(s models.ArticleStatus) bool {
	for _, f := range r.from {
		if f == s {
			return true
		}
	}
	return false
}

var lifecycle = map[string]rule{
	opEdit:    {from: []models.ArticleStatus{models.StatusDraft, models.StatusRejected}},
	opSubmit:  {from: []models.ArticleStatus{models.StatusDraft, models.StatusRejected}, to: models.StatusOnModeration},
	opDelete:  {from: []models.ArticleStatus{models.StatusDraft, models.StatusRejected}},
	opApprove: {from: []models.ArticleStatus{models.StatusOnModeration}, to: models.StatusPublished},
	opReject:  {from: []models.ArticleStatus{models.StatusOnModeration}, to: models.StatusRejected},
}

type ArticleInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (in ArticleInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Content, validation.Required),
	)
}

type ArticleService struct {
	articles repo.Articles
	audit    *Auditor
	log      *slog.Logger
}

func NewArticleService(articles repo.Articles, audit *Auditor, opts ...Option) *ArticleService {
	o := buildOptions(opts)
	return &ArticleService{articles: articles, audit: audit, log: o.log}
}

func (s *ArticleService) Create(ctx context.Context, authorID, title, content string) (models.Article, error) {
	in := ArticleInput{Title: strings.TrimSpace(title), Content: strings.TrimSpace(content)}
	if err := validate.Check(in); err != nil {
		return models.Article{}, err
	}
	a, err := s.articles.Create(ctx, models.Article{
		Title:             in.Title,
		Content:           in.Content,
		AuthorID:          authorID,
		Status:            models.StatusDraft,
		ModeratorComments: models.NoComment(),
	})
	if err != nil {
		return models.Article{}, fmt.Errorf("create article: %w", err)
	}
	s.applied(a, opCreate)
	return a, nil
}

func (s *ArticleService) Edit(ctx context.Context, id, authorID string, patch models.ArticlePatch) (models.Article, error) {
	title, hasTitle := trimmed(patch.Title)
	content, hasContent := trimmed(patch.Content)
	if !hasTitle && !hasContent {
		return models.Article{}, models.NewValidationError("title", "either title or content must be provided")
	}

	a, err := s.owned(ctx, id, authorID)
	if err != nil {
		return models.Article{}, err
	}
	if !lifecycle[opEdit].allows(a.Status) {
		return models.Article{}, &models.TransitionError{From: a.Status, Op: opEdit}
	}
	next := a
	if hasTitle {
		next.Title = title
	}
	if hasContent {
		next.Content = content
	}
	return s.persist(ctx, next, a.Status, opEdit)
}

func (s *ArticleService) Submit(ctx context.Context, id, authorID string) (models.Article, error) {
	a, err := s.owned(ctx, id, authorID)
	if err != nil {
		return models.Article{}, err
	}
	r := lifecycle[opSubmit]
	if !r.allows(a.Status) {
		return models.Article{}, &models.TransitionError{From: a.Status, Op: opSubmit}
	}
	next := a
	next.Status = r.to
	next.ModeratorComments = models.NoComment()
	return s.persist(ctx, next, a.Status, opSubmit)
}

func (s *ArticleService) Delete(ctx context.Context, id, authorID string) error {
	a, err := s.owned(ctx, id, authorID)
	if err != nil {
		return err
	}
	if !lifecycle[opDelete].allows(a.Status) {
		return &models.TransitionError{From: a.Status, Op: opDelete}
	}
	err = s.articles.Delete(ctx, a.ID, a.Status)
	if err != nil {
		_, err = s.raced(ctx, a.ID, opDelete, err)
		return err
	}
	s.applied(a, opDelete)
	return nil
}

// Decide applies a moderator decision to an article awaiting moderation.
func (s *ArticleService) Decide(ctx context.Context, id string, decision models.Decision, comments string) (models.Article, error) {
	a, err := s.articles.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Article{}, models.ErrNotFoundOrForbidden
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("load article: %w", err)
	}

	op := string(decision)
	if !lifecycle[opApprove].allows(a.Status) {
		return models.Article{}, &models.TransitionError{From: a.Status, Op: op}
	}

	next := a
	switch decision {
	case models.DecisionApprove:
		next.Status = lifecycle[opApprove].to
		next.ModeratorComments = models.NoComment()
	case models.DecisionReject:
		comments = strings.TrimSpace(comments)
		if comments == "" {
			return models.Article{}, models.NewValidationError("comments", "comments are required for rejection")
		}
		next.Status = lifecycle[opReject].to
		next.ModeratorComments = models.SomeComment(comments)
	default:
		return models.Article{}, &models.TransitionError{From: a.Status, Op: op}
	}
	return s.persist(ctx, next, a.Status, op)
}

func (s *ArticleService) ListMine(ctx context.Context, authorID string) ([]models.Article, error) {
	return s.list(s.articles.ListByAuthor(ctx, authorID))
}

// ModerationQueue is oldest first.
func (s *ArticleService) ModerationQueue(ctx context.Context) ([]models.Article, error) {
	return s.list(s.articles.ListByStatus(ctx, models.StatusOnModeration, false))
}

func (s *ArticleService) ListPublished(ctx context.Context) ([]models.Article, error) {
	return s.list(s.articles.ListByStatus(ctx, models.StatusPublished, true))
}

// GetPublished only resolves published articles; any other status is
// reported as not found.
func (s *ArticleService) GetPublished(ctx context.Context, id string) (models.Article, error) {
	a, err := s.articles.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Article{}, models.ErrNotFound
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("load article: %w", err)
	}
	if a.Status != models.StatusPublished {
		return models.Article{}, models.ErrNotFound
	}
	return a, nil
}

// owned loads an article only for its author. Missing and foreign articles
// are indistinguishable to the caller.
func (s *ArticleService) owned(ctx context.Context, id, authorID string) (models.Article, error) {
	a, err := s.articles.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Article{}, models.ErrNotFoundOrForbidden
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("load article: %w", err)
	}
	if a.AuthorID != authorID {
		return models.Article{}, models.ErrNotFoundOrForbidden
	}
	return a, nil
}

func (s *ArticleService) persist(ctx context.Context, next models.Article, expected models.ArticleStatus, op string) (models.Article, error) {
	out, err := s.articles.Update(ctx, next, expected)
	if err != nil {
		return s.raced(ctx, next.ID, op, err)
	}
	s.applied(out, op)
	return out, nil
}

// raced converts a failed conditional write into the error the caller would
// have seen had it observed the newer state.
func (s *ArticleService) raced(ctx context.Context, id, op string, err error) (models.Article, error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return models.Article{}, models.ErrNotFoundOrForbidden
	case errors.Is(err, repo.ErrStale):
		cur, gerr := s.articles.GetByID(ctx, id)
		if errors.Is(gerr, repo.ErrNotFound) {
			return models.Article{}, models.ErrNotFoundOrForbidden
		}
		if gerr != nil {
			return models.Article{}, fmt.Errorf("reload article: %w", gerr)
		}
		return models.Article{}, &models.TransitionError{From: cur.Status, Op: op}
	default:
		return models.Article{}, fmt.Errorf("%s article: %w", op, err)
	}
}

func (s *ArticleService) applied(a models.Article, op string) {
	metrics.ArticleTransitions.WithLabelValues(op).Inc()
	s.log.Info("article "+op, "article_id", a.ID, "author_id", a.AuthorID, "status", a.Status)
	details := map[string]any{"status": a.Status}
	if c, ok := a.ModeratorComments.Get(); ok {
		details["moderator_comments"] = c
	}
	s.audit.Record("article", a.ID, "article."+op, details)
}

func (s *ArticleService) list(items []models.Article, err error) ([]models.Article, error) {
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return items, nil
}

func trimmed(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	v := strings.TrimSpace(*p)
	return v, v != ""
}
