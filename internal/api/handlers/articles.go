package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/publishing-backend/internal/api/httpx"
	"github.com/baharkarakas/publishing-backend/internal/middleware"
	"github.com/baharkarakas/publishing-backend/internal/models"
	"github.com/baharkarakas/publishing-backend/internal/render"
	"github.com/baharkarakas/publishing-backend/internal/services"
)

type ArticleHandler struct {
	Svc *services.ArticleService
}

func NewArticleHandler(svc *services.ArticleService) *ArticleHandler {
	return &ArticleHandler{Svc: svc}
}

type createArticleReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type editArticleReq struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type rejectReq struct {
	Comments string `json:"comments"`
}

type renderedArticle struct {
	models.Article
	ContentHTML string `json:"content_html"`
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httpx.WriteDomainError(w, r, models.ErrInvalidToken)
		return
	}
	var req createArticleReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	a, err := h.Svc.Create(r.Context(), c.UserID, req.Title, req.Content)
	if err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h *ArticleHandler) Mine(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httpx.WriteDomainError(w, r, models.ErrInvalidToken)
		return
	}
	items, err := h.Svc.ListMine(r.Context(), c.UserID)
	writeList(w, r, items, err)
}

func (h *ArticleHandler) Edit(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httpx.WriteDomainError(w, r, models.ErrInvalidToken)
		return
	}
	var req editArticleReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	a, err := h.Svc.Edit(r.Context(), chi.URLParam(r, "id"), c.UserID, models.ArticlePatch{Title: req.Title, Content: req.Content})
	writeOne(w, r, a, err)
}

func (h *ArticleHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httpx.WriteDomainError(w, r, models.ErrInvalidToken)
		return
	}
	a, err := h.Svc.Submit(r.Context(), chi.URLParam(r, "id"), c.UserID)
	writeOne(w, r, a, err)
}

func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httpx.WriteDomainError(w, r, models.ErrInvalidToken)
		return
	}
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id"), c.UserID); err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ArticleHandler) Queue(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.ModerationQueue(r.Context())
	writeList(w, r, items, err)
}

func (h *ArticleHandler) Approve(w http.ResponseWriter, r *http.Request) {
	a, err := h.Svc.Decide(r.Context(), chi.URLParam(r, "id"), models.DecisionApprove, "")
	writeOne(w, r, a, err)
}

// Reject takes an optional body; an absent or blank comment is rejected by
// the service after the status check.
func (h *ArticleHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectReq
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteDomainError(w, r, err)
			return
		}
	}
	a, err := h.Svc.Decide(r.Context(), chi.URLParam(r, "id"), models.DecisionReject, req.Comments)
	writeOne(w, r, a, err)
}

func (h *ArticleHandler) Published(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.ListPublished(r.Context())
	writeList(w, r, items, err)
}

// Get serves one published article; ?format=html adds the rendered body.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.Svc.GetPublished(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "html" {
		httpx.WriteJSON(w, http.StatusOK, renderedArticle{Article: a, ContentHTML: render.Markdown(a.Content)})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func writeOne(w http.ResponseWriter, r *http.Request, a models.Article, err error) {
	if err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func writeList(w http.ResponseWriter, r *http.Request, items []models.Article, err error) {
	if err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []models.Article{}
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}
