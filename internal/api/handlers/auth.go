package handlers

import (
	"net/http"
	"time"

	"github.com/baharkarakas/publishing-backend/internal/api/httpx"
	"github.com/baharkarakas/publishing-backend/internal/middleware"
	"github.com/baharkarakas/publishing-backend/internal/models"
	"github.com/baharkarakas/publishing-backend/internal/services"
)

type AuthHandler struct {
	Svc *services.AuthService
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

type signupReq struct {
	Name     string `json:"name"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type createUserReq struct {
	signupReq
	Role models.Role `json:"role"`
}

type signinReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type meResp struct {
	ID    string      `json:"id"`
	Login string      `json:"login"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

// Signup always creates an AUTHOR; a role in the body is ignored.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	u, err := h.Svc.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Login:    req.Login,
		Password: req.Password,
		Role:     models.RoleAuthor,
	})
	if err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	res, err := h.Svc.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

// CreateUser is the admin path; the role comes from the body.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	role, ok := models.ParseRole(string(req.Role))
	if !ok {
		httpx.WriteDomainError(w, r, models.NewValidationError("role", "must be one of ADMIN, AUTHOR, MODERATOR"))
		return
	}
	u, err := h.Svc.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Login:    req.Login,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.ListUsers(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	c, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		httpx.WriteDomainError(w, r, models.ErrInvalidToken)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, meResp{ID: c.UserID, Login: c.Login, Name: c.Name, Role: c.Role})
}
