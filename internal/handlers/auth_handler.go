package handlers

import (
	"context"
	"net/http"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/middleware"
	"stock-backend/internal/models"
	"stock-backend/pkg/utils"
)

// Accounts is the user service as the auth endpoints see it
type Accounts interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Me(ctx context.Context, userID int) (*models.User, error)
}

type AuthHandler struct {
	Service Accounts
}

func NewAuthHandler(s Accounts) *AuthHandler {
	return &AuthHandler{Service: s}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.Service.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Refresh expects the refresh token as the bearer credential
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		writeError(w, r, apperrors.ErrUnauthorized("Refresh token required"))
		return
	}

	resp, err := h.Service.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, apperrors.ErrUnauthorized(""))
		return
	}

	user, err := h.Service.Me(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}
