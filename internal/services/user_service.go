package services

import (
	"context"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/auth"
	"stock-backend/internal/models"
)

// UserStore is the persistence the user service needs
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type UserService struct {
	Repo       UserStore
	JWTManager *auth.JWTManager
}

func NewUserService(repo UserStore, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

// Register creates a user with a hashed password and signs them in
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error) {
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user, true)
}

// Login checks the password and returns an access and refresh token pair
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.Repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.ErrUnauthorized("invalid username or password")
		}
		return nil, err
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrUnauthorized("invalid username or password")
	}

	return s.issue(user, true)
}

// Refresh trades a valid refresh token for a new access token
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	claims, err := s.JWTManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.ErrUnauthorized("invalid or expired refresh token")
	}

	user, err := s.Repo.Get(ctx, claims.UserID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.ErrUnauthorized("user no longer exists")
		}
		return nil, err
	}

	return s.issue(user, false)
}

// Me returns the user behind an authenticated request
func (s *UserService) Me(ctx context.Context, userID int) (*models.User, error) {
	return s.Repo.Get(ctx, userID)
}

func (s *UserService) issue(user *models.User, withRefresh bool) (*models.TokenResponse, error) {
	access, err := s.JWTManager.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	resp := &models.TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.JWTManager.AccessTTL().Seconds()),
		User:        user,
	}
	if withRefresh {
		if resp.RefreshToken, err = s.JWTManager.GenerateRefreshToken(user); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
