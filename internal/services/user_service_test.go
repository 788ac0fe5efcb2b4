package services

import (
	"context"
	"testing"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/auth"
	"stock-backend/internal/config"
	"stock-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[int]models.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	for _, other := range r.users {
		if other.Username == u.Username {
			return apperrors.ErrConflict("User already exists")
		}
	}
	u.ID = len(r.users) + 1
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFoundWithID("User", id)
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound("User")
}

func newUserService() *UserService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	return NewUserService(&fakeUserRepo{users: map[int]models.User{}}, auth.NewJWTManager(cfg))
}

func TestRegisterLoginRefresh(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &models.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)
	assert.Equal(t, int64(3600), reg.ExpiresIn)

	login, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken)

	me, err := svc.Me(ctx, refreshed.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestLoginFailuresAreUnauthorized(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()
	_, err := svc.Register(ctx, &models.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrong"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "hunter22"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, &models.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, reg.AccessToken)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newUserService()
	ctx := context.Background()
	req := &models.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "hunter22"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}
