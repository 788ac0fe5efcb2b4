package auth

import (
	"errors"
	"time"

	"stock-backend/internal/config"
	"stock-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "typ" claim
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
)

type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	accessTTL := cfg.JWT.AccessTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := cfg.JWT.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &JWTManager{
		secret:     []byte(cfg.JWT.Secret),
		issuer:     cfg.JWT.Issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL is how long an access token stays valid
func (j *JWTManager) AccessTTL() time.Duration {
	return j.accessTTL
}

// GenerateAccessToken creates a short-lived token for API calls
func (j *JWTManager) GenerateAccessToken(user *models.User) (string, error) {
	return j.sign(user, TokenAccess, j.accessTTL)
}

// GenerateRefreshToken creates a long-lived token only accepted by the refresh endpoint
func (j *JWTManager) GenerateRefreshToken(user *models.User) (string, error) {
	return j.sign(user, TokenRefresh, j.refreshTTL)
}

func (j *JWTManager) sign(user *models.User, typ string, ttl time.Duration) (string, error) {
	now := j.now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateAccessToken verifies signature, expiry and that the token is an access token
func (j *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenAccess)
}

// ValidateRefreshToken verifies signature, expiry and that the token is a refresh token
func (j *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenRefresh)
}

func (j *JWTManager) validate(tokenString, typ string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != typ {
		return nil, ErrInvalidTokenType
	}

	return claims, nil
}
