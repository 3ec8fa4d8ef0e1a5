package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prasetya/spendsight/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenService exchanges the configured API key for short-lived access
// tokens and validates them for the middleware.
type TokenService struct {
	jwtSecret  []byte
	apiKeyHash string
	accessTTL  time.Duration
	logger     *zap.Logger
}

func NewTokenService(jwtSecret []byte, apiKeyHash string, accessTTL time.Duration, logger *zap.Logger) *TokenService {
	return &TokenService{
		jwtSecret:  jwtSecret,
		apiKeyHash: apiKeyHash,
		accessTTL:  accessTTL,
		logger:     logger,
	}
}

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// IssueToken verifies the API key against the stored bcrypt hash and
// returns a signed access token.
func (s *TokenService) IssueToken(ctx context.Context, req *domain.TokenRequest) (*domain.TokenResponse, error) {
	_, span := tracer.Start(ctx, "TokenService.IssueToken")
	defer span.End()

	if req.APIKey == "" {
		return nil, &domain.ErrValidation{Field: "apiKey", Message: "required"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.apiKeyHash), []byte(req.APIKey)); err != nil {
		s.logger.Warn("token request with invalid api key")
		return nil, &domain.ErrUnauthorized{Message: "invalid api key"}
	}

	userID := req.UserID
	if userID == "" {
		userID = "default"
	}

	now := time.Now()
	claims := JWTClaims{
		Sub:  userID,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "spendsight-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.accessTTL.Seconds()),
	}, nil
}

// ValidateAccessToken is used by the auth middleware.
func (s *TokenService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return claims, nil
}
