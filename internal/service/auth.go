package service

import (
	"fmt"

	"github.com/gastrohub/financas-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ============================================================
// Token verification — used by middleware
// ============================================================

// TokenVerifier validates Supabase-issued access tokens. The engine never
// issues tokens itself; login and session management live in Supabase
// Auth. It only checks the signature and pulls out the store the caller
// belongs to.
type TokenVerifier struct {
	secret []byte
	logger *zap.Logger
}

// NewTokenVerifier creates a verifier for HS256 tokens signed with the
// Supabase JWT secret.
func NewTokenVerifier(secret string, logger *zap.Logger) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), logger: logger}
}

// AccessClaims represents the custom claims in Supabase access tokens.
type AccessClaims struct {
	Sub     string `json:"sub"`
	StoreID string `json:"store_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// ValidateAccessToken parses and verifies a token, returning its claims.
func (v *TokenVerifier) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}
	if claims.StoreID == "" {
		v.logger.Warn("token accepted but missing store_id claim",
			zap.String("sub", claims.Sub),
		)
		return nil, &domain.ErrForbidden{Action: "acesso sem loja vinculada"}
	}
	return claims, nil
}
