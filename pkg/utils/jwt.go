package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"optysys-backend/pkg/models"
)

// JWTService signs and verifies access tokens
type JWTService struct {
	secretKey []byte
	expires   time.Duration
}

// NewJWTService creates a JWT service with the given signing key and token lifetime
func NewJWTService(secretKey string, expires time.Duration) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		expires:   expires,
	}
}

// GenerateAccessToken signs an access token for the given user
func (j *JWTService) GenerateAccessToken(userID, email string) (string, int64, error) {
	now := time.Now()
	expiry := now.Add(j.expires)

	claims := &models.TokenClaims{
		UserID: userID,
		Email:  email,
		Exp:    expiry.Unix(),
		Iat:    now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	return tokenString, expiry.Unix(), nil
}

// ValidateToken verifies the token signature, type and expiry
func (j *JWTService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if time.Now().Unix() > claims.Exp {
		return nil, fmt.Errorf("token expired")
	}

	return claims, nil
}
