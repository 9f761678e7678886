package auth

import (
	"errors"
	"time"

	"github.com/dialadrink/payrecon/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

const tokenDuration = 12 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// AuthToken creates and verifies staff auth tokens
type AuthToken struct {
	key []byte
}

// NewAuthToken creates new AuthToken instance
func NewAuthToken(key []byte) *AuthToken {
	return &AuthToken{key: key}
}

type claims struct {
	jwt.RegisteredClaims
	Login string `json:"login"`
}

// CreateToken creates signed token for staff login
func (at *AuthToken) CreateToken(login string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
		},
		Login: login,
	})

	return token.SignedString(at.key)
}

// VerifyToken checks token signature and expiry and returns its payload
func (at *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	tokenClaims := claims{}

	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return at.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &models.TokenPayload{
		Login:     tokenClaims.Login,
		IssuedAt:  tokenClaims.IssuedAt.Time,
		ExpiresAt: tokenClaims.ExpiresAt.Time,
	}, nil
}
