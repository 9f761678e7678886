package service

import (
	"context"

	"github.com/dialadrink/payrecon/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// TokenService creates and verifies staff auth tokens
type TokenService interface {
	CreateToken(login string) (string, error)
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}

// AuthService authenticates dashboard operators. Credentials come from
// deployment config; there is no operator CRUD in this service.
type AuthService struct {
	login        string
	passwordHash string
	token        TokenService
}

// NewAuthService creates new AuthService instance
func NewAuthService(login, passwordHash string, token TokenService) *AuthService {
	return &AuthService{
		login:        login,
		passwordHash: passwordHash,
		token:        token,
	}
}

// Login checks operator credentials and returns a signed token
func (as *AuthService) Login(_ context.Context, login, password string) (string, error) {
	if login != as.login {
		return "", models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(as.passwordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return as.token.CreateToken(login)
}
