package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dialadrink/payrecon/internal/models"
)

//go:generate mockgen -source=auth.go -destination=mocks/auth.go -package=mocks

type AuthService interface {
	// Login checks operator credentials and returns a signed token
	Login(ctx context.Context, login, password string) (string, error)
}

// AuthHandler represents HTTP handler for auth-related requests
type AuthHandler struct {
	svc AuthService
}

// NewAuthHandler creates new AuthHandler instance
func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginUser authenticates a dashboard operator and sets the auth cookie
// 200 — operator authenticated
// 400 — bad request
// 401 — invalid login or password
// 500 — internal error
func (ah *AuthHandler) LoginUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var loginReq loginRequest

		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		token, err := ah.svc.Login(r.Context(), loginReq.Login, loginReq.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				http.Error(w, "invalid login or password", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
		})
		w.WriteHeader(http.StatusOK)
	}
}
