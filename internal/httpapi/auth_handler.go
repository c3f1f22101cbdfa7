package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/user"
)

type AuthHandler struct {
	users  user.Repository
	tokens *auth.TokenManager
}

func NewAuthHandler(users user.Repository, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !strings.Contains(req.Email, "@") || len(req.Password) < 6 ||
		strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeServerError(w)
		return
	}

	u := &user.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		Role:         auth.RoleCustomer,
		IsActive:     true,
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		writeServerError(w)
		return
	}

	token, err := h.tokens.Generate(u.ID, u.Role)
	if err != nil {
		writeServerError(w)
		return
	}

	writeData(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  u,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeServerError(w)
		return
	}
	if !u.IsActive || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Generate(u.ID, u.Role)
	if err != nil {
		writeServerError(w)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u,
	})
}
