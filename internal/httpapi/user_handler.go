package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/user"
)

type UserHandler struct {
	users user.Repository
}

func NewUserHandler(users user.Repository) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	u, err := h.users.GetByID(r.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusOK, u)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeServerError(w)
		return
	}
	if users == nil {
		users = []user.Summary{}
	}
	writeData(w, http.StatusOK, users)
}

func (h *UserHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isUUID(id) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	detail, err := h.users.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusOK, detail)
}

type setActiveRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isUUID(id) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	u, err := h.users.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusOK, u)
}
