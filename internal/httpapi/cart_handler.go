package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/cart"
)

type CartHandler struct {
	carts cart.Repository
}

func NewCartHandler(carts cart.Repository) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	items, err := h.carts.ListByUser(r.Context(), identity.ID)
	if err != nil {
		writeServerError(w)
		return
	}
	writeData(w, http.StatusOK, cart.NewView(items))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !isUUID(req.ProductID) || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	item, err := h.carts.Add(r.Context(), identity.ID, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, cart.ErrInsufficientStock):
			writeError(w, http.StatusBadRequest, "Insufficient stock")
		default:
			writeServerError(w)
		}
		return
	}
	writeData(w, http.StatusCreated, item)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	itemID := chi.URLParam(r, "id")
	if !isUUID(itemID) {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	item, err := h.carts.UpdateQuantity(r.Context(), identity.ID, itemID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrItemNotFound):
			writeError(w, http.StatusNotFound, "Cart item not found")
		case errors.Is(err, cart.ErrInsufficientStock):
			writeError(w, http.StatusBadRequest, "Insufficient stock")
		default:
			writeServerError(w)
		}
		return
	}
	writeData(w, http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	itemID := chi.URLParam(r, "id")
	if !isUUID(itemID) {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	if err := h.carts.Remove(r.Context(), identity.ID, itemID); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		writeServerError(w)
		return
	}
	writeMessage(w, http.StatusOK, "Item removed from cart")
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	if err := h.carts.Clear(r.Context(), identity.ID); err != nil {
		writeServerError(w)
		return
	}
	writeMessage(w, http.StatusOK, "Cart cleared")
}
