package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/order"
)

type OrderHandler struct {
	orders order.Repository
}

func NewOrderHandler(orders order.Repository) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var in order.PlaceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	if strings.TrimSpace(in.ShippingAddress.Address) == "" ||
		strings.TrimSpace(in.ShippingAddress.City) == "" ||
		strings.TrimSpace(in.PaymentMethod) == "" {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	o, err := h.orders.Place(r.Context(), identity.ID, in)
	if err != nil {
		var stockErr *order.InsufficientStockError
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "Cart is empty")
		case errors.As(err, &stockErr):
			writeError(w, http.StatusBadRequest, "Insufficient stock for "+stockErr.ProductName)
		case errors.Is(err, order.ErrNumberConflict):
			writeError(w, http.StatusConflict, "Could not place order, please retry")
		default:
			writeServerError(w)
		}
		return
	}
	writeData(w, http.StatusCreated, o)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	orders, err := h.orders.ListByUser(r.Context(), identity.ID)
	if err != nil {
		writeServerError(w)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeData(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	orderID := chi.URLParam(r, "id")
	if !isUUID(orderID) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	// Admins see any order, customers only their own.
	scope := identity.ID
	if identity.Role == auth.RoleAdmin {
		scope = ""
	}

	o, err := h.orders.GetByID(r.Context(), orderID, scope)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusOK, o)
}

type orderStatusRequest struct {
	Status         string  `json:"status"`
	TrackingNumber *string `json:"trackingNumber"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if !isUUID(orderID) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	var req orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	target := order.Status(strings.ToUpper(req.Status))
	if !order.ValidStatus(target) {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), orderID, target, req.TrackingNumber)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, order.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "Invalid status transition")
		default:
			writeServerError(w)
		}
		return
	}
	writeData(w, http.StatusOK, o)
}
