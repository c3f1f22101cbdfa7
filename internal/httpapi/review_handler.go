package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/catalog"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/review"
)

type ReviewHandler struct {
	reviews review.Repository
	catalog *catalog.Service
}

func NewReviewHandler(reviews review.Repository, catalogSvc *catalog.Service) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, catalog: catalogSvc}
}

func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if !isUUID(productID) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), productID)
	if err != nil {
		writeServerError(w)
		return
	}
	if reviews == nil {
		reviews = []review.Review{}
	}
	writeData(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var in review.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil ||
		!isUUID(in.ProductID) || in.Rating < 1 || in.Rating > 5 {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	rv, err := h.reviews.Create(r.Context(), identity.ID, in)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrAlreadyReviewed):
			writeError(w, http.StatusBadRequest, "You have already reviewed this product")
		case errors.Is(err, review.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "Product not found")
		default:
			writeServerError(w)
		}
		return
	}

	// The product's cached rating aggregate is stale now.
	h.catalog.InvalidateProduct(r.Context(), in.ProductID)

	writeData(w, http.StatusCreated, rv)
}
