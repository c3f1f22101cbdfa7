package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/catalog"
)

type CatalogHandler struct {
	svc *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

var validConditions = map[string]bool{
	catalog.ConditionNew:         true,
	catalog.ConditionUsed:        true,
	catalog.ConditionRefurbished: true,
}

var validSorts = map[string]bool{
	catalog.SortPriceAsc:  true,
	catalog.SortPriceDesc: true,
	catalog.SortRating:    true,
	catalog.SortNewest:    true,
	catalog.SortFeatured:  true,
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := catalog.ListFilter{
		CategorySlug: q.Get("category"),
		BrandSlug:    q.Get("brand"),
		Condition:    strings.ToUpper(q.Get("condition")),
		Search:       q.Get("search"),
		Sort:         q.Get("sort"),
	}
	if f.Condition != "" && !validConditions[f.Condition] {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	if f.Sort != "" && !validSorts[f.Sort] {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	for param, dst := range map[string]**decimal.Decimal{
		"minPrice": &f.MinPrice,
		"maxPrice": &f.MaxPrice,
	} {
		if raw := q.Get(param); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil || d.IsNegative() {
				writeError(w, http.StatusBadRequest, "Validation errors")
				return
			}
			*dst = &d
		}
	}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Validation errors")
			return
		}
		f.Page = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Validation errors")
			return
		}
		f.Limit = n
	}

	page, err := h.svc.ListProducts(r.Context(), f)
	if err != nil {
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    page.Items,
		"pagination": map[string]any{
			"page":  page.Page,
			"limit": page.Limit,
			"total": page.Total,
			"pages": page.Pages,
		},
	})
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusOK, d)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.SKU) == "" ||
		in.Price.IsNegative() || in.Stock < 0 ||
		!isUUID(in.CategoryID) || !isUUID(in.BrandID) {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	if in.Condition != "" && !validConditions[in.Condition] {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	p, err := h.svc.CreateProduct(r.Context(), in)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateSlug) {
			writeError(w, http.StatusBadRequest, "Product with this name or SKU already exists")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isUUID(id) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	var in catalog.UpdateProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	if (in.Price != nil && in.Price.IsNegative()) ||
		(in.Stock != nil && *in.Stock < 0) ||
		(in.Condition != nil && !validConditions[*in.Condition]) ||
		(in.CategoryID != nil && !isUUID(*in.CategoryID)) ||
		(in.BrandID != nil && !isUUID(*in.BrandID)) {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	p, err := h.svc.UpdateProduct(r.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			writeError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, catalog.ErrDuplicateSlug):
			writeError(w, http.StatusBadRequest, "Product with this name or SKU already exists")
		default:
			writeServerError(w)
		}
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isUUID(id) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err := h.svc.DeactivateProduct(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		writeServerError(w)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted")
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		writeServerError(w)
		return
	}
	if categories == nil {
		categories = []catalog.Category{}
	}
	writeData(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateCategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), in)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateSlug) {
			writeError(w, http.StatusBadRequest, "Category already exists")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.svc.ListBrands(r.Context())
	if err != nil {
		writeServerError(w)
		return
	}
	if brands == nil {
		brands = []catalog.Brand{}
	}
	writeData(w, http.StatusOK, brands)
}

func (h *CatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var in catalog.CreateBrandInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	b, err := h.svc.CreateBrand(r.Context(), in)
	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateSlug) {
			writeError(w, http.StatusBadRequest, "Brand already exists")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusCreated, b)
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
