package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/repair"
)

type RepairHandler struct {
	repairs repair.Repository
}

func NewRepairHandler(repairs repair.Repository) *RepairHandler {
	return &RepairHandler{repairs: repairs}
}

func (h *RepairHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var in repair.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	if strings.TrimSpace(in.DeviceType) == "" || strings.TrimSpace(in.Brand) == "" ||
		strings.TrimSpace(in.Model) == "" || strings.TrimSpace(in.Issue) == "" {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	t, err := h.repairs.Create(r.Context(), identity.ID, in)
	if err != nil {
		writeServerError(w)
		return
	}
	writeData(w, http.StatusCreated, t)
}

func (h *RepairHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	tickets, err := h.repairs.ListByUser(r.Context(), identity.ID)
	if err != nil {
		writeServerError(w)
		return
	}
	if tickets == nil {
		tickets = []repair.Ticket{}
	}
	writeData(w, http.StatusOK, tickets)
}

func (h *RepairHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	ticketID := chi.URLParam(r, "id")
	if !isUUID(ticketID) {
		writeError(w, http.StatusNotFound, "Repair ticket not found")
		return
	}

	// Staff can open any ticket, customers only their own.
	scope := identity.ID
	if identity.Role == auth.RoleAdmin || identity.Role == auth.RoleTechnician {
		scope = ""
	}

	t, err := h.repairs.GetByID(r.Context(), ticketID, scope)
	if err != nil {
		if errors.Is(err, repair.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Repair ticket not found")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *RepairHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repair.ListFilter{
		Status:     strings.ToUpper(q.Get("status")),
		Priority:   strings.ToUpper(q.Get("priority")),
		AssignedTo: q.Get("assignedTo"),
	}
	if f.Status != "" && !repair.ValidStatus(repair.Status(f.Status)) {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	if f.Priority != "" && !repair.ValidPriority(repair.Priority(f.Priority)) {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}

	tickets, err := h.repairs.ListAll(r.Context(), f)
	if err != nil {
		writeServerError(w)
		return
	}
	if tickets == nil {
		tickets = []repair.Ticket{}
	}
	writeData(w, http.StatusOK, tickets)
}

func (h *RepairHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "id")
	if !isUUID(ticketID) {
		writeError(w, http.StatusNotFound, "Repair ticket not found")
		return
	}

	var in repair.StatusUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	in.Status = repair.Status(strings.ToUpper(string(in.Status)))
	if !repair.ValidStatus(in.Status) {
		writeError(w, http.StatusBadRequest, "Validation errors")
		return
	}
	if in.Priority != nil {
		p := repair.Priority(strings.ToUpper(string(*in.Priority)))
		if !repair.ValidPriority(p) {
			writeError(w, http.StatusBadRequest, "Validation errors")
			return
		}
		in.Priority = &p
	}

	t, err := h.repairs.UpdateStatus(r.Context(), ticketID, in)
	if err != nil {
		if errors.Is(err, repair.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Repair ticket not found")
			return
		}
		writeServerError(w)
		return
	}
	writeData(w, http.StatusOK, t)
}
