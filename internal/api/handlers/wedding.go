package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vowsuite/vowsuite/internal/api/middleware"
	"github.com/vowsuite/vowsuite/internal/domain"
	"github.com/vowsuite/vowsuite/internal/service"
)

// WeddingHandler serves wedding record CRUD scoped to the organization
// embedded in the caller's token.
type WeddingHandler struct {
	svc *service.WeddingService
}

func NewWeddingHandler(svc *service.WeddingService) *WeddingHandler {
	return &WeddingHandler{svc: svc}
}

func orgFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.Organization == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return claims.Organization, true
}

type createWeddingRequest struct {
	BrideName   string   `json:"bride_name"`
	GroomName   string   `json:"groom_name"`
	WeddingDate string   `json:"wedding_date"`
	Venue       string   `json:"venue"`
	Budget      *float64 `json:"budget,omitempty"`
}

func (h *WeddingHandler) Create(w http.ResponseWriter, r *http.Request) {
	org, ok := orgFromRequest(w, r)
	if !ok {
		return
	}

	var req createWeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BrideName == "" || req.GroomName == "" {
		writeError(w, http.StatusBadRequest, "bride_name and groom_name are required")
		return
	}
	if req.WeddingDate == "" || req.Venue == "" {
		writeError(w, http.StatusBadRequest, "wedding_date and venue are required")
		return
	}

	wedding, err := h.svc.Create(r.Context(), org, &domain.Wedding{
		BrideName:   req.BrideName,
		GroomName:   req.GroomName,
		WeddingDate: req.WeddingDate,
		Venue:       req.Venue,
		Budget:      req.Budget,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create wedding")
		return
	}

	writeJSON(w, http.StatusCreated, wedding)
}

func (h *WeddingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	org, ok := orgFromRequest(w, r)
	if !ok {
		return
	}

	wedding, err := h.svc.Get(r.Context(), org, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrWeddingNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get wedding")
		return
	}

	writeJSON(w, http.StatusOK, wedding)
}

func (h *WeddingHandler) Update(w http.ResponseWriter, r *http.Request) {
	org, ok := orgFromRequest(w, r)
	if !ok {
		return
	}

	var upd domain.WeddingUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wedding, err := h.svc.Update(r.Context(), org, chi.URLParam(r, "id"), upd)
	if err != nil {
		if errors.Is(err, service.ErrWeddingNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update wedding")
		return
	}

	writeJSON(w, http.StatusOK, wedding)
}

func (h *WeddingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	org, ok := orgFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), org, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, service.ErrWeddingNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete wedding")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "wedding deleted"})
}

func (h *WeddingHandler) List(w http.ResponseWriter, r *http.Request) {
	org, ok := orgFromRequest(w, r)
	if !ok {
		return
	}

	weddings, err := h.svc.List(r.Context(), org)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list weddings")
		return
	}

	writeJSON(w, http.StatusOK, weddings)
}
