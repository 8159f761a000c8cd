package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vowsuite/vowsuite/internal/api/middleware"
	"github.com/vowsuite/vowsuite/internal/domain"
	"github.com/vowsuite/vowsuite/internal/service"
)

type OrgHandler struct {
	svc *service.OrgService
}

func NewOrgHandler(svc *service.OrgService) *OrgHandler {
	return &OrgHandler{svc: svc}
}

type createOrgRequest struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
}

func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrganizationName == "" {
		writeError(w, http.StatusBadRequest, "organization_name is required")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	res, err := h.svc.Create(r.Context(), req.OrganizationName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrgNameTooLong):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrgConflict), errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create organization")
		}
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("organization_name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "organization_name is required")
		return
	}

	org, err := h.svc.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrOrgNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get organization")
		return
	}

	writeJSON(w, http.StatusOK, org)
}

type updateOrgRequest struct {
	OrganizationName    string  `json:"organization_name"`
	NewOrganizationName *string `json:"new_organization_name,omitempty"`
	Email               *string `json:"email,omitempty"`
	Password            *string `json:"password,omitempty"`
}

func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrganizationName == "" {
		writeError(w, http.StatusBadRequest, "organization_name is required")
		return
	}
	if !authorizedFor(r, req.OrganizationName) {
		writeError(w, http.StatusForbidden, "not authorized to modify this organization")
		return
	}

	res, err := h.svc.Update(r.Context(), req.OrganizationName, domain.OrgUpdate{
		NewName:  req.NewOrganizationName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrgNameTooLong):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrOrgNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrOrgConflict), errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update organization")
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *OrgHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("organization_name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "organization_name is required")
		return
	}
	if !authorizedFor(r, name) {
		writeError(w, http.StatusForbidden, "not authorized to delete this organization")
		return
	}

	if err := h.svc.Delete(r.Context(), name); err != nil {
		if errors.Is(err, service.ErrOrgNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete organization")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "organization deleted"})
}

// authorizedFor reports whether the request's token belongs to an admin of
// the target organization.
func authorizedFor(r *http.Request, org string) bool {
	claims := middleware.ClaimsFromContext(r.Context())
	return claims != nil && claims.Organization == org
}
