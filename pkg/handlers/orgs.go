package handlers

import (
	"net/http"
	"strings"

	chiRoute "github.com/go-chi/chi/v5"

	"optysys-backend/pkg/config"
	"optysys-backend/pkg/database"
	"optysys-backend/pkg/middleware"
	"optysys-backend/pkg/models"
	"optysys-backend/pkg/utils"
)

// OrgsHandler serves the organization and opportunity endpoints
type OrgsHandler struct {
	config *config.Config
	orgs   database.OrganizationStore
}

// NewOrgsHandler creates the organization handler
func NewOrgsHandler(cfg *config.Config, orgs database.OrganizationStore) *OrgsHandler {
	return &OrgsHandler{config: cfg, orgs: orgs}
}

// POST /organizations
func (h *OrgsHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, err.Error())
		return
	}

	var req models.OrganizationCreateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.WriteBadRequestResponse(w, "Name required")
		return
	}

	org, err := h.orgs.CreateOrganization(r.Context(), userID, &req)
	if err != nil {
		utils.WriteAppErrorResponse(w, err)
		return
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{"organization": org})
}

// GET /organizations
func (h *OrgsHandler) ListMyOrganizations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, err.Error())
		return
	}

	orgs, err := h.orgs.ListUserOrganizations(r.Context(), userID)
	if err != nil {
		utils.WriteAppErrorResponse(w, err)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"organizations": orgs})
}

// DELETE /organizations/{id}
func (h *OrgsHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, err.Error())
		return
	}

	orgID := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(orgID) == "" {
		utils.WriteBadRequestResponse(w, "organization id required")
		return
	}

	if err := h.orgs.DeleteOrganization(r.Context(), orgID, userID); err != nil {
		utils.WriteAppErrorResponse(w, err)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"detail": "Organization deleted successfully.",
	})
}

// POST /organizations/{id}/members
func (h *OrgsHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, err.Error())
		return
	}

	orgID := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(orgID) == "" {
		utils.WriteBadRequestResponse(w, "organization id required")
		return
	}

	if err := h.orgs.AddMember(r.Context(), orgID, userID); err != nil {
		utils.WriteAppErrorResponse(w, err)
		return
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{
		"detail": "User added to the organization.",
	})
}

// GET /organizations/{id}/members
func (h *OrgsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.RequireUser(r.Context()); err != nil {
		utils.WriteUnauthorizedResponse(w, err.Error())
		return
	}

	orgID := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(orgID) == "" {
		utils.WriteBadRequestResponse(w, "organization id required")
		return
	}

	members, err := h.orgs.ListMembers(r.Context(), orgID)
	if err != nil {
		utils.WriteAppErrorResponse(w, err)
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"members": members})
}

// POST /organizations/{id}/opportunities
func (h *OrgsHandler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, err.Error())
		return
	}

	orgID := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(orgID) == "" {
		utils.WriteBadRequestResponse(w, "organization id required")
		return
	}

	var req models.OpportunityCreateRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		utils.WriteBadRequestResponse(w, "Title required")
		return
	}

	opportunity, err := h.orgs.CreateOpportunity(r.Context(), orgID, userID, &req)
	if err != nil {
		utils.WriteAppErrorResponse(w, err)
		return
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{"opportunity": opportunity})
}
