package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/api/dto"
	"github.com/hugh/go-grc/internal/api/middleware"
	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/internal/grc"
)

type OrganizationHandler struct {
	svc    *grc.Service
	logger *slog.Logger
}

func NewOrganizationHandler(svc *grc.Service, logger *slog.Logger) *OrganizationHandler {
	return &OrganizationHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/organizations
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrganizationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	org, err := h.svc.CreateOrganization(r.Context(), middleware.GetCaller(r.Context()), grc.CreateOrganizationInput{
		Name:        req.Name,
		Description: req.Description,
		Industry:    req.Industry,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreatedResponse{ID: org.ID.String()})
}

// List handles GET /api/v1/organizations
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.svc.ListOrganizations(r.Context(), middleware.GetCaller(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(orgs))
}

// Get handles GET /api/v1/organizations/{orgID}
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	org, err := h.svc.GetOrganization(r.Context(), middleware.GetCaller(r.Context()), orgID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// ListMembers handles GET /api/v1/organizations/{orgID}/members
func (h *OrganizationHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	members, err := h.svc.ListMembers(r.Context(), middleware.GetCaller(r.Context()), orgID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(members))
}

// AddMember handles POST /api/v1/organizations/{orgID}/members
func (h *OrganizationHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	var req dto.AddMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	m, err := h.svc.AddMember(r.Context(), middleware.GetCaller(r.Context()), orgID, grc.AddMemberInput{
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Dashboard handles GET /api/v1/organizations/{orgID}/dashboard
func (h *OrganizationHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	stats, err := h.svc.GetDashboardStats(r.Context(), middleware.GetCaller(r.Context()), orgID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AuditLogs handles GET /api/v1/organizations/{orgID}/audit-logs
func (h *OrganizationHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := grc.AuditFilter{EntityType: models.AuditEntityType(q.Get("entity_type"))}
	if filter.EntityType != "" && !filter.EntityType.Valid() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid entity_type"})
		return
	}
	if v := q.Get("entity_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid entity ID"})
			return
		}
		filter.EntityID = &id
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
			return
		}
		filter.Limit = n
	}

	logs, err := h.svc.ListAuditLogs(r.Context(), middleware.GetCaller(r.Context()), orgID, filter)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(logs))
}
