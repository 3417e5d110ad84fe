package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/go-grc/internal/api/dto"
	"github.com/hugh/go-grc/internal/api/middleware"
	"github.com/hugh/go-grc/internal/grc"
)

type ComplianceHandler struct {
	svc    *grc.Service
	logger *slog.Logger
}

func NewComplianceHandler(svc *grc.Service, logger *slog.Logger) *ComplianceHandler {
	return &ComplianceHandler{svc: svc, logger: logger}
}

// CreateFramework handles POST /api/v1/organizations/{orgID}/frameworks
func (h *ComplianceHandler) CreateFramework(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	var req dto.CreateFrameworkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	fw, err := h.svc.CreateFramework(r.Context(), middleware.GetCaller(r.Context()), grc.CreateFrameworkInput{
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
		Version:        req.Version,
		Status:         req.Status,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreatedResponse{ID: fw.ID.String()})
}

// ListFrameworks handles GET /api/v1/organizations/{orgID}/frameworks
func (h *ComplianceHandler) ListFrameworks(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	frameworks, err := h.svc.ListFrameworks(r.Context(), middleware.GetCaller(r.Context()), orgID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(frameworks))
}

// CreateRequirement handles POST /api/v1/frameworks/{frameworkID}/requirements
func (h *ComplianceHandler) CreateRequirement(w http.ResponseWriter, r *http.Request) {
	frameworkID, ok := urlUUID(w, r, "frameworkID", "framework")
	if !ok {
		return
	}
	var req dto.CreateRequirementRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	requirement, err := h.svc.CreateRequirement(r.Context(), middleware.GetCaller(r.Context()), grc.CreateRequirementInput{
		FrameworkID:   frameworkID,
		RequirementID: req.RequirementID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Priority:      req.Priority,
		OwnerID:       optionalUUID(req.OwnerID),
		DueDate:       req.DueDate,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreatedResponse{ID: requirement.ID.String()})
}

// ListRequirements handles GET /api/v1/frameworks/{frameworkID}/requirements
func (h *ComplianceHandler) ListRequirements(w http.ResponseWriter, r *http.Request) {
	frameworkID, ok := urlUUID(w, r, "frameworkID", "framework")
	if !ok {
		return
	}
	requirements, err := h.svc.ListRequirements(r.Context(), middleware.GetCaller(r.Context()), frameworkID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(requirements))
}

// UpdateRequirementStatus handles PATCH /api/v1/requirements/{requirementID}/status
func (h *ComplianceHandler) UpdateRequirementStatus(w http.ResponseWriter, r *http.Request) {
	requirementID, ok := urlUUID(w, r, "requirementID", "requirement")
	if !ok {
		return
	}
	var req dto.UpdateRequirementStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	requirement, err := h.svc.UpdateRequirementStatus(r.Context(), middleware.GetCaller(r.Context()), requirementID, grc.UpdateRequirementStatusInput{
		Status:   req.Status,
		Evidence: req.Evidence,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CreatedResponse{ID: requirement.ID.String()})
}
