package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/go-grc/internal/api/dto"
	"github.com/hugh/go-grc/internal/api/middleware"
	"github.com/hugh/go-grc/internal/grc"
)

type IntegrationHandler struct {
	svc    *grc.Service
	logger *slog.Logger
}

func NewIntegrationHandler(svc *grc.Service, logger *slog.Logger) *IntegrationHandler {
	return &IntegrationHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/organizations/{orgID}/integrations
func (h *IntegrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	var req dto.CreateIntegrationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	integration, err := h.svc.CreateIntegration(r.Context(), middleware.GetCaller(r.Context()), grc.CreateIntegrationInput{
		OrganizationID: orgID,
		Name:           req.Name,
		Type:           req.Type,
		Endpoint:       req.Endpoint,
		SyncFrequency:  req.SyncFrequency,
		Config:         string(req.Config),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreatedResponse{ID: integration.ID.String()})
}

// List handles GET /api/v1/organizations/{orgID}/integrations
func (h *IntegrationHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	integrations, err := h.svc.ListIntegrations(r.Context(), middleware.GetCaller(r.Context()), orgID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(integrations))
}

// Get handles GET /api/v1/integrations/{integrationID}
func (h *IntegrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "integrationID", "integration")
	if !ok {
		return
	}
	integration, err := h.svc.GetIntegration(r.Context(), middleware.GetCaller(r.Context()), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, integration)
}

// Test handles POST /api/v1/integrations/{integrationID}/test
func (h *IntegrationHandler) Test(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "integrationID", "integration")
	if !ok {
		return
	}
	result, err := h.svc.TestIntegration(r.Context(), middleware.GetCaller(r.Context()), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Sync handles POST /api/v1/integrations/{integrationID}/sync
func (h *IntegrationHandler) Sync(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "integrationID", "integration")
	if !ok {
		return
	}
	outcome, err := h.svc.SyncIntegration(r.Context(), middleware.GetCaller(r.Context()), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// SetStatus handles PUT /api/v1/integrations/{integrationID}/status
func (h *IntegrationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "integrationID", "integration")
	if !ok {
		return
	}
	var req dto.SetIntegrationStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	integration, err := h.svc.SetIntegrationStatus(r.Context(), middleware.GetCaller(r.Context()), id, req.Status)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CreatedResponse{ID: integration.ID.String()})
}
