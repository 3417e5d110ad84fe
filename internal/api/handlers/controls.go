package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/go-grc/internal/api/dto"
	"github.com/hugh/go-grc/internal/api/middleware"
	"github.com/hugh/go-grc/internal/grc"
)

type ControlHandler struct {
	svc    *grc.Service
	logger *slog.Logger
}

func NewControlHandler(svc *grc.Service, logger *slog.Logger) *ControlHandler {
	return &ControlHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/organizations/{orgID}/controls
func (h *ControlHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	var req dto.CreateControlRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	control, err := h.svc.CreateControl(r.Context(), middleware.GetCaller(r.Context()), grc.CreateControlInput{
		OrganizationID: orgID,
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
		Frequency:      req.Frequency,
		OwnerID:        optionalUUID(req.OwnerID),
		NextTestDue:    req.NextTestDue,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreatedResponse{ID: control.ID.String()})
}

// List handles GET /api/v1/organizations/{orgID}/controls
func (h *ControlHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	controls, err := h.svc.ListControls(r.Context(), middleware.GetCaller(r.Context()), orgID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(controls))
}

// RecordTest handles POST /api/v1/controls/{controlID}/test
func (h *ControlHandler) RecordTest(w http.ResponseWriter, r *http.Request) {
	controlID, ok := urlUUID(w, r, "controlID", "control")
	if !ok {
		return
	}
	var req dto.RecordControlTestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	control, err := h.svc.RecordControlTest(r.Context(), middleware.GetCaller(r.Context()), controlID, grc.RecordControlTestInput{
		Effectiveness: req.Effectiveness,
		NextTestDue:   req.NextTestDue,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CreatedResponse{ID: control.ID.String()})
}
