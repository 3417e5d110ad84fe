package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/go-grc/internal/api/dto"
	"github.com/hugh/go-grc/internal/api/middleware"
	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/internal/grc"
)

type RiskHandler struct {
	svc    *grc.Service
	logger *slog.Logger
}

func NewRiskHandler(svc *grc.Service, logger *slog.Logger) *RiskHandler {
	return &RiskHandler{svc: svc, logger: logger}
}

type RiskMatrixResponse struct {
	Likelihoods []models.Level `json:"likelihoods"`
	Impacts     []models.Level `json:"impacts"`
	Cells       grc.RiskMatrix `json:"cells"`
	Total       int            `json:"total"`
}

// Create handles POST /api/v1/organizations/{orgID}/risks
func (h *RiskHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	var req dto.CreateRiskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	risk, err := h.svc.CreateRisk(r.Context(), middleware.GetCaller(r.Context()), grc.CreateRiskInput{
		OrganizationID: orgID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Likelihood:     req.Likelihood,
		Impact:         req.Impact,
		OwnerID:        optionalUUID(req.OwnerID),
		DueDate:        req.DueDate,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreatedResponse{ID: risk.ID.String()})
}

// List handles GET /api/v1/organizations/{orgID}/risks
func (h *RiskHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := grc.RiskFilter{
		Status:   models.RiskStatus(q.Get("status")),
		Category: models.RiskCategory(q.Get("category")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid status"})
		return
	}
	if filter.Category != "" && !filter.Category.Valid() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid category"})
		return
	}

	risks, err := h.svc.ListRisks(r.Context(), middleware.GetCaller(r.Context()), orgID, filter)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(risks))
}

// Matrix handles GET /api/v1/organizations/{orgID}/risks/matrix
func (h *RiskHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	orgID, ok := urlUUID(w, r, "orgID", "organization")
	if !ok {
		return
	}
	matrix, err := h.svc.GetRiskMatrix(r.Context(), middleware.GetCaller(r.Context()), orgID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, RiskMatrixResponse{
		Likelihoods: models.Levels,
		Impacts:     models.Levels,
		Cells:       matrix,
		Total:       matrix.Total(),
	})
}

// Get handles GET /api/v1/risks/{riskID}
func (h *RiskHandler) Get(w http.ResponseWriter, r *http.Request) {
	riskID, ok := urlUUID(w, r, "riskID", "risk")
	if !ok {
		return
	}
	risk, err := h.svc.GetRisk(r.Context(), middleware.GetCaller(r.Context()), riskID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, risk)
}

// Update handles PATCH /api/v1/risks/{riskID}
func (h *RiskHandler) Update(w http.ResponseWriter, r *http.Request) {
	riskID, ok := urlUUID(w, r, "riskID", "risk")
	if !ok {
		return
	}
	var req dto.UpdateRiskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	risk, err := h.svc.UpdateRisk(r.Context(), middleware.GetCaller(r.Context()), riskID, grc.UpdateRiskInput{
		Title:       req.Title,
		Description: req.Description,
		Likelihood:  req.Likelihood,
		Impact:      req.Impact,
		Status:      req.Status,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CreatedResponse{ID: risk.ID.String()})
}

// ListControls handles GET /api/v1/risks/{riskID}/controls
func (h *RiskHandler) ListControls(w http.ResponseWriter, r *http.Request) {
	riskID, ok := urlUUID(w, r, "riskID", "risk")
	if !ok {
		return
	}
	links, err := h.svc.ListRiskControls(r.Context(), middleware.GetCaller(r.Context()), riskID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(links))
}

// LinkControl handles POST /api/v1/risks/{riskID}/controls
func (h *RiskHandler) LinkControl(w http.ResponseWriter, r *http.Request) {
	riskID, ok := urlUUID(w, r, "riskID", "risk")
	if !ok {
		return
	}
	var req dto.LinkControlRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	link, err := h.svc.LinkControlToRisk(r.Context(), middleware.GetCaller(r.Context()), riskID, grc.LinkControlInput{
		ControlID:       optionalUUID(req.ControlID),
		MitigationLevel: req.MitigationLevel,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.CreatedResponse{ID: link.ID.String()})
}
