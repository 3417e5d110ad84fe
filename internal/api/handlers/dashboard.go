package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/api/middleware"
	"github.com/hugh/go-grc/internal/auth"
	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/internal/grc"
)

// Renderer executes a named page template.
type Renderer interface {
	ExecuteTemplate(w io.Writer, name string, data interface{}) error
}

type DashboardHandler struct {
	svc         *grc.Service
	authService *auth.Service
	templates   Renderer
	logger      *slog.Logger
}

func NewDashboardHandler(svc *grc.Service, authService *auth.Service, templates Renderer, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		svc:         svc,
		authService: authService,
		templates:   templates,
		logger:      logger,
	}
}

// dashboardTabs lists the views the dashboard page can render.
var dashboardTabs = map[string]bool{"overview": true, "risks": true, "integrations": true}

type matrixRow struct {
	Likelihood models.Level
	Cells      []matrixCell
}

type matrixCell struct {
	Impact models.Level
	Count  int
	Band   grc.Band
}

// matrixRows lays the matrix out with the highest likelihood first.
func matrixRows(m grc.RiskMatrix) []matrixRow {
	rows := make([]matrixRow, 0, len(models.Levels))
	for i := len(models.Levels) - 1; i >= 0; i-- {
		l := models.Levels[i]
		row := matrixRow{Likelihood: l}
		for _, imp := range models.Levels {
			row.Cells = append(row.Cells, matrixCell{
				Impact: imp,
				Count:  m[l][imp],
				Band:   grc.ScoreBand(grc.RiskScore(l, imp)),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// Index renders the dashboard for the organization named by ?org=, falling
// back to the caller's first organization.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	user, err := h.authService.GetUserByID(ctx, caller.UserID)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	orgs, err := h.svc.ListOrganizations(ctx, caller)
	if err != nil {
		h.renderError(w, user, err)
		return
	}

	tab := r.URL.Query().Get("tab")
	if !dashboardTabs[tab] {
		tab = "overview"
	}

	data := map[string]interface{}{
		"User":          user,
		"Organizations": orgs,
		"Tab":           tab,
	}

	if len(orgs) == 0 {
		h.render(w, "dashboard.html", data)
		return
	}

	orgID := orgs[0].ID
	if v := r.URL.Query().Get("org"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.renderError(w, user, fmt.Errorf("%w: invalid organization ID", grc.ErrInvalidInput))
			return
		}
		orgID = id
	}

	org, err := h.svc.GetOrganization(ctx, caller, orgID)
	if err != nil {
		h.renderError(w, user, err)
		return
	}
	data["Org"] = org

	switch tab {
	case "overview":
		stats, err := h.svc.GetDashboardStats(ctx, caller, orgID)
		if err != nil {
			h.renderError(w, user, err)
			return
		}
		matrix, err := h.svc.GetRiskMatrix(ctx, caller, orgID)
		if err != nil {
			h.renderError(w, user, err)
			return
		}
		data["Stats"] = stats
		data["Matrix"] = matrixRows(matrix)
		data["Impacts"] = models.Levels
	case "risks":
		risks, err := h.svc.ListRisks(ctx, caller, orgID, grc.RiskFilter{})
		if err != nil {
			h.renderError(w, user, err)
			return
		}
		data["Risks"] = risks
	case "integrations":
		integrations, err := h.svc.ListIntegrations(ctx, caller, orgID)
		if err != nil {
			h.renderError(w, user, err)
			return
		}
		data["Integrations"] = integrations
	}

	h.render(w, "dashboard.html", data)
}

func (h *DashboardHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", nil)
}

// renderError shows a service error as an HTML page with the matching status.
func (h *DashboardHandler) renderError(w http.ResponseWriter, user *models.User, err error) {
	status, msg := serviceErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("rendering dashboard", "error", err)
	}
	h.renderStatus(w, status, "error.html", map[string]interface{}{
		"User":       user,
		"Status":     status,
		"StatusText": http.StatusText(status),
		"Message":    msg,
	})
}

func (h *DashboardHandler) render(w http.ResponseWriter, name string, data interface{}) {
	h.renderStatus(w, http.StatusOK, name, data)
}

func (h *DashboardHandler) renderStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	if h.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("rendering template", "template", name, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
