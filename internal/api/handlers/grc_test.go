package handlers_test

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/api/dto"
	"github.com/hugh/go-grc/internal/api/handlers"
	"github.com/hugh/go-grc/internal/api/middleware"
	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/internal/grc"
	"github.com/hugh/go-grc/internal/testutil"
	"github.com/hugh/go-grc/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listBody[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func setupGRCTestRouter(t *testing.T, opts ...grc.Option) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)
	logger := util.NewDiscardLogger()

	opts = append([]grc.Option{grc.WithConnector(grc.NewSimulatedConnector(1, rand.NewSource(1)))}, opts...)
	svc := grc.NewService(tc.DB, logger, opts...)

	orgs := handlers.NewOrganizationHandler(svc, logger)
	risks := handlers.NewRiskHandler(svc, logger)
	controls := handlers.NewControlHandler(svc, logger)
	compliance := handlers.NewComplianceHandler(svc, logger)
	integrations := handlers.NewIntegrationHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService, nil))

		r.Post("/organizations", orgs.Create)
		r.Get("/organizations", orgs.List)
		r.Route("/organizations/{orgID}", func(r chi.Router) {
			r.Get("/", orgs.Get)
			r.Get("/members", orgs.ListMembers)
			r.Post("/members", orgs.AddMember)
			r.Get("/dashboard", orgs.Dashboard)
			r.Get("/audit-logs", orgs.AuditLogs)
			r.Get("/risks", risks.List)
			r.Post("/risks", risks.Create)
			r.Get("/risks/matrix", risks.Matrix)
			r.Get("/controls", controls.List)
			r.Post("/controls", controls.Create)
			r.Get("/frameworks", compliance.ListFrameworks)
			r.Post("/frameworks", compliance.CreateFramework)
			r.Get("/integrations", integrations.List)
			r.Post("/integrations", integrations.Create)
		})
		r.Get("/risks/{riskID}", risks.Get)
		r.Patch("/risks/{riskID}", risks.Update)
		r.Get("/risks/{riskID}/controls", risks.ListControls)
		r.Post("/risks/{riskID}/controls", risks.LinkControl)
		r.Post("/controls/{controlID}/test", controls.RecordTest)
		r.Get("/frameworks/{frameworkID}/requirements", compliance.ListRequirements)
		r.Post("/frameworks/{frameworkID}/requirements", compliance.CreateRequirement)
		r.Patch("/requirements/{requirementID}/status", compliance.UpdateRequirementStatus)
		r.Get("/integrations/{integrationID}", integrations.Get)
		r.Post("/integrations/{integrationID}/test", integrations.Test)
		r.Post("/integrations/{integrationID}/sync", integrations.Sync)
		r.Put("/integrations/{integrationID}/status", integrations.SetStatus)
	})

	return r, tc
}

// outsider returns a token for a user with no membership in tc.Org.
func outsider(t *testing.T, tc *testutil.TestSetup) string {
	t.Helper()
	user := &models.User{Email: "outsider-" + uuid.NewString()[:8] + "@example.com", Name: "Outsider", IsActive: true}
	require.NoError(t, tc.DB.Create(user).Error)
	return testutil.GenerateTestToken(t, tc.JWTService, user)
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func orgPath(tc *testutil.TestSetup, suffix string) string {
	return "/api/v1/organizations/" + tc.Org.ID.String() + suffix
}

func TestOrganizationHandler(t *testing.T) {
	router, tc := setupGRCTestRouter(t)
	defer tc.Cleanup()

	t.Run("create makes caller admin", func(t *testing.T) {
		body := map[string]string{"name": "Second Org", "industry": "Finance"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/organizations", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		var created dto.CreatedResponse
		testutil.ParseJSONResponse(t, rr, &created)

		rr = serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/organizations", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list listBody[grc.OrganizationWithRole]
		testutil.ParseJSONResponse(t, rr, &list)
		assert.Equal(t, 2, list.Total)
		for _, o := range list.Data {
			assert.Equal(t, models.RoleAdmin, o.Role)
		}
	})

	t.Run("create requires name", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/organizations", map[string]string{}, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "name")
	})

	t.Run("get as member", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, ""), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var org grc.OrganizationWithRole
		testutil.ParseJSONResponse(t, rr, &org)
		assert.Equal(t, tc.Org.ID, org.ID)
		assert.Equal(t, models.RoleAdmin, org.Role)
	})

	t.Run("get as non-member is forbidden", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, ""), nil, outsider(t, tc)))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("invalid org id", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/organizations/not-a-uuid", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("add and list members", func(t *testing.T) {
		member := &models.User{Email: "member@example.com", Name: "Member", IsActive: true}
		require.NoError(t, tc.DB.Create(member).Error)

		body := map[string]string{"email": "member@example.com", "role": "viewer"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/members"), body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		rr = serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/members"), body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusConflict)

		rr = serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/members"), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list listBody[grc.Member]
		testutil.ParseJSONResponse(t, rr, &list)
		assert.Equal(t, 2, list.Total)
	})

	t.Run("viewer cannot add members", func(t *testing.T) {
		viewer := &models.User{Email: "viewer@example.com", Name: "Viewer", IsActive: true}
		require.NoError(t, tc.DB.Create(viewer).Error)
		testutil.AddTestMember(t, tc.DB, tc.Org.ID, viewer.ID, models.RoleViewer)
		token := testutil.GenerateTestToken(t, tc.JWTService, viewer)

		body := map[string]string{"email": tc.User.Email, "role": "viewer"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/members"), body, token))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}

func TestRiskHandler(t *testing.T) {
	router, tc := setupGRCTestRouter(t)
	defer tc.Cleanup()

	var riskID string

	t.Run("create computes score", func(t *testing.T) {
		body := map[string]string{
			"title":       "Vendor outage",
			"description": "Primary payment processor unavailable",
			"category":    "operational",
			"likelihood":  "medium",
			"impact":      "high",
		}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/risks"), body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		var created dto.CreatedResponse
		testutil.ParseJSONResponse(t, rr, &created)
		riskID = created.ID

		var risk models.Risk
		require.NoError(t, tc.DB.First(&risk, "id = ?", riskID).Error)
		assert.Equal(t, 12, risk.RiskScore)
		assert.Equal(t, tc.User.ID, risk.OwnerID)
	})

	t.Run("create rejects unknown level", func(t *testing.T) {
		body := map[string]string{
			"title":      "Bad level",
			"category":   "operational",
			"likelihood": "extreme",
			"impact":     "high",
		}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/risks"), body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Details, "likelihood")
	})

	t.Run("create without token", func(t *testing.T) {
		rr := serve(router, testutil.UnauthenticatedRequest(t, "POST", orgPath(tc, "/risks"), map[string]string{}))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("create in foreign org is forbidden", func(t *testing.T) {
		body := map[string]string{"title": "x", "category": "operational", "likelihood": "low", "impact": "low"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/risks"), body, outsider(t, tc)))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("list includes owner name", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/risks"), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list listBody[grc.RiskView]
		testutil.ParseJSONResponse(t, rr, &list)
		require.Equal(t, 1, list.Total)
		assert.Equal(t, "Test User", list.Data[0].OwnerName)
		assert.Equal(t, grc.BandMedium, list.Data[0].Band)
	})

	t.Run("list rejects unknown status filter", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/risks?status=bogus"), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("update likelihood keeps impact", func(t *testing.T) {
		body := map[string]string{"likelihood": "very_high"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "PATCH", "/api/v1/risks/"+riskID, body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/risks/"+riskID, nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var view grc.RiskView
		testutil.ParseJSONResponse(t, rr, &view)
		assert.Equal(t, models.LevelHigh, view.Impact)
		assert.Equal(t, 20, view.RiskScore)
		assert.Equal(t, grc.BandHigh, view.Band)
	})

	t.Run("get from another org is not found", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/risks/"+riskID, nil, outsider(t, tc)))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("get unknown risk", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/risks/"+uuid.NewString(), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("matrix totals risks", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/risks/matrix"), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp handlers.RiskMatrixResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, 1, resp.Total)
		assert.Len(t, resp.Likelihoods, 5)
		assert.Equal(t, 1, resp.Cells[models.LevelVeryHigh][models.LevelHigh])
	})

	t.Run("link control and list", func(t *testing.T) {
		control := testutil.CreateTestControl(t, tc.DB, tc.Org.ID, tc.User.ID, models.EffectivenessEffective)

		body := map[string]string{"control_id": control.ID.String(), "mitigation_level": "high"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/risks/"+riskID+"/controls", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		rr = serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/risks/"+riskID+"/controls", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusConflict)

		rr = serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/risks/"+riskID+"/controls", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list listBody[models.RiskControl]
		testutil.ParseJSONResponse(t, rr, &list)
		require.Equal(t, 1, list.Total)
		require.NotNil(t, list.Data[0].Control)
		assert.Equal(t, control.ID, list.Data[0].Control.ID)
	})
}

func TestRiskHandler_CleansDescription(t *testing.T) {
	router, tc := setupGRCTestRouter(t)
	defer tc.Cleanup()

	body := map[string]string{
		"title":       "Log injection",
		"description": "line one\nline two\x00\x1b[31m",
		"category":    "technology",
		"likelihood":  "low",
		"impact":      "low",
	}
	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/risks"), body, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var created dto.CreatedResponse
	testutil.ParseJSONResponse(t, rr, &created)

	var risk models.Risk
	require.NoError(t, tc.DB.First(&risk, "id = ?", created.ID).Error)
	assert.Equal(t, "line one\nline two[31m", risk.Description)

	long := strings.Repeat("é", dto.MaxFreeText+10)
	rr = serve(router, testutil.AuthenticatedRequest(t, "PATCH", "/api/v1/risks/"+created.ID,
		map[string]string{"description": long}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	require.NoError(t, tc.DB.First(&risk, "id = ?", created.ID).Error)
	assert.Equal(t, dto.MaxFreeText, utf8.RuneCountInString(risk.Description))
	assert.True(t, utf8.ValidString(risk.Description))
}

func TestControlHandler(t *testing.T) {
	router, tc := setupGRCTestRouter(t)
	defer tc.Cleanup()

	body := map[string]string{
		"title":     "Quarterly access review",
		"type":      "detective",
		"frequency": "quarterly",
	}
	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/controls"), body, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var created dto.CreatedResponse
	testutil.ParseJSONResponse(t, rr, &created)

	t.Run("list", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/controls"), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list listBody[models.Control]
		testutil.ParseJSONResponse(t, rr, &list)
		require.Equal(t, 1, list.Total)
		assert.Equal(t, models.EffectivenessNotTested, list.Data[0].Effectiveness)
	})

	t.Run("record test", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/controls/"+created.ID+"/test",
			map[string]string{"effectiveness": "effective"}, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var control models.Control
		require.NoError(t, tc.DB.First(&control, "id = ?", created.ID).Error)
		assert.Equal(t, models.EffectivenessEffective, control.Effectiveness)
		assert.NotNil(t, control.LastTested)
	})

	t.Run("record test rejects unknown rating", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/controls/"+created.ID+"/test",
			map[string]string{"effectiveness": "great"}, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("list as non-member", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/controls"), nil, outsider(t, tc)))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}

func TestComplianceHandler(t *testing.T) {
	router, tc := setupGRCTestRouter(t)
	defer tc.Cleanup()

	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/frameworks"),
		map[string]string{"name": "ISO 27001", "version": "2022", "status": "active"}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var fw dto.CreatedResponse
	testutil.ParseJSONResponse(t, rr, &fw)

	var reqID string

	t.Run("create requirement", func(t *testing.T) {
		body := map[string]string{
			"requirement_id": "A.5.1",
			"title":          "Information security policies",
			"priority":       "high",
		}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/frameworks/"+fw.ID+"/requirements", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		var created dto.CreatedResponse
		testutil.ParseJSONResponse(t, rr, &created)
		reqID = created.ID
	})

	t.Run("requirement under foreign framework is not found", func(t *testing.T) {
		body := map[string]string{"requirement_id": "A.5.2", "title": "x", "priority": "low"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/frameworks/"+fw.ID+"/requirements", body, outsider(t, tc)))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("update status feeds dashboard", func(t *testing.T) {
		body := map[string]string{"status": "compliant", "evidence": "Policy v3 approved\x07"}
		rr := serve(router, testutil.AuthenticatedRequest(t, "PATCH", "/api/v1/requirements/"+reqID+"/status", body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/dashboard"), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var stats grc.DashboardStats
		testutil.ParseJSONResponse(t, rr, &stats)
		assert.Equal(t, 1, stats.Compliance.Total)
		assert.Equal(t, 1, stats.Compliance.Compliant)
	})

	t.Run("list requirements", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/frameworks/"+fw.ID+"/requirements", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list listBody[models.ComplianceRequirement]
		testutil.ParseJSONResponse(t, rr, &list)
		require.Equal(t, 1, list.Total)
		assert.Equal(t, "Policy v3 approved", list.Data[0].Evidence)
	})

	t.Run("list frameworks", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/frameworks"), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list listBody[models.ComplianceFramework]
		testutil.ParseJSONResponse(t, rr, &list)
		assert.Equal(t, 1, list.Total)
	})
}

func TestIntegrationHandler(t *testing.T) {
	router, tc := setupGRCTestRouter(t)
	defer tc.Cleanup()

	body := map[string]string{
		"name":           "Splunk",
		"type":           "siem",
		"endpoint":       "https://splunk.example.com",
		"sync_frequency": "daily",
	}
	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/integrations"), body, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var created dto.CreatedResponse
	testutil.ParseJSONResponse(t, rr, &created)
	base := "/api/v1/integrations/" + created.ID

	t.Run("config without sealer is rejected", func(t *testing.T) {
		body := map[string]interface{}{
			"name":           "Jira",
			"type":           "api",
			"sync_frequency": "hourly",
			"config":         map[string]string{"token": "secret"},
		}
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/integrations"), body, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("sync while pending conflicts", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", base+"/sync", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	t.Run("test activates", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", base+"/test", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var result grc.TestResult
		testutil.ParseJSONResponse(t, rr, &result)
		assert.True(t, result.Success)

		rr = serve(router, testutil.AuthenticatedRequest(t, "GET", base, nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var view grc.IntegrationView
		testutil.ParseJSONResponse(t, rr, &view)
		assert.Equal(t, models.IntegrationActive, view.Status)
		assert.NotNil(t, view.LastSync)
		assert.False(t, view.HasConfig)
	})

	t.Run("sync returns counters", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", base+"/sync", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var outcome grc.SyncOutcome
		testutil.ParseJSONResponse(t, rr, &outcome)
		assert.GreaterOrEqual(t, outcome.RecordsProcessed, 100)
		assert.False(t, outcome.LastSync.IsZero())
	})

	t.Run("set status", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "PUT", base+"/status", map[string]string{"status": "inactive"}, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = serve(router, testutil.AuthenticatedRequest(t, "PUT", base+"/status", map[string]string{"status": "broken"}, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown integration", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/integrations/"+uuid.NewString()+"/test", nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("list", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/integrations"), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list listBody[grc.IntegrationView]
		testutil.ParseJSONResponse(t, rr, &list)
		assert.Equal(t, 1, list.Total)
	})
}

func TestOrganizationHandler_AuditLogs(t *testing.T) {
	router, tc := setupGRCTestRouter(t)
	defer tc.Cleanup()

	body := map[string]string{"title": "Phishing", "category": "technology", "likelihood": "high", "impact": "medium"}
	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", orgPath(tc, "/risks"), body, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var created dto.CreatedResponse
	testutil.ParseJSONResponse(t, rr, &created)

	rr = serve(router, testutil.AuthenticatedRequest(t, "PATCH", "/api/v1/risks/"+created.ID, map[string]string{"status": "mitigated"}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	t.Run("filters by entity", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/audit-logs?entity_type=risk&entity_id="+created.ID), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list listBody[models.AuditLog]
		testutil.ParseJSONResponse(t, rr, &list)
		require.Equal(t, 2, list.Total)
		assert.Equal(t, models.AuditUpdated, list.Data[0].Action)
		assert.Equal(t, models.AuditCreated, list.Data[1].Action)
	})

	t.Run("limit", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/audit-logs?limit=1"), nil, tc.Token))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var list listBody[models.AuditLog]
		testutil.ParseJSONResponse(t, rr, &list)
		assert.Equal(t, 1, list.Total)
	})

	t.Run("bad filters", func(t *testing.T) {
		for _, q := range []string{"?entity_type=asset", "?entity_id=nope", "?limit=0"} {
			rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/audit-logs"+q), nil, tc.Token))
			testutil.AssertStatus(t, rr, http.StatusBadRequest)
		}
	})

	t.Run("non-member", func(t *testing.T) {
		rr := serve(router, testutil.AuthenticatedRequest(t, "GET", orgPath(tc, "/audit-logs"), nil, outsider(t, tc)))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})
}
