package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/auth"
	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/internal/grc"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing. The pool is
// pinned to one connection so every query sees the same in-memory schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// CreateTestUser creates an active user with password "testpassword123"
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Name:         "Test User",
		IsActive:     true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestOrg creates an organization with the given user as admin
func CreateTestOrg(t *testing.T, db *gorm.DB, admin *models.User) *models.Organization {
	t.Helper()

	org := &models.Organization{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:      "Test Organization " + uuid.New().String()[:8],
		Industry:  "finance",
		CreatedBy: admin.ID,
	}

	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}

	AddTestMember(t, db, org.ID, admin.ID, models.RoleAdmin)

	return org
}

// AddTestMember adds a membership row
func AddTestMember(t *testing.T, db *gorm.DB, orgID, userID uuid.UUID, role models.MemberRole) {
	t.Helper()

	m := &models.OrgMembership{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		JoinedAt:       time.Now().UTC(),
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test membership: %v", err)
	}
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// CreateTestRisk creates a risk with its score derived from the pair
func CreateTestRisk(t *testing.T, db *gorm.DB, orgID, ownerID uuid.UUID, likelihood, impact models.Level) *models.Risk {
	t.Helper()

	risk := &models.Risk{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganizationID: orgID,
		Title:          "Test Risk",
		Description:    "Test risk description",
		Category:       models.CategoryOperational,
		Likelihood:     likelihood,
		Impact:         impact,
		RiskScore:      grc.RiskScore(likelihood, impact),
		Status:         models.RiskStatusIdentified,
		OwnerID:        ownerID,
		CreatedBy:      ownerID,
		LastUpdated:    time.Now().UTC(),
	}

	if err := db.Create(risk).Error; err != nil {
		t.Fatalf("failed to create test risk: %v", err)
	}

	return risk
}

// CreateTestControl creates an untested control
func CreateTestControl(t *testing.T, db *gorm.DB, orgID, ownerID uuid.UUID, effectiveness models.Effectiveness) *models.Control {
	t.Helper()

	control := &models.Control{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganizationID: orgID,
		Title:          "Test Control",
		Description:    "Test control description",
		Type:           models.ControlPreventive,
		Frequency:      models.FrequencyMonthly,
		Effectiveness:  effectiveness,
		OwnerID:        ownerID,
		CreatedBy:      ownerID,
	}

	if err := db.Create(control).Error; err != nil {
		t.Fatalf("failed to create test control: %v", err)
	}

	return control
}

// CreateTestFramework creates an active compliance framework
func CreateTestFramework(t *testing.T, db *gorm.DB, orgID, creatorID uuid.UUID) *models.ComplianceFramework {
	t.Helper()

	fw := &models.ComplianceFramework{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganizationID: orgID,
		Name:           "SOX",
		Description:    "Sarbanes-Oxley",
		Version:        "2002",
		Status:         models.FrameworkActive,
		CreatedBy:      creatorID,
	}

	if err := db.Create(fw).Error; err != nil {
		t.Fatalf("failed to create test framework: %v", err)
	}

	return fw
}

// CreateTestRequirement creates a requirement in the given status
func CreateTestRequirement(t *testing.T, db *gorm.DB, frameworkID, ownerID uuid.UUID, status models.RequirementStatus) *models.ComplianceRequirement {
	t.Helper()

	req := &models.ComplianceRequirement{
		Base: models.Base{
			ID: uuid.New(),
		},
		FrameworkID:   frameworkID,
		RequirementID: "SOX-" + uuid.New().String()[:4],
		Title:         "Test Requirement",
		Priority:      models.PriorityHigh,
		Status:        status,
		OwnerID:       ownerID,
	}

	if err := db.Create(req).Error; err != nil {
		t.Fatalf("failed to create test requirement: %v", err)
	}

	return req
}

// CreateTestIntegration creates an integration in the given status
func CreateTestIntegration(t *testing.T, db *gorm.DB, orgID, creatorID uuid.UUID, status models.IntegrationStatus) *models.Integration {
	t.Helper()

	integration := &models.Integration{
		Base: models.Base{
			ID: uuid.New(),
		},
		OrganizationID: orgID,
		Name:           "Test SIEM",
		Type:           models.IntegrationSIEM,
		Status:         status,
		Endpoint:       "https://siem.example.com/api",
		SyncFrequency:  models.SyncHourly,
		CreatedBy:      creatorID,
	}

	if err := db.Create(integration).Error; err != nil {
		t.Fatalf("failed to create test integration: %v", err)
	}

	return integration
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Org        *models.Organization
	User       *models.User
	Token      string
}

// Caller returns the grc caller for the setup's user
func (ts *TestSetup) Caller() grc.Caller {
	return grc.Caller{UserID: ts.User.ID}
}

// NewTestContext creates a complete test setup with DB, admin user, org and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	user := CreateTestUser(t, db)
	org := CreateTestOrg(t, db, user)
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Org:        org,
		User:       user,
		Token:      token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
