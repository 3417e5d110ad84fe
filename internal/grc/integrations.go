package grc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/pkg/util"
	"gorm.io/gorm"
)

const (
	msgConnectionOK     = "Connection successful"
	msgConnectionFailed = "Connection failed - please check configuration"
)

type CreateIntegrationInput struct {
	OrganizationID uuid.UUID
	Name           string
	Type           models.IntegrationType
	Endpoint       string
	SyncFrequency  models.SyncFrequency
	// Config is an optional JSON document, stored encrypted.
	Config string
}

// IntegrationView hides the sealed configuration.
type IntegrationView struct {
	models.Integration
	HasConfig bool `json:"has_config"`
}

func newIntegrationView(i models.Integration) IntegrationView {
	return IntegrationView{Integration: i, HasConfig: i.HasConfig()}
}

type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SyncOutcome struct {
	SyncResult
	LastSync time.Time `json:"last_sync"`
}

func (s *Service) CreateIntegration(ctx context.Context, caller Caller, input CreateIntegrationInput) (*models.Integration, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidInput("name is required")
	}
	if !input.Type.Valid() {
		return nil, invalidInput("unknown integration type %q", input.Type)
	}
	if !input.SyncFrequency.Valid() {
		return nil, invalidInput("unknown sync frequency %q", input.SyncFrequency)
	}

	integration := models.Integration{
		OrganizationID: input.OrganizationID,
		Name:           strings.TrimSpace(input.Name),
		Type:           input.Type,
		Status:         models.IntegrationPending,
		Endpoint:       input.Endpoint,
		SyncFrequency:  input.SyncFrequency,
		CreatedBy:      caller.UserID,
	}

	if input.Config != "" {
		if s.sealer == nil {
			return nil, invalidInput("integration config encryption is not configured")
		}
		sealed, err := s.sealer.SealJSON(input.Config)
		if err != nil {
			return nil, invalidInput("config: %v", err)
		}
		integration.EncryptedConfig = sealed
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireMember(tx, caller, input.OrganizationID); err != nil {
			return err
		}
		if err := tx.Create(&integration).Error; err != nil {
			return fmt.Errorf("creating integration: %w", err)
		}
		return s.writeAudit(tx, auditEntry{
			orgID:      integration.OrganizationID,
			entityType: models.AuditEntityIntegration,
			entityID:   integration.ID,
			action:     models.AuditCreated,
			userID:     caller.UserID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("integration created", "integration_id", integration.ID, "org_id", integration.OrganizationID, "type", integration.Type)
	return &integration, nil
}

func (s *Service) ListIntegrations(ctx context.Context, caller Caller, orgID uuid.UUID) ([]IntegrationView, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireMember(db, caller, orgID); err != nil {
		return nil, err
	}

	var integrations []models.Integration
	if err := db.Where("organization_id = ?", orgID).Order("name ASC").Find(&integrations).Error; err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}

	views := make([]IntegrationView, 0, len(integrations))
	for _, i := range integrations {
		views = append(views, newIntegrationView(i))
	}
	return views, nil
}

func (s *Service) GetIntegration(ctx context.Context, caller Caller, id uuid.UUID) (*IntegrationView, error) {
	integration, err := s.loadIntegration(s.db.WithContext(ctx), caller, id)
	if err != nil {
		return nil, err
	}
	view := newIntegrationView(*integration)
	return &view, nil
}

func (s *Service) loadIntegration(tx *gorm.DB, caller Caller, id uuid.UUID) (*models.Integration, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	var integration models.Integration
	if err := loadByID(tx, &integration, id, "integration"); err != nil {
		return nil, err
	}
	if err := s.requireEntityAccess(tx, caller, integration.OrganizationID, "integration"); err != nil {
		return nil, err
	}
	return &integration, nil
}

// TestIntegration probes the connection. Success activates the integration
// and stamps lastSync; failure marks it errored and leaves lastSync alone.
func (s *Service) TestIntegration(ctx context.Context, caller Caller, id uuid.UUID) (*TestResult, error) {
	integration, err := s.loadIntegration(s.db.WithContext(ctx), caller, id)
	if err != nil {
		return nil, err
	}

	config, err := s.openConfig(integration)
	if err != nil {
		return nil, err
	}

	ok, err := s.connector.TestConnection(ctx, integration, config)
	if err != nil {
		integrationTests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("testing connection: %w", err)
	}

	result := &TestResult{Success: ok, Message: msgConnectionFailed}
	status := models.IntegrationError
	if ok {
		result.Message = msgConnectionOK
		status = models.IntegrationActive
	}

	if err := s.changeIntegrationStatus(ctx, caller, integration, status, false); err != nil {
		return nil, err
	}

	if ok {
		integrationTests.WithLabelValues("success").Inc()
	} else {
		integrationTests.WithLabelValues("failure").Inc()
	}
	s.logger.Info("integration tested", "integration_id", integration.ID, "success", ok)
	return result, nil
}

// SyncIntegration pulls data through the connector. Only active
// integrations sync; anything else is rejected without changes.
func (s *Service) SyncIntegration(ctx context.Context, caller Caller, id uuid.UUID) (*SyncOutcome, error) {
	integration, err := s.loadIntegration(s.db.WithContext(ctx), caller, id)
	if err != nil {
		return nil, err
	}
	if integration.Status != models.IntegrationActive {
		integrationSyncs.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: integration not active", ErrInvalidState)
	}

	config, err := s.openConfig(integration)
	if err != nil {
		return nil, err
	}

	result, err := s.connector.Sync(ctx, integration, config)
	if err != nil {
		integrationSyncs.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("syncing integration: %w", err)
	}

	now := s.now()
	if err := s.db.WithContext(ctx).
		Model(&models.Integration{}).
		Where("id = ?", integration.ID).
		Update("last_sync", now).Error; err != nil {
		return nil, fmt.Errorf("stamping last sync: %w", err)
	}

	integrationSyncs.WithLabelValues("success").Inc()
	syncRecords.Observe(float64(result.RecordsProcessed))
	s.logger.Info("integration synced",
		"integration_id", integration.ID,
		"processed", result.RecordsProcessed,
		"errors", result.Errors,
	)
	return &SyncOutcome{SyncResult: result, LastSync: now}, nil
}

// SetIntegrationStatus sets the status explicitly. Activating stamps lastSync;
// any other status clears it.
func (s *Service) SetIntegrationStatus(ctx context.Context, caller Caller, id uuid.UUID, status models.IntegrationStatus) (*models.Integration, error) {
	if !status.Valid() {
		return nil, invalidInput("unknown integration status %q", status)
	}

	integration, err := s.loadIntegration(s.db.WithContext(ctx), caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.changeIntegrationStatus(ctx, caller, integration, status, true); err != nil {
		return nil, err
	}
	return integration, nil
}

// openConfig decrypts the integration's stored configuration.
func (s *Service) openConfig(integration *models.Integration) (map[string]any, error) {
	if len(integration.EncryptedConfig) == 0 {
		return nil, nil
	}
	if s.sealer == nil {
		return nil, fmt.Errorf("%w: integration config is sealed and no encryption key is configured", ErrInvalidState)
	}
	var config map[string]any
	if err := s.sealer.OpenJSON(integration.EncryptedConfig, &config); err != nil {
		s.logger.Warn("opening integration config", "integration_id", integration.ID, "error", err)
		return nil, fmt.Errorf("%w: integration config cannot be decrypted", ErrInvalidState)
	}
	return config, nil
}

// changeIntegrationStatus persists status, stamping lastSync when it becomes
// active and clearing it otherwise when clearSync is set. The transition is
// audited when the status actually changed.
func (s *Service) changeIntegrationStatus(ctx context.Context, caller Caller, integration *models.Integration, status models.IntegrationStatus, clearSync bool) error {
	previous := integration.Status
	updates := map[string]any{"status": status}
	switch {
	case status == models.IntegrationActive:
		now := s.now()
		updates["last_sync"] = now
		integration.LastSync = &now
	case clearSync:
		updates["last_sync"] = nil
		integration.LastSync = nil
	}
	integration.Status = status

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Integration{}).Where("id = ?", integration.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("updating integration status: %w", err)
		}
		if previous == status {
			return nil
		}
		return s.writeAudit(tx, auditEntry{
			orgID:      integration.OrganizationID,
			entityType: models.AuditEntityIntegration,
			entityID:   integration.ID,
			action:     models.AuditStatusChanged,
			userID:     caller.UserID,
			changes:    map[string]any{"from": previous, "to": status},
		})
	})
}

// CronForFrequency maps a sync frequency to the cron expression the
// scheduler evaluates.
func CronForFrequency(f models.SyncFrequency) (string, bool) {
	switch f {
	case models.SyncRealTime:
		return "* * * * *", true
	case models.SyncHourly:
		return "0 * * * *", true
	case models.SyncDaily:
		return "0 2 * * *", true
	case models.SyncWeekly:
		return "0 3 * * 0", true
	}
	return "", false
}

// DueIntegrations returns active integrations whose next scheduled sync
// after lastSync is at or before now. It runs without a caller and is meant
// for the background scheduler only.
func (s *Service) DueIntegrations(ctx context.Context, now time.Time) ([]models.Integration, error) {
	var active []models.Integration
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.IntegrationActive).
		Find(&active).Error; err != nil {
		return nil, fmt.Errorf("loading active integrations: %w", err)
	}

	var due []models.Integration
	for _, i := range active {
		expr, ok := CronForFrequency(i.SyncFrequency)
		if !ok {
			s.logger.Warn("integration has unknown sync frequency", "integration_id", i.ID, "frequency", i.SyncFrequency)
			continue
		}
		var last time.Time
		if i.LastSync != nil {
			last = *i.LastSync
		}
		isDue, err := util.CronDue(expr, last, now)
		if err != nil {
			return nil, err
		}
		if isDue {
			due = append(due, i)
		}
	}
	return due, nil
}
