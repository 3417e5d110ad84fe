package grc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/database/models"
	"gorm.io/gorm"
)

type CreateControlInput struct {
	OrganizationID uuid.UUID
	Title          string
	Description    string
	Type           models.ControlType
	Frequency      models.ControlFrequency
	OwnerID        uuid.UUID
	NextTestDue    *time.Time
}

type RecordControlTestInput struct {
	Effectiveness models.Effectiveness
	NextTestDue   *time.Time
}

type LinkControlInput struct {
	ControlID       uuid.UUID
	MitigationLevel models.MitigationLevel
}

func (s *Service) CreateControl(ctx context.Context, caller Caller, input CreateControlInput) (*models.Control, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, invalidInput("title is required")
	}
	if !input.Type.Valid() {
		return nil, invalidInput("unknown control type %q", input.Type)
	}
	if !input.Frequency.Valid() {
		return nil, invalidInput("unknown frequency %q", input.Frequency)
	}
	if input.OwnerID == uuid.Nil {
		input.OwnerID = caller.UserID
	}

	control := models.Control{
		OrganizationID: input.OrganizationID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Type:           input.Type,
		Frequency:      input.Frequency,
		Effectiveness:  models.EffectivenessNotTested,
		OwnerID:        input.OwnerID,
		NextTestDue:    input.NextTestDue,
		CreatedBy:      caller.UserID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireMember(tx, caller, input.OrganizationID); err != nil {
			return err
		}
		if err := tx.Create(&control).Error; err != nil {
			return fmt.Errorf("creating control: %w", err)
		}
		return s.writeAudit(tx, auditEntry{
			orgID:      control.OrganizationID,
			entityType: models.AuditEntityControl,
			entityID:   control.ID,
			action:     models.AuditCreated,
			userID:     caller.UserID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("control created", "control_id", control.ID, "org_id", control.OrganizationID)
	return &control, nil
}

func (s *Service) ListControls(ctx context.Context, caller Caller, orgID uuid.UUID) ([]models.Control, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireMember(db, caller, orgID); err != nil {
		return nil, err
	}

	var controls []models.Control
	if err := db.Where("organization_id = ?", orgID).Order("created_at DESC").Find(&controls).Error; err != nil {
		return nil, fmt.Errorf("listing controls: %w", err)
	}
	return controls, nil
}

// RecordControlTest stores the outcome of a control test.
func (s *Service) RecordControlTest(ctx context.Context, caller Caller, controlID uuid.UUID, input RecordControlTestInput) (*models.Control, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if !input.Effectiveness.Valid() {
		return nil, invalidInput("unknown effectiveness %q", input.Effectiveness)
	}

	var control models.Control
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadByID(tx, &control, controlID, "control"); err != nil {
			return err
		}
		if err := s.requireEntityAccess(tx, caller, control.OrganizationID, "control"); err != nil {
			return err
		}

		now := s.now()
		changes := map[string]any{
			"effectiveness": input.Effectiveness,
			"last_tested":   now,
		}
		control.Effectiveness = input.Effectiveness
		control.LastTested = &now
		if input.NextTestDue != nil {
			control.NextTestDue = input.NextTestDue
			changes["next_test_due"] = *input.NextTestDue
		}

		if err := tx.Save(&control).Error; err != nil {
			return fmt.Errorf("updating control: %w", err)
		}
		return s.writeAudit(tx, auditEntry{
			orgID:      control.OrganizationID,
			entityType: models.AuditEntityControl,
			entityID:   control.ID,
			action:     models.AuditUpdated,
			userID:     caller.UserID,
			changes:    changes,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("control tested", "control_id", control.ID, "effectiveness", control.Effectiveness)
	return &control, nil
}

// LinkControlToRisk records that a control mitigates a risk. Both must
// belong to the same organization.
func (s *Service) LinkControlToRisk(ctx context.Context, caller Caller, riskID uuid.UUID, input LinkControlInput) (*models.RiskControl, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if !input.MitigationLevel.Valid() {
		return nil, invalidInput("unknown mitigation level %q", input.MitigationLevel)
	}

	var link models.RiskControl
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var risk models.Risk
		if err := loadByID(tx, &risk, riskID, "risk"); err != nil {
			return err
		}
		if err := s.requireEntityAccess(tx, caller, risk.OrganizationID, "risk"); err != nil {
			return err
		}

		var control models.Control
		if err := loadByID(tx, &control, input.ControlID, "control"); err != nil {
			return err
		}
		if control.OrganizationID != risk.OrganizationID {
			return invalidInput("control belongs to a different organization")
		}

		var existing models.RiskControl
		err := tx.Where("risk_id = ? AND control_id = ?", risk.ID, control.ID).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: control is already linked to this risk", ErrInvalidState)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		link = models.RiskControl{
			RiskID:          risk.ID,
			ControlID:       control.ID,
			MitigationLevel: input.MitigationLevel,
		}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("linking control: %w", err)
		}
		return s.writeAudit(tx, auditEntry{
			orgID:      risk.OrganizationID,
			entityType: models.AuditEntityRisk,
			entityID:   risk.ID,
			action:     models.AuditUpdated,
			userID:     caller.UserID,
			changes: map[string]any{
				"control_linked":   control.ID,
				"mitigation_level": input.MitigationLevel,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *Service) ListRiskControls(ctx context.Context, caller Caller, riskID uuid.UUID) ([]models.RiskControl, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	db := s.db.WithContext(ctx)
	var risk models.Risk
	if err := loadByID(db, &risk, riskID, "risk"); err != nil {
		return nil, err
	}
	if err := s.requireEntityAccess(db, caller, risk.OrganizationID, "risk"); err != nil {
		return nil, err
	}

	var links []models.RiskControl
	if err := db.Preload("Control").Where("risk_id = ?", riskID).Order("created_at ASC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("listing risk controls: %w", err)
	}
	return links, nil
}
