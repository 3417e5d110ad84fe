package grc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/database/models"
	"gorm.io/gorm"
)

type CreateFrameworkInput struct {
	OrganizationID uuid.UUID
	Name           string
	Description    string
	Version        string
	Status         models.FrameworkStatus
}

type CreateRequirementInput struct {
	FrameworkID   uuid.UUID
	RequirementID string
	Title         string
	Description   string
	Category      string
	Priority      models.RequirementPriority
	OwnerID       uuid.UUID
	DueDate       *time.Time
}

type UpdateRequirementStatusInput struct {
	Status   models.RequirementStatus
	Evidence *string
}

func (s *Service) CreateFramework(ctx context.Context, caller Caller, input CreateFrameworkInput) (*models.ComplianceFramework, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidInput("name is required")
	}
	if input.Status == "" {
		input.Status = models.FrameworkDraft
	}
	if !input.Status.Valid() {
		return nil, invalidInput("unknown framework status %q", input.Status)
	}

	fw := models.ComplianceFramework{
		OrganizationID: input.OrganizationID,
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		Version:        input.Version,
		Status:         input.Status,
		CreatedBy:      caller.UserID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireMember(tx, caller, input.OrganizationID); err != nil {
			return err
		}
		if err := tx.Create(&fw).Error; err != nil {
			return fmt.Errorf("creating framework: %w", err)
		}
		return s.writeAudit(tx, auditEntry{
			orgID:      fw.OrganizationID,
			entityType: models.AuditEntityCompliance,
			entityID:   fw.ID,
			action:     models.AuditCreated,
			userID:     caller.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &fw, nil
}

func (s *Service) ListFrameworks(ctx context.Context, caller Caller, orgID uuid.UUID) ([]models.ComplianceFramework, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireMember(db, caller, orgID); err != nil {
		return nil, err
	}

	var frameworks []models.ComplianceFramework
	if err := db.Where("organization_id = ?", orgID).Order("name ASC").Find(&frameworks).Error; err != nil {
		return nil, fmt.Errorf("listing frameworks: %w", err)
	}
	return frameworks, nil
}

func (s *Service) CreateRequirement(ctx context.Context, caller Caller, input CreateRequirementInput) (*models.ComplianceRequirement, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(input.RequirementID) == "" {
		return nil, invalidInput("requirement_id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, invalidInput("title is required")
	}
	if !input.Priority.Valid() {
		return nil, invalidInput("unknown priority %q", input.Priority)
	}
	if input.OwnerID == uuid.Nil {
		input.OwnerID = caller.UserID
	}

	req := models.ComplianceRequirement{
		FrameworkID:   input.FrameworkID,
		RequirementID: strings.TrimSpace(input.RequirementID),
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Category:      input.Category,
		Priority:      input.Priority,
		Status:        models.RequirementNotStarted,
		OwnerID:       input.OwnerID,
		DueDate:       input.DueDate,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fw models.ComplianceFramework
		if err := loadByID(tx, &fw, input.FrameworkID, "framework"); err != nil {
			return err
		}
		if err := s.requireEntityAccess(tx, caller, fw.OrganizationID, "framework"); err != nil {
			return err
		}
		if err := tx.Create(&req).Error; err != nil {
			return fmt.Errorf("creating requirement: %w", err)
		}
		return s.writeAudit(tx, auditEntry{
			orgID:      fw.OrganizationID,
			entityType: models.AuditEntityCompliance,
			entityID:   req.ID,
			action:     models.AuditCreated,
			userID:     caller.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) ListRequirements(ctx context.Context, caller Caller, frameworkID uuid.UUID) ([]models.ComplianceRequirement, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	db := s.db.WithContext(ctx)
	var fw models.ComplianceFramework
	if err := loadByID(db, &fw, frameworkID, "framework"); err != nil {
		return nil, err
	}
	if err := s.requireEntityAccess(db, caller, fw.OrganizationID, "framework"); err != nil {
		return nil, err
	}

	var reqs []models.ComplianceRequirement
	if err := db.Where("framework_id = ?", frameworkID).Order("requirement_id ASC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("listing requirements: %w", err)
	}
	return reqs, nil
}

// UpdateRequirementStatus records an assessment of a requirement.
func (s *Service) UpdateRequirementStatus(ctx context.Context, caller Caller, requirementID uuid.UUID, input UpdateRequirementStatusInput) (*models.ComplianceRequirement, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if !input.Status.Valid() {
		return nil, invalidInput("unknown requirement status %q", input.Status)
	}

	var req models.ComplianceRequirement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadByID(tx, &req, requirementID, "requirement"); err != nil {
			return err
		}
		var fw models.ComplianceFramework
		if err := loadByID(tx, &fw, req.FrameworkID, "requirement"); err != nil {
			return err
		}
		if err := s.requireEntityAccess(tx, caller, fw.OrganizationID, "requirement"); err != nil {
			return err
		}

		now := s.now()
		changes := map[string]any{"from": req.Status, "to": input.Status}
		req.Status = input.Status
		req.LastAssessed = &now
		if input.Evidence != nil {
			req.Evidence = *input.Evidence
			changes["evidence"] = req.Evidence
		}

		if err := tx.Save(&req).Error; err != nil {
			return fmt.Errorf("updating requirement: %w", err)
		}
		return s.writeAudit(tx, auditEntry{
			orgID:      fw.OrganizationID,
			entityType: models.AuditEntityCompliance,
			entityID:   req.ID,
			action:     models.AuditStatusChanged,
			userID:     caller.UserID,
			changes:    changes,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("requirement assessed", "requirement_id", req.ID, "status", req.Status)
	return &req, nil
}
