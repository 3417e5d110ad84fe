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

type CreateRiskInput struct {
	OrganizationID uuid.UUID
	Title          string
	Description    string
	Category       models.RiskCategory
	Likelihood     models.Level
	Impact         models.Level
	// OwnerID defaults to the caller.
	OwnerID uuid.UUID
	DueDate *time.Time
}

func (in CreateRiskInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalidInput("title is required")
	}
	if !in.Category.Valid() {
		return invalidInput("unknown category %q", in.Category)
	}
	if !in.Likelihood.Valid() {
		return invalidInput("unknown likelihood %q", in.Likelihood)
	}
	if !in.Impact.Valid() {
		return invalidInput("unknown impact %q", in.Impact)
	}
	return nil
}

// UpdateRiskInput holds the fields to change; nil fields are left alone.
type UpdateRiskInput struct {
	Title       *string
	Description *string
	Likelihood  *models.Level
	Impact      *models.Level
	Status      *models.RiskStatus
}

func (in UpdateRiskInput) validate() error {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return invalidInput("title cannot be empty")
	}
	if in.Likelihood != nil && !in.Likelihood.Valid() {
		return invalidInput("unknown likelihood %q", *in.Likelihood)
	}
	if in.Impact != nil && !in.Impact.Valid() {
		return invalidInput("unknown impact %q", *in.Impact)
	}
	if in.Status != nil && !in.Status.Valid() {
		return invalidInput("unknown status %q", *in.Status)
	}
	return nil
}

// RiskView is a risk with its owner's display name resolved.
type RiskView struct {
	models.Risk
	OwnerName string `json:"owner_name"`
	Band      Band   `json:"band"`
}

func newRiskView(r models.Risk) RiskView {
	return RiskView{Risk: r, OwnerName: r.Owner.DisplayName(), Band: ScoreBand(r.RiskScore)}
}

type RiskFilter struct {
	Status   models.RiskStatus
	Category models.RiskCategory
}

func (s *Service) CreateRisk(ctx context.Context, caller Caller, input CreateRiskInput) (*models.Risk, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if input.OwnerID == uuid.Nil {
		input.OwnerID = caller.UserID
	}

	now := s.now()
	risk := models.Risk{
		OrganizationID: input.OrganizationID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Category:       input.Category,
		Likelihood:     input.Likelihood,
		Impact:         input.Impact,
		RiskScore:      RiskScore(input.Likelihood, input.Impact),
		Status:         models.RiskStatusIdentified,
		OwnerID:        input.OwnerID,
		DueDate:        input.DueDate,
		CreatedBy:      caller.UserID,
		LastUpdated:    now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireMember(tx, caller, input.OrganizationID); err != nil {
			return err
		}
		if err := tx.Create(&risk).Error; err != nil {
			return fmt.Errorf("creating risk: %w", err)
		}
		return s.writeAudit(tx, auditEntry{
			orgID:      risk.OrganizationID,
			entityType: models.AuditEntityRisk,
			entityID:   risk.ID,
			action:     models.AuditCreated,
			userID:     caller.UserID,
		})
	})
	if err != nil {
		return nil, err
	}

	risksCreated.Inc()
	s.logger.Info("risk created", "risk_id", risk.ID, "org_id", risk.OrganizationID, "score", risk.RiskScore)
	return &risk, nil
}

// applyRiskUpdate merges the supplied fields into risk and returns the
// applied changes keyed by JSON field name. The score is recomputed from the
// effective pair whenever likelihood or impact is supplied.
func applyRiskUpdate(risk *models.Risk, in UpdateRiskInput, now time.Time) map[string]any {
	changes := map[string]any{}

	if in.Title != nil {
		risk.Title = strings.TrimSpace(*in.Title)
		changes["title"] = risk.Title
	}
	if in.Description != nil {
		risk.Description = *in.Description
		changes["description"] = risk.Description
	}
	if in.Likelihood != nil {
		risk.Likelihood = *in.Likelihood
		changes["likelihood"] = risk.Likelihood
	}
	if in.Impact != nil {
		risk.Impact = *in.Impact
		changes["impact"] = risk.Impact
	}
	if in.Likelihood != nil || in.Impact != nil {
		risk.RiskScore = RiskScore(risk.Likelihood, risk.Impact)
		changes["risk_score"] = risk.RiskScore
	}
	if in.Status != nil {
		risk.Status = *in.Status
		changes["status"] = risk.Status
	}

	risk.LastUpdated = now
	return changes
}

func (s *Service) UpdateRisk(ctx context.Context, caller Caller, riskID uuid.UUID, input UpdateRiskInput) (*models.Risk, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var risk models.Risk
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadByID(tx, &risk, riskID, "risk"); err != nil {
			return err
		}
		if err := s.requireEntityAccess(tx, caller, risk.OrganizationID, "risk"); err != nil {
			return err
		}

		changes := applyRiskUpdate(&risk, input, s.now())
		if err := tx.Save(&risk).Error; err != nil {
			return fmt.Errorf("updating risk: %w", err)
		}
		return s.writeAudit(tx, auditEntry{
			orgID:      risk.OrganizationID,
			entityType: models.AuditEntityRisk,
			entityID:   risk.ID,
			action:     models.AuditUpdated,
			userID:     caller.UserID,
			changes:    changes,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("risk updated", "risk_id", risk.ID, "org_id", risk.OrganizationID, "score", risk.RiskScore)
	return &risk, nil
}

func (s *Service) GetRisk(ctx context.Context, caller Caller, riskID uuid.UUID) (*RiskView, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	db := s.db.WithContext(ctx)
	var risk models.Risk
	if err := loadByID(db.Preload("Owner"), &risk, riskID, "risk"); err != nil {
		return nil, err
	}
	if err := s.requireEntityAccess(db, caller, risk.OrganizationID, "risk"); err != nil {
		return nil, err
	}

	view := newRiskView(risk)
	return &view, nil
}

// ListRisks returns the organization's risks, highest score first.
func (s *Service) ListRisks(ctx context.Context, caller Caller, orgID uuid.UUID, filter RiskFilter) ([]RiskView, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireMember(db, caller, orgID); err != nil {
		return nil, err
	}

	query := db.Preload("Owner").Where("organization_id = ?", orgID)
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, invalidInput("unknown status %q", filter.Status)
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		if !filter.Category.Valid() {
			return nil, invalidInput("unknown category %q", filter.Category)
		}
		query = query.Where("category = ?", filter.Category)
	}

	var risks []models.Risk
	if err := query.Order("risk_score DESC").Order("created_at DESC").Find(&risks).Error; err != nil {
		return nil, fmt.Errorf("listing risks: %w", err)
	}

	views := make([]RiskView, 0, len(risks))
	for _, r := range risks {
		views = append(views, newRiskView(r))
	}
	return views, nil
}
