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

type CreateOrganizationInput struct {
	Name        string
	Description string
	Industry    string
}

// OrganizationWithRole annotates an organization with the caller's role in it.
type OrganizationWithRole struct {
	models.Organization
	Role models.MemberRole `json:"role"`
}

// CreateOrganization creates the organization and makes the caller its admin.
func (s *Service) CreateOrganization(ctx context.Context, caller Caller, input CreateOrganizationInput) (*models.Organization, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidInput("name is required")
	}

	org := models.Organization{
		Name:        name,
		Description: input.Description,
		Industry:    input.Industry,
		CreatedBy:   caller.UserID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrgMembership{
			OrganizationID: org.ID,
			UserID:         caller.UserID,
			Role:           models.RoleAdmin,
			JoinedAt:       s.now(),
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("creating organization: %w", err)
	}

	s.logger.Info("organization created", "org_id", org.ID, "user_id", caller.UserID)
	return &org, nil
}

// ListOrganizations returns the organizations the caller belongs to. An
// anonymous caller gets an empty list.
func (s *Service) ListOrganizations(ctx context.Context, caller Caller) ([]OrganizationWithRole, error) {
	result := []OrganizationWithRole{}
	if !caller.Authenticated() {
		return result, nil
	}

	var memberships []models.OrgMembership
	if err := s.db.WithContext(ctx).
		Preload("Organization").
		Where("user_id = ?", caller.UserID).
		Order("joined_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}

	for _, m := range memberships {
		if m.Organization == nil {
			continue
		}
		result = append(result, OrganizationWithRole{Organization: *m.Organization, Role: m.Role})
	}
	return result, nil
}

func (s *Service) GetOrganization(ctx context.Context, caller Caller, orgID uuid.UUID) (*OrganizationWithRole, error) {
	db := s.db.WithContext(ctx)
	m, err := s.requireMember(db, caller, orgID)
	if err != nil {
		return nil, err
	}

	var org models.Organization
	if err := loadByID(db, &org, orgID, "organization"); err != nil {
		return nil, err
	}
	return &OrganizationWithRole{Organization: org, Role: m.Role}, nil
}

type AddMemberInput struct {
	Email string
	Role  models.MemberRole
}

type Member struct {
	UserID   uuid.UUID         `json:"user_id"`
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	Role     models.MemberRole `json:"role"`
	JoinedAt time.Time         `json:"joined_at"`
}

// AddMember lets an admin add an existing user to the organization.
func (s *Service) AddMember(ctx context.Context, caller Caller, orgID uuid.UUID, input AddMemberInput) (*models.OrgMembership, error) {
	if !input.Role.Valid() {
		return nil, invalidInput("unknown role %q", input.Role)
	}

	var membership models.OrgMembership
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.requireMember(tx, caller, orgID)
		if err != nil {
			return err
		}
		if m.Role != models.RoleAdmin {
			return fmt.Errorf("%w: only admins can add members", ErrNotAuthorized)
		}

		var user models.User
		err = tx.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user")
		}
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.OrgMembership{}).
			Where("organization_id = ? AND user_id = ?", orgID, user.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: user is already a member", ErrInvalidState)
		}

		membership = models.OrgMembership{
			OrganizationID: orgID,
			UserID:         user.ID,
			Role:           input.Role,
			JoinedAt:       s.now(),
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("member added", "org_id", orgID, "user_id", membership.UserID, "role", membership.Role)
	return &membership, nil
}

func (s *Service) ListMembers(ctx context.Context, caller Caller, orgID uuid.UUID) ([]Member, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireMember(db, caller, orgID); err != nil {
		return nil, err
	}

	var memberships []models.OrgMembership
	if err := db.Preload("User").
		Where("organization_id = ?", orgID).
		Order("joined_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	members := make([]Member, 0, len(memberships))
	for _, m := range memberships {
		member := Member{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
		if m.User != nil {
			member.Email = m.User.Email
			member.Name = m.User.Name
		}
		members = append(members, member)
	}
	return members, nil
}
