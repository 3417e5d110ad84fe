package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	Base
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;index;not null" json:"created_by"`

	// Relationships
	Memberships  []OrgMembership       `gorm:"foreignKey:OrganizationID" json:"-"`
	Risks        []Risk                `gorm:"foreignKey:OrganizationID" json:"-"`
	Controls     []Control             `gorm:"foreignKey:OrganizationID" json:"-"`
	Frameworks   []ComplianceFramework `gorm:"foreignKey:OrganizationID" json:"-"`
	Integrations []Integration         `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (Organization) TableName() string {
	return "organizations"
}

type MemberRole string

const (
	RoleAdmin   MemberRole = "admin"
	RoleManager MemberRole = "manager"
	RoleViewer  MemberRole = "viewer"
)

func (r MemberRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleViewer:
		return true
	}
	return false
}

// OrgMembership binds a user to an organization. The composite primary key
// keeps (organization, user) unique.
type OrgMembership struct {
	OrganizationID uuid.UUID  `gorm:"type:uuid;primaryKey;index" json:"organization_id"`
	UserID         uuid.UUID  `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	Role           MemberRole `gorm:"not null;default:'viewer'" json:"role"`
	JoinedAt       time.Time  `json:"joined_at"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	User         *User         `gorm:"foreignKey:UserID" json:"-"`
}

func (OrgMembership) TableName() string {
	return "org_memberships"
}
