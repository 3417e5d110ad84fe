package models

import (
	"time"

	"github.com/google/uuid"
)

type FrameworkStatus string

const (
	FrameworkActive   FrameworkStatus = "active"
	FrameworkInactive FrameworkStatus = "inactive"
	FrameworkDraft    FrameworkStatus = "draft"
)

func (s FrameworkStatus) Valid() bool {
	switch s {
	case FrameworkActive, FrameworkInactive, FrameworkDraft:
		return true
	}
	return false
}

type ComplianceFramework struct {
	Base
	OrganizationID uuid.UUID       `gorm:"type:uuid;index;not null" json:"organization_id"`
	Name           string          `gorm:"not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	Version        string          `json:"version,omitempty"`
	Status         FrameworkStatus `gorm:"not null;default:'draft'" json:"status"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`

	Organization *Organization           `gorm:"foreignKey:OrganizationID" json:"-"`
	Requirements []ComplianceRequirement `gorm:"foreignKey:FrameworkID" json:"-"`
}

func (ComplianceFramework) TableName() string {
	return "compliance_frameworks"
}

type RequirementPriority string

const (
	PriorityLow      RequirementPriority = "low"
	PriorityMedium   RequirementPriority = "medium"
	PriorityHigh     RequirementPriority = "high"
	PriorityCritical RequirementPriority = "critical"
)

func (p RequirementPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type RequirementStatus string

const (
	RequirementNotStarted   RequirementStatus = "not_started"
	RequirementInProgress   RequirementStatus = "in_progress"
	RequirementCompliant    RequirementStatus = "compliant"
	RequirementNonCompliant RequirementStatus = "non_compliant"
	RequirementNeedsReview  RequirementStatus = "needs_review"
)

func (s RequirementStatus) Valid() bool {
	switch s {
	case RequirementNotStarted, RequirementInProgress, RequirementCompliant,
		RequirementNonCompliant, RequirementNeedsReview:
		return true
	}
	return false
}

type ComplianceRequirement struct {
	Base
	FrameworkID uuid.UUID `gorm:"type:uuid;index;not null" json:"framework_id"`

	// RequirementID is the framework's own reference, e.g. "SOX-404".
	RequirementID string              `gorm:"not null" json:"requirement_id"`
	Title         string              `gorm:"not null" json:"title"`
	Description   string              `gorm:"type:text" json:"description"`
	Category      string              `json:"category,omitempty"`
	Priority      RequirementPriority `gorm:"not null" json:"priority"`
	Status        RequirementStatus   `gorm:"not null;index;default:'not_started'" json:"status"`

	OwnerID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"owner_id"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	LastAssessed *time.Time `json:"last_assessed,omitempty"`
	Evidence     string     `gorm:"type:text" json:"evidence,omitempty"`

	Framework *ComplianceFramework `gorm:"foreignKey:FrameworkID" json:"-"`
}

func (ComplianceRequirement) TableName() string {
	return "compliance_requirements"
}
