package models

import (
	"time"

	"github.com/google/uuid"
)

// Level is the five-step ordinal scale used for both likelihood and impact.
type Level string

const (
	LevelVeryLow  Level = "very_low"
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelVeryHigh Level = "very_high"
)

// Levels lists the scale in ascending order.
var Levels = []Level{LevelVeryLow, LevelLow, LevelMedium, LevelHigh, LevelVeryHigh}

func (l Level) Valid() bool {
	switch l {
	case LevelVeryLow, LevelLow, LevelMedium, LevelHigh, LevelVeryHigh:
		return true
	}
	return false
}

type RiskCategory string

const (
	CategoryOperational  RiskCategory = "operational"
	CategoryFinancial    RiskCategory = "financial"
	CategoryStrategic    RiskCategory = "strategic"
	CategoryCompliance   RiskCategory = "compliance"
	CategoryTechnology   RiskCategory = "technology"
	CategoryReputational RiskCategory = "reputational"
)

func (c RiskCategory) Valid() bool {
	switch c {
	case CategoryOperational, CategoryFinancial, CategoryStrategic,
		CategoryCompliance, CategoryTechnology, CategoryReputational:
		return true
	}
	return false
}

type RiskStatus string

const (
	RiskStatusIdentified  RiskStatus = "identified"
	RiskStatusAssessed    RiskStatus = "assessed"
	RiskStatusMitigated   RiskStatus = "mitigated"
	RiskStatusAccepted    RiskStatus = "accepted"
	RiskStatusTransferred RiskStatus = "transferred"
)

func (s RiskStatus) Valid() bool {
	switch s {
	case RiskStatusIdentified, RiskStatusAssessed, RiskStatusMitigated,
		RiskStatusAccepted, RiskStatusTransferred:
		return true
	}
	return false
}

type Risk struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`

	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Category    RiskCategory `gorm:"not null;index" json:"category"`

	// RiskScore is derived from Likelihood and Impact and stored for querying.
	Likelihood Level      `gorm:"not null" json:"likelihood"`
	Impact     Level      `gorm:"not null" json:"impact"`
	RiskScore  int        `gorm:"not null;index" json:"risk_score"`
	Status     RiskStatus `gorm:"not null;index;default:'identified'" json:"status"`

	OwnerID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"owner_id"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	LastUpdated time.Time  `json:"last_updated"`

	// Relationships
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Owner        *User         `gorm:"foreignKey:OwnerID" json:"-"`
	Controls     []RiskControl `gorm:"foreignKey:RiskID" json:"-"`
}

func (Risk) TableName() string {
	return "risks"
}
