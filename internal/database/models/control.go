package models

import (
	"time"

	"github.com/google/uuid"
)

type ControlType string

const (
	ControlPreventive   ControlType = "preventive"
	ControlDetective    ControlType = "detective"
	ControlCorrective   ControlType = "corrective"
	ControlCompensating ControlType = "compensating"
)

func (t ControlType) Valid() bool {
	switch t {
	case ControlPreventive, ControlDetective, ControlCorrective, ControlCompensating:
		return true
	}
	return false
}

type ControlFrequency string

const (
	FrequencyContinuous ControlFrequency = "continuous"
	FrequencyDaily      ControlFrequency = "daily"
	FrequencyWeekly     ControlFrequency = "weekly"
	FrequencyMonthly    ControlFrequency = "monthly"
	FrequencyQuarterly  ControlFrequency = "quarterly"
	FrequencyAnnually   ControlFrequency = "annually"
)

func (f ControlFrequency) Valid() bool {
	switch f {
	case FrequencyContinuous, FrequencyDaily, FrequencyWeekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually:
		return true
	}
	return false
}

type Effectiveness string

const (
	EffectivenessNotTested          Effectiveness = "not_tested"
	EffectivenessIneffective        Effectiveness = "ineffective"
	EffectivenessPartiallyEffective Effectiveness = "partially_effective"
	EffectivenessEffective          Effectiveness = "effective"
)

func (e Effectiveness) Valid() bool {
	switch e {
	case EffectivenessNotTested, EffectivenessIneffective,
		EffectivenessPartiallyEffective, EffectivenessEffective:
		return true
	}
	return false
}

type Control struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`

	Title         string           `gorm:"not null" json:"title"`
	Description   string           `gorm:"type:text" json:"description"`
	Type          ControlType      `gorm:"not null" json:"type"`
	Frequency     ControlFrequency `gorm:"not null" json:"frequency"`
	Effectiveness Effectiveness    `gorm:"not null;index;default:'not_tested'" json:"effectiveness"`

	OwnerID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"owner_id"`
	LastTested  *time.Time `json:"last_tested,omitempty"`
	NextTestDue *time.Time `json:"next_test_due,omitempty"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (Control) TableName() string {
	return "controls"
}

type MitigationLevel string

const (
	MitigationLow    MitigationLevel = "low"
	MitigationMedium MitigationLevel = "medium"
	MitigationHigh   MitigationLevel = "high"
)

func (m MitigationLevel) Valid() bool {
	switch m {
	case MitigationLow, MitigationMedium, MitigationHigh:
		return true
	}
	return false
}

// RiskControl maps a control onto a risk it mitigates.
type RiskControl struct {
	Base
	RiskID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_risk_controls_pair" json:"risk_id"`
	ControlID       uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_risk_controls_pair" json:"control_id"`
	MitigationLevel MitigationLevel `gorm:"not null" json:"mitigation_level"`

	Risk    *Risk    `gorm:"foreignKey:RiskID" json:"-"`
	Control *Control `gorm:"foreignKey:ControlID" json:"control,omitempty"`
}

func (RiskControl) TableName() string {
	return "risk_controls"
}
