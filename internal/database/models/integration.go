package models

import (
	"time"

	"github.com/google/uuid"
)

type IntegrationType string

const (
	IntegrationAPI        IntegrationType = "api"
	IntegrationWebhook    IntegrationType = "webhook"
	IntegrationFileImport IntegrationType = "file_import"
	IntegrationDatabase   IntegrationType = "database"
	IntegrationSIEM       IntegrationType = "siem"
	IntegrationERP        IntegrationType = "erp"
	IntegrationHRMS       IntegrationType = "hrms"
)

func (t IntegrationType) Valid() bool {
	switch t {
	case IntegrationAPI, IntegrationWebhook, IntegrationFileImport, IntegrationDatabase,
		IntegrationSIEM, IntegrationERP, IntegrationHRMS:
		return true
	}
	return false
}

type IntegrationStatus string

const (
	IntegrationActive   IntegrationStatus = "active"
	IntegrationInactive IntegrationStatus = "inactive"
	IntegrationError    IntegrationStatus = "error"
	IntegrationPending  IntegrationStatus = "pending"
)

func (s IntegrationStatus) Valid() bool {
	switch s {
	case IntegrationActive, IntegrationInactive, IntegrationError, IntegrationPending:
		return true
	}
	return false
}

type SyncFrequency string

const (
	SyncRealTime SyncFrequency = "real_time"
	SyncHourly   SyncFrequency = "hourly"
	SyncDaily    SyncFrequency = "daily"
	SyncWeekly   SyncFrequency = "weekly"
)

func (f SyncFrequency) Valid() bool {
	switch f {
	case SyncRealTime, SyncHourly, SyncDaily, SyncWeekly:
		return true
	}
	return false
}

type Integration struct {
	Base
	OrganizationID uuid.UUID         `gorm:"type:uuid;index;not null" json:"organization_id"`
	Name           string            `gorm:"not null" json:"name"`
	Type           IntegrationType   `gorm:"not null" json:"type"`
	Status         IntegrationStatus `gorm:"not null;index;default:'pending'" json:"status"`
	Endpoint       string            `json:"endpoint,omitempty"`
	SyncFrequency  SyncFrequency     `gorm:"not null" json:"sync_frequency"`

	// Config is a JSON document sealed with age.
	EncryptedConfig []byte `gorm:"type:bytea" json:"-"`

	LastSync  *time.Time `json:"last_sync,omitempty"`
	CreatedBy uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (Integration) TableName() string {
	return "integrations"
}

func (i *Integration) HasConfig() bool {
	return len(i.EncryptedConfig) > 0
}
