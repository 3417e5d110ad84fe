package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAuditLogImmutable = errors.New("audit log entries are append-only")

type AuditEntityType string

const (
	AuditEntityRisk        AuditEntityType = "risk"
	AuditEntityControl     AuditEntityType = "control"
	AuditEntityCompliance  AuditEntityType = "compliance"
	AuditEntityIntegration AuditEntityType = "integration"
)

func (t AuditEntityType) Valid() bool {
	switch t {
	case AuditEntityRisk, AuditEntityControl, AuditEntityCompliance, AuditEntityIntegration:
		return true
	}
	return false
}

type AuditAction string

const (
	AuditCreated       AuditAction = "created"
	AuditUpdated       AuditAction = "updated"
	AuditDeleted       AuditAction = "deleted"
	AuditStatusChanged AuditAction = "status_changed"
)

// AuditLog has no soft-delete column and refuses updates and deletes.
type AuditLog struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID       `gorm:"type:uuid;index;not null" json:"organization_id"`
	EntityType     AuditEntityType `gorm:"not null;index:idx_audit_logs_entity,priority:1" json:"entity_type"`
	EntityID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_audit_logs_entity,priority:2" json:"entity_id"`
	Action         AuditAction     `gorm:"not null" json:"action"`
	UserID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	Changes        string          `gorm:"type:text" json:"changes,omitempty"`
	Timestamp      time.Time       `gorm:"index;not null" json:"timestamp"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}

func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}
