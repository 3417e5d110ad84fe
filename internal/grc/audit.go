package grc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/database/models"
	"gorm.io/gorm"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

type auditEntry struct {
	orgID      uuid.UUID
	entityType models.AuditEntityType
	entityID   uuid.UUID
	action     models.AuditAction
	userID     uuid.UUID
	changes    any
}

// writeAudit appends one audit row on tx, so it commits or rolls back with
// the mutation it records.
func (s *Service) writeAudit(tx *gorm.DB, e auditEntry) error {
	log := models.AuditLog{
		OrganizationID: e.orgID,
		EntityType:     e.entityType,
		EntityID:       e.entityID,
		Action:         e.action,
		UserID:         e.userID,
		Timestamp:      s.now(),
	}
	if e.changes != nil {
		raw, err := json.Marshal(e.changes)
		if err != nil {
			return fmt.Errorf("encoding audit changes: %w", err)
		}
		log.Changes = string(raw)
	}
	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	auditEntries.WithLabelValues(string(e.entityType), string(e.action)).Inc()
	return nil
}

type AuditFilter struct {
	EntityType models.AuditEntityType
	EntityID   *uuid.UUID
	Limit      int
}

// ListAuditLogs returns the organization's audit trail, newest first.
func (s *Service) ListAuditLogs(ctx context.Context, caller Caller, orgID uuid.UUID, filter AuditFilter) ([]models.AuditLog, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireMember(db, caller, orgID); err != nil {
		return nil, err
	}

	if filter.EntityType != "" && !filter.EntityType.Valid() {
		return nil, invalidInput("unknown entity type %q", filter.EntityType)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	query := db.Where("organization_id = ?", orgID)
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != nil {
		query = query.Where("entity_id = ?", *filter.EntityID)
	}

	var logs []models.AuditLog
	if err := query.Order("timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}
	return logs, nil
}
