package grc

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/database/models"
	"gorm.io/gorm"
)

// ConfigSealer encrypts integration configuration documents and opens them
// again for connectors.
type ConfigSealer interface {
	SealJSON(raw string) ([]byte, error)
	OpenJSON(sealed []byte, v any) error
}

// Service implements the organization-scoped GRC operations. Every method
// takes the caller explicitly and enforces membership before touching data.
type Service struct {
	db        *gorm.DB
	connector Connector
	sealer    ConfigSealer
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithConnector(c Connector) Option {
	return func(s *Service) { s.connector = c }
}

func WithSealer(sealer ConfigSealer) Option {
	return func(s *Service) { s.sealer = sealer }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.connector == nil {
		s.connector = NewSimulatedConnector(DefaultSuccessRate, rand.NewSource(time.Now().UnixNano()))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// requireMember returns the caller's membership in orgID.
func (s *Service) requireMember(tx *gorm.DB, caller Caller, orgID uuid.UUID) (*models.OrgMembership, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var m models.OrgMembership
	err := tx.Where("organization_id = ? AND user_id = ?", orgID, caller.UserID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// requireEntityAccess gates an entity that was addressed by id. Non-members
// see the same error as for a missing entity.
func (s *Service) requireEntityAccess(tx *gorm.DB, caller Caller, orgID uuid.UUID, entity string) error {
	_, err := s.requireMember(tx, caller, orgID)
	if errors.Is(err, ErrNotAuthorized) {
		return notFound(entity)
	}
	return err
}

// loadByID loads dest by primary key and maps a missing row to ErrNotFound.
func loadByID(tx *gorm.DB, dest any, id uuid.UUID, entity string) error {
	err := tx.First(dest, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	return err
}
