package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/internal/grc"
	"gorm.io/gorm"
)

// Enqueuer is the subset of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Handler struct {
	db       *gorm.DB
	svc      *grc.Service
	enqueuer Enqueuer
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(db *gorm.DB, svc *grc.Service, enqueuer Enqueuer, logger *slog.Logger) *Handler {
	return &Handler{
		db:       db,
		svc:      svc,
		enqueuer: enqueuer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeIntegrationSync, h.HandleIntegrationSync)
	mux.HandleFunc(TypeSchedulerTick, h.HandleSchedulerTick)
}

// HandleIntegrationSync runs a scheduled sync on behalf of the integration's
// creator, so the usual membership checks and audit trail apply.
func (h *Handler) HandleIntegrationSync(ctx context.Context, t *asynq.Task) error {
	var payload IntegrationSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	var integration models.Integration
	err := h.db.WithContext(ctx).First(&integration, "id = ?", payload.IntegrationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.logger.Warn("skipping sync for missing integration", "integration_id", payload.IntegrationID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading integration: %w", err)
	}
	if integration.OrganizationID != payload.OrganizationID {
		return fmt.Errorf("integration %s does not belong to organization %s: %w",
			payload.IntegrationID, payload.OrganizationID, asynq.SkipRetry)
	}

	h.logger.Info("starting scheduled sync",
		"integration_id", integration.ID,
		"org_id", integration.OrganizationID,
		"frequency", integration.SyncFrequency,
	)

	outcome, err := h.svc.SyncIntegration(ctx, grc.Caller{UserID: integration.CreatedBy}, integration.ID)
	switch {
	case errors.Is(err, grc.ErrInvalidState):
		h.logger.Info("integration no longer active, skipping sync", "integration_id", integration.ID)
		return nil
	case errors.Is(err, grc.ErrNotFound), errors.Is(err, grc.ErrNotAuthorized), errors.Is(err, grc.ErrNotAuthenticated):
		return fmt.Errorf("sync integration %s: %v: %w", integration.ID, err, asynq.SkipRetry)
	case err != nil:
		return fmt.Errorf("sync integration %s: %w", integration.ID, err)
	}

	h.logger.Info("completed scheduled sync",
		"integration_id", integration.ID,
		"processed", outcome.RecordsProcessed,
		"errors", outcome.Errors,
	)
	return nil
}

// HandleSchedulerTick queues a sync for every active integration that is due.
func (h *Handler) HandleSchedulerTick(ctx context.Context, t *asynq.Task) error {
	due, err := h.svc.DueIntegrations(ctx, h.now())
	if err != nil {
		return fmt.Errorf("finding due integrations: %w", err)
	}

	var errs []error
	queued := 0
	for _, integration := range due {
		task, err := NewIntegrationSyncTask(IntegrationSyncPayload{
			IntegrationID:  integration.ID,
			OrganizationID: integration.OrganizationID,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if _, err := h.enqueuer.EnqueueContext(ctx, task); err != nil {
			if errors.Is(err, asynq.ErrDuplicateTask) {
				h.logger.Debug("sync already queued", "integration_id", integration.ID)
				continue
			}
			h.logger.Error("failed to enqueue sync", "integration_id", integration.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		queued++
	}

	if len(due) > 0 {
		h.logger.Info("scheduler tick", "due", len(due), "queued", queued)
	}
	return errors.Join(errs...)
}
