package tasks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/hugh/go-grc/pkg/queue"
)

// Task type names
const (
	TypeIntegrationSync = "integration:sync"
	TypeSchedulerTick   = "scheduler:tick"
)

// syncUniqueTTL keeps the scheduler from queueing the same integration twice
// while a previous sync is still pending.
const syncUniqueTTL = 10 * time.Minute

// IntegrationSyncPayload contains the data for an integration sync task
type IntegrationSyncPayload struct {
	IntegrationID  uuid.UUID `json:"integration_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
}

func NewIntegrationSyncTask(payload IntegrationSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeIntegrationSync, data,
		asynq.Queue(queue.QueueDefault),
		asynq.MaxRetry(3),
		asynq.Unique(syncUniqueTTL),
	), nil
}

// SchedulerTickPayload is empty - the scheduler checks all active integrations
type SchedulerTickPayload struct{}

func NewSchedulerTickTask() *asynq.Task {
	return asynq.NewTask(TypeSchedulerTick, nil, asynq.Queue(queue.QueueCritical), asynq.MaxRetry(0))
}
