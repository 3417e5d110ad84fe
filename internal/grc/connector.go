package grc

import (
	"context"
	"math/rand"
	"sync"

	"github.com/hugh/go-grc/internal/database/models"
)

// DefaultSuccessRate is the probability a simulated connection test passes.
const DefaultSuccessRate = 0.7

type SyncResult struct {
	RecordsProcessed int `json:"records_processed"`
	RecordsUpdated   int `json:"records_updated"`
	RecordsCreated   int `json:"records_created"`
	Errors           int `json:"errors"`
}

// Connector talks to the external system behind an integration. config is
// the integration's opened configuration document, nil when none was stored.
type Connector interface {
	TestConnection(ctx context.Context, integration *models.Integration, config map[string]any) (bool, error)
	Sync(ctx context.Context, integration *models.Integration, config map[string]any) (SyncResult, error)
}

// SimulatedConnector fabricates outcomes instead of contacting anything.
// It is safe for concurrent use.
type SimulatedConnector struct {
	mu          sync.Mutex
	rng         *rand.Rand
	successRate float64
}

func NewSimulatedConnector(successRate float64, src rand.Source) *SimulatedConnector {
	return &SimulatedConnector{
		rng:         rand.New(src),
		successRate: successRate,
	}
}

func (c *SimulatedConnector) TestConnection(ctx context.Context, _ *models.Integration, _ map[string]any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64() < c.successRate, nil
}

func (c *SimulatedConnector) Sync(ctx context.Context, _ *models.Integration, _ map[string]any) (SyncResult, error) {
	if err := ctx.Err(); err != nil {
		return SyncResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return SyncResult{
		RecordsProcessed: c.rng.Intn(1000) + 100,
		RecordsUpdated:   c.rng.Intn(50) + 10,
		RecordsCreated:   c.rng.Intn(20) + 5,
		Errors:           c.rng.Intn(3),
	}, nil
}
