package grc_test

import (
	"context"
	"testing"
	"time"

	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/internal/grc"
	"github.com/hugh/go-grc/internal/testutil"
	"github.com/hugh/go-grc/pkg/util"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type stubConnector struct {
	ok        bool
	err       error
	result    grc.SyncResult
	syncCalls int
	config    map[string]any
}

func (c *stubConnector) TestConnection(ctx context.Context, _ *models.Integration, config map[string]any) (bool, error) {
	c.config = config
	return c.ok, c.err
}

func (c *stubConnector) Sync(ctx context.Context, _ *models.Integration, config map[string]any) (grc.SyncResult, error) {
	c.syncCalls++
	c.config = config
	return c.result, c.err
}

func newTestService(t *testing.T, opts ...grc.Option) (*grc.Service, *testutil.TestSetup) {
	t.Helper()
	tc := testutil.NewTestContext(t)
	opts = append([]grc.Option{grc.WithClock(func() time.Time { return fixedNow })}, opts...)
	return grc.NewService(tc.DB, util.NewDiscardLogger(), opts...), tc
}

func countAudit(t *testing.T, tc *testutil.TestSetup, entityID any, action models.AuditAction) int64 {
	t.Helper()
	var n int64
	if err := tc.DB.Model(&models.AuditLog{}).
		Where("entity_id = ? AND action = ?", entityID, action).
		Count(&n).Error; err != nil {
		t.Fatalf("counting audit logs: %v", err)
	}
	return n
}
