package grc_test

import (
	"testing"

	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/internal/grc"
	"github.com/hugh/go-grc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CreateOrganization(t *testing.T) {
	svc, tc := newTestService(t)
	ctx := testutil.TestContext(t)

	org, err := svc.CreateOrganization(ctx, tc.Caller(), grc.CreateOrganizationInput{Name: "  Acme  ", Industry: "retail"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
	assert.Equal(t, tc.User.ID, org.CreatedBy)

	var m models.OrgMembership
	require.NoError(t, tc.DB.Where("organization_id = ? AND user_id = ?", org.ID, tc.User.ID).First(&m).Error)
	assert.Equal(t, models.RoleAdmin, m.Role)

	_, err = svc.CreateOrganization(ctx, tc.Caller(), grc.CreateOrganizationInput{Name: " "})
	assert.ErrorIs(t, err, grc.ErrInvalidInput)

	_, err = svc.CreateOrganization(ctx, grc.Caller{}, grc.CreateOrganizationInput{Name: "Ghost"})
	assert.ErrorIs(t, err, grc.ErrNotAuthenticated)
}

func TestService_ListOrganizations(t *testing.T) {
	svc, tc := newTestService(t)
	ctx := testutil.TestContext(t)

	other := testutil.CreateTestUser(t, tc.DB)
	second := testutil.CreateTestOrg(t, tc.DB, other)
	testutil.AddTestMember(t, tc.DB, second.ID, tc.User.ID, models.RoleViewer)
	testutil.CreateTestOrg(t, tc.DB, other)

	t.Run("lists exactly the caller's memberships with roles", func(t *testing.T) {
		orgs, err := svc.ListOrganizations(ctx, tc.Caller())
		require.NoError(t, err)
		require.Len(t, orgs, 2)

		roles := map[string]models.MemberRole{}
		for _, o := range orgs {
			roles[o.ID.String()] = o.Role
		}
		assert.Equal(t, models.RoleAdmin, roles[tc.Org.ID.String()])
		assert.Equal(t, models.RoleViewer, roles[second.ID.String()])
	})

	t.Run("anonymous caller gets empty list", func(t *testing.T) {
		orgs, err := svc.ListOrganizations(ctx, grc.Caller{})
		require.NoError(t, err)
		assert.Empty(t, orgs)
		assert.NotNil(t, orgs)
	})

	t.Run("get organization requires membership", func(t *testing.T) {
		got, err := svc.GetOrganization(ctx, tc.Caller(), second.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleViewer, got.Role)

		outsider := testutil.CreateTestUser(t, tc.DB)
		_, err = svc.GetOrganization(ctx, grc.Caller{UserID: outsider.ID}, second.ID)
		assert.ErrorIs(t, err, grc.ErrNotAuthorized)
	})
}

func TestService_AddMember(t *testing.T) {
	svc, tc := newTestService(t)
	ctx := testutil.TestContext(t)

	newcomer := testutil.CreateTestUser(t, tc.DB)

	t.Run("admin adds member", func(t *testing.T) {
		m, err := svc.AddMember(ctx, tc.Caller(), tc.Org.ID, grc.AddMemberInput{Email: newcomer.Email, Role: models.RoleManager})
		require.NoError(t, err)
		assert.Equal(t, newcomer.ID, m.UserID)

		members, err := svc.ListMembers(ctx, tc.Caller(), tc.Org.ID)
		require.NoError(t, err)
		assert.Len(t, members, 2)
	})

	t.Run("duplicate membership is rejected", func(t *testing.T) {
		_, err := svc.AddMember(ctx, tc.Caller(), tc.Org.ID, grc.AddMemberInput{Email: newcomer.Email, Role: models.RoleViewer})
		assert.ErrorIs(t, err, grc.ErrInvalidState)
	})

	t.Run("non-admin cannot add", func(t *testing.T) {
		another := testutil.CreateTestUser(t, tc.DB)
		_, err := svc.AddMember(ctx, grc.Caller{UserID: newcomer.ID}, tc.Org.ID, grc.AddMemberInput{Email: another.Email, Role: models.RoleViewer})
		assert.ErrorIs(t, err, grc.ErrNotAuthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.AddMember(ctx, tc.Caller(), tc.Org.ID, grc.AddMemberInput{Email: "nobody@example.com", Role: models.RoleViewer})
		assert.ErrorIs(t, err, grc.ErrNotFound)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := svc.AddMember(ctx, tc.Caller(), tc.Org.ID, grc.AddMemberInput{Email: newcomer.Email, Role: "owner"})
		assert.ErrorIs(t, err, grc.ErrInvalidInput)
	})
}
