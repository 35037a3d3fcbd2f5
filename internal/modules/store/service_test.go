package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
	"github.com/sedifex/sedifex-backend/internal/modules/billing"
	"github.com/sedifex/sedifex-backend/internal/modules/team"
)

type fixture struct {
	roster    *docstore.MemoryStore
	defaultDB *docstore.MemoryStore
	directory auth.Directory
	svc       Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		roster:    docstore.NewMemoryStore(),
		defaultDB: docstore.NewMemoryStore(),
		directory: auth.NewMemoryDirectory(),
	}
	f.svc = NewService(f.roster, f.defaultDB, f.directory, billing.DefaultConfig())
	return f
}

func ownerContext(uid, email string) *auth.Context {
	return &auth.Context{UID: uid, Token: map[string]interface{}{"email": email}}
}

func TestInitializeStoreBootstrapsWorkspace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	resp, err := f.svc.InitializeStore(ctx, ownerContext("user_1", "owner@example.com"), InitializeStoreRequest{})
	require.NoError(t, err)

	assert.True(t, resp.OK)
	assert.Equal(t, "user_1", resp.StoreID)
	assert.Equal(t, "user_1", resp.WorkspaceSlug)
	assert.Equal(t, "owner", resp.Claims["role"])
	assert.Equal(t, billing.PlanStarter, resp.Store.Billing.PlanID)
	assert.Equal(t, "paystack", resp.Store.Billing.Provider)
	assert.Equal(t, "trial", resp.Store.Billing.Status)
	assert.Equal(t, "owner@example.com", resp.Store.OwnerEmail)
	assert.Equal(t, team.RoleOwner, resp.Membership.Role)

	// Trial window is TrialDays long.
	assert.Equal(t, 14*24*time.Hour, resp.Store.ContractEnd.Sub(resp.Store.ContractStart))

	workspace, ok, err := f.defaultDB.Get(ctx, "workspaces", "user_1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "starter", docstore.OptionalString(workspace.Data, "planId"))
	assert.Equal(t, "trial", docstore.OptionalString(workspace.Data, "paymentStatus"))

	// Email-keyed roster mirror exists.
	_, ok, err = f.roster.Get(ctx, "teamMembers", "owner@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInitializeStoreRejectsUnknownPlan(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.InitializeStore(context.Background(), ownerContext("u", "o@e.c"),
		InitializeStoreRequest{PlanID: "platinum"})
	var ce *callable.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, callable.CodeInvalidArgument, ce.Code)
}

func TestInitializeStoreIsIdempotentAndKeepsContract(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	caller := ownerContext("user_1", "owner@example.com")

	first, err := f.svc.InitializeStore(ctx, caller, InitializeStoreRequest{PlanID: "pro"})
	require.NoError(t, err)

	second, err := f.svc.InitializeStore(ctx, caller, InitializeStoreRequest{})
	require.NoError(t, err)

	assert.Equal(t, first.StoreID, second.StoreID)
	assert.Equal(t, billing.PlanPro, second.Store.Billing.PlanID)
	assert.Equal(t, first.Store.ContractStart, second.Store.ContractStart)
	assert.Equal(t, first.Store.ContractEnd, second.Store.ContractEnd)
	assert.Equal(t, first.Store.CreatedAt, second.Store.CreatedAt)
}

func TestResolveStoreAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	caller := ownerContext("user_1", "owner@example.com")
	_, err := f.svc.InitializeStore(ctx, caller, InitializeStoreRequest{})
	require.NoError(t, err)

	resp, err := f.svc.ResolveStoreAccess(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, "user_1", resp.StoreID)
	assert.Equal(t, "owner", resp.Claims["role"])
}

func TestResolveStoreAccessNoMembership(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ResolveStoreAccess(context.Background(), ownerContext("ghost", ""))
	var ce *callable.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, callable.CodePermissionDenied, ce.Code)
}

func TestResolveStoreAccessInactiveWorkspace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	caller := ownerContext("user_1", "owner@example.com")
	_, err := f.svc.InitializeStore(ctx, caller, InitializeStoreRequest{})
	require.NoError(t, err)

	require.NoError(t, f.defaultDB.Set(ctx, "stores", "user_1",
		map[string]interface{}{"status": "Suspended"}, true))

	_, err = f.svc.ResolveStoreAccess(ctx, caller)
	var ce *callable.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, callable.CodePermissionDenied, ce.Code)
	assert.Equal(t, billing.InactiveWorkspaceMessage, ce.Message)
}

func TestNormalizeSignupRole(t *testing.T) {
	assert.Equal(t, "owner", NormalizeSignupRole(" Owner "))
	assert.Equal(t, "team-member", NormalizeSignupRole("Team Member"))
	assert.Equal(t, "team-member", NormalizeSignupRole("team_member"))
	assert.Equal(t, "team-member", NormalizeSignupRole("team"))
	assert.Equal(t, "", NormalizeSignupRole("cashier"))
}
