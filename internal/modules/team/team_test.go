package team

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
)

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleOwner, NormalizeRole("owner"))
	assert.Equal(t, RoleOwner, NormalizeRole("  OWNER "))
	assert.Equal(t, RoleStaff, NormalizeRole("staff"))
	assert.Equal(t, RoleStaff, NormalizeRole("manager"))
	assert.Equal(t, RoleStaff, NormalizeRole(""))
}

func TestNormalizeMembershipDefensive(t *testing.T) {
	m := NormalizeMembership("doc-1", map[string]interface{}{
		"uid":     "u1",
		"email":   " Staff@Example.COM ",
		"role":    42, // wrong type
		"storeId": "s1",
	})
	assert.Equal(t, "u1", m.UID)
	assert.Equal(t, "staff@example.com", m.Email)
	assert.Equal(t, RoleStaff, m.Role)
	assert.Equal(t, "s1", m.StoreID)

	// uid falls back to the document id.
	m = NormalizeMembership("fallback-uid", map[string]interface{}{"storeId": "s2"})
	assert.Equal(t, "fallback-uid", m.UID)
}

func TestDocstoreRepositoryUpsertAndMirror(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewDocstoreRepository(store)

	require.NoError(t, repo.Upsert(ctx, Membership{
		UID: "u1", Email: "staff@example.com", Role: RoleStaff, StoreID: "s1",
	}))

	member, ok, err := repo.GetByUID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, RoleStaff, member.Role)
	assert.False(t, member.CreatedAt.IsZero())

	// Email mirror document exists and normalizes to the same member.
	mirror, ok, err := repo.GetByUID(ctx, "staff@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", mirror.UID)

	// ListByUser collapses the mirror to one membership per store.
	members, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "s1", members[0].StoreID)

	// Re-upsert keeps createdAt.
	created := members[0].CreatedAt
	require.NoError(t, repo.Upsert(ctx, Membership{
		UID: "u1", Email: "staff@example.com", Role: RoleOwner, StoreID: "s1",
	}))
	member, _, err = repo.GetByUID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, created, member.CreatedAt)
	assert.Equal(t, RoleOwner, member.Role)
}

func TestManageStaffAccount(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstoreRepository(docstore.NewMemoryStore())
	directory := auth.NewMemoryDirectory()
	svc := NewService(repo, directory)
	owner := &auth.Context{UID: "owner-1", Token: map[string]interface{}{"role": "owner"}}

	resp, err := svc.ManageStaffAccount(ctx, owner, ManageStaffRequest{
		StoreID:  "s1",
		Email:    "New.Staff@Example.com",
		Role:     "staff",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.True(t, resp.Created)
	assert.Equal(t, RoleStaff, resp.Role)
	assert.Equal(t, "new.staff@example.com", resp.Email)
	assert.Equal(t, "staff", resp.Claims["role"])

	member, ok, err := repo.GetByUID(ctx, resp.UID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "owner-1", member.InvitedBy)
}

func TestManageStaffAccountValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewDocstoreRepository(docstore.NewMemoryStore()), auth.NewMemoryDirectory())
	owner := &auth.Context{UID: "owner-1", Token: map[string]interface{}{"role": "owner"}}
	staff := &auth.Context{UID: "staff-1", Token: map[string]interface{}{"role": "staff"}}

	cases := []struct {
		name string
		req  ManageStaffRequest
		code string
	}{
		{"missing store", ManageStaffRequest{Email: "a@b.c", Role: "staff"}, callable.CodeInvalidArgument},
		{"missing email", ManageStaffRequest{StoreID: "s1", Role: "staff"}, callable.CodeInvalidArgument},
		{"bad role", ManageStaffRequest{StoreID: "s1", Email: "a@b.c", Role: "admin"}, callable.CodeInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ManageStaffAccount(ctx, owner, tc.req)
			var ce *callable.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.code, ce.Code)
		})
	}

	_, err := svc.ManageStaffAccount(ctx, staff, ManageStaffRequest{StoreID: "s1", Email: "a@b.c", Role: "staff"})
	var ce *callable.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, callable.CodePermissionDenied, ce.Code)
}
