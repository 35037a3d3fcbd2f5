package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestHS256VerifierRoundTrip(t *testing.T) {
	verifier := NewHS256Verifier("test-secret")
	signed := signToken(t, "test-secret", jwt.MapClaims{
		"sub":  "user_1",
		"role": "owner",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	caller, err := verifier.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "user_1", caller.UID)
	assert.Equal(t, "owner", RoleFromToken(caller.Token))
}

func TestHS256VerifierRejectsBadSignature(t *testing.T) {
	verifier := NewHS256Verifier("right-secret")
	signed := signToken(t, "wrong-secret", jwt.MapClaims{"sub": "user_1"})

	_, err := verifier.Verify(context.Background(), signed)
	assert.Error(t, err)
}

func TestRoleGuards(t *testing.T) {
	owner := &Context{UID: "u1", Token: map[string]interface{}{"role": "Owner"}}
	staff := &Context{UID: "u2", Token: map[string]interface{}{"role": "staff"}}
	noRole := &Context{UID: "u3", Token: map[string]interface{}{}}

	assert.NoError(t, RequireOwner(owner))
	assert.Error(t, RequireOwner(staff))
	assert.Error(t, RequireOwner(noRole))
	assert.Error(t, RequireOwner(nil))

	assert.NoError(t, RequireStaff(owner))
	assert.NoError(t, RequireStaff(staff))
	assert.Error(t, RequireStaff(noRole))

	assert.NoError(t, RequireAuthenticated(noRole))
	assert.Error(t, RequireAuthenticated(nil))
}

func TestMiddlewareAttachesCaller(t *testing.T) {
	verifier := NewHS256Verifier("secret")
	signed := signToken(t, "secret", jwt.MapClaims{"sub": "user_9", "role": "staff"})

	var seen *Context
	handler := Middleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CallerFromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, "user_9", seen.UID)

	seen = nil
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, seen)
}

func TestMemoryDirectoryEnsureUser(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryDirectory()

	record, created, err := directory.EnsureUser(ctx, "Staff@Example.com", "pass1234")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "staff@example.com", record.Email)

	again, created, err := directory.EnsureUser(ctx, "staff@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, record.UID, again.UID)

	_, _, err = directory.EnsureUser(ctx, "nobody@example.com", "")
	assert.Error(t, err)

	require.NoError(t, directory.SetCustomClaims(ctx, record.UID, map[string]interface{}{"role": "staff"}))
	got, ok, err := directory.GetUser(ctx, record.UID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "staff", got.Claims["role"])
}
