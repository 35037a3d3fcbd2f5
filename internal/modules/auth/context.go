package auth

import (
	"strings"

	"github.com/sedifex/sedifex-backend/internal/callable"
)

// Context carries the authenticated caller of a callable request: the uid
// plus the decoded token claims.
type Context struct {
	UID   string
	Token map[string]interface{}
}

// Valid roles a token may carry.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// RoleFromToken extracts the caller's role claim, or "" when the claim is
// missing or not a recognized role.
func RoleFromToken(token map[string]interface{}) string {
	raw, _ := token["role"].(string)
	role := strings.ToLower(strings.TrimSpace(raw))
	if role == RoleOwner || role == RoleStaff {
		return role
	}
	return ""
}

// RequireAuthenticated fails with an unauthenticated callable error when no
// caller context is present.
func RequireAuthenticated(caller *Context) error {
	if caller == nil || caller.UID == "" {
		return callable.New(callable.CodeUnauthenticated, "Login required")
	}
	return nil
}

// RequireStaff allows any caller holding a recognized role.
func RequireStaff(caller *Context) error {
	if err := RequireAuthenticated(caller); err != nil {
		return err
	}
	if RoleFromToken(caller.Token) == "" {
		return callable.New(callable.CodePermissionDenied, "Staff access required")
	}
	return nil
}

// RequireOwner allows owners only.
func RequireOwner(caller *Context) error {
	if err := RequireAuthenticated(caller); err != nil {
		return err
	}
	if RoleFromToken(caller.Token) != RoleOwner {
		return callable.New(callable.CodePermissionDenied, "Owner access required")
	}
	return nil
}
