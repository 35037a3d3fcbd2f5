package team

import (
	"strings"
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

// Role is a member's access level within a store.
type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

// NormalizeRole maps arbitrary role input to a Role. Anything that is not
// recognizably "owner" — wrong case, stray whitespace, unknown values,
// non-strings upstream — defaults to staff, the least-privileged role.
func NormalizeRole(value string) Role {
	if strings.EqualFold(strings.TrimSpace(value), string(RoleOwner)) {
		return RoleOwner
	}
	return RoleStaff
}

// IsValidRole reports whether the raw value names a role exactly.
func IsValidRole(value string) bool {
	switch Role(value) {
	case RoleOwner, RoleStaff:
		return true
	}
	return false
}

// Membership links a user to a store with a role, plus the contact and audit
// fields the roster keeps alongside.
type Membership struct {
	UID              string    `json:"uid"`
	Email            string    `json:"email,omitempty"`
	Role             Role      `json:"role"`
	StoreID          string    `json:"store_id"`
	WorkspaceSlug    string    `json:"workspace_slug,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	InvitedBy        string    `json:"invited_by,omitempty"`
	FirstSignupEmail string    `json:"first_signup_email,omitempty"`
	Name             string    `json:"name,omitempty"`
	CompanyName      string    `json:"company_name,omitempty"`
	Country          string    `json:"country,omitempty"`
	Town             string    `json:"town,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// NormalizeMembership builds a Membership from an untyped roster document.
// Every field is coerced defensively; there is no partial-trust gap between
// the remote document and the typed entity.
func NormalizeMembership(id string, data map[string]interface{}) Membership {
	uid := docstore.OptionalString(data, "uid")
	if uid == "" {
		uid = id
	}
	return Membership{
		UID:              uid,
		Email:            docstore.OptionalEmail(data, "email"),
		Role:             NormalizeRole(docstore.OptionalString(data, "role")),
		StoreID:          docstore.OptionalString(data, "storeId"),
		WorkspaceSlug:    docstore.OptionalString(data, "workspaceSlug"),
		Phone:            docstore.OptionalString(data, "phone"),
		InvitedBy:        docstore.OptionalString(data, "invitedBy"),
		FirstSignupEmail: docstore.OptionalEmail(data, "firstSignupEmail"),
		Name:             docstore.OptionalString(data, "name"),
		CompanyName:      docstore.OptionalString(data, "companyName"),
		Country:          docstore.OptionalString(data, "country"),
		Town:             docstore.OptionalString(data, "town"),
		CreatedAt:        docstore.Time(data, "createdAt"),
		UpdatedAt:        docstore.Time(data, "updatedAt"),
	}
}

func (m Membership) toDoc(now time.Time) map[string]interface{} {
	doc := map[string]interface{}{
		"uid":       m.UID,
		"role":      string(m.Role),
		"storeId":   m.StoreID,
		"updatedAt": now,
	}
	setIfPresent := func(key, value string) {
		if value != "" {
			doc[key] = value
		}
	}
	setIfPresent("email", m.Email)
	setIfPresent("workspaceSlug", m.WorkspaceSlug)
	setIfPresent("phone", m.Phone)
	setIfPresent("invitedBy", m.InvitedBy)
	setIfPresent("firstSignupEmail", m.FirstSignupEmail)
	setIfPresent("name", m.Name)
	setIfPresent("companyName", m.CompanyName)
	setIfPresent("country", m.Country)
	setIfPresent("town", m.Town)
	return doc
}
