package team

import (
	"context"
	"fmt"
	"strings"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
)

// Service defines team roster business logic.
type Service interface {
	// ManageStaffAccount provisions or updates a staff login and its roster
	// membership. Owner-only.
	ManageStaffAccount(ctx context.Context, caller *auth.Context, req ManageStaffRequest) (*ManageStaffResponse, error)
	ListMemberships(ctx context.Context, uid string) ([]Membership, error)
	ListStoreMembers(ctx context.Context, caller *auth.Context, storeID string) ([]Membership, error)
}

// ManageStaffRequest is the payload for provisioning a staff account.
type ManageStaffRequest struct {
	StoreID  string `json:"store_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

// ManageStaffResponse reports the provisioned account.
type ManageStaffResponse struct {
	OK      bool                   `json:"ok"`
	UID     string                 `json:"uid"`
	Email   string                 `json:"email"`
	Role    Role                   `json:"role"`
	StoreID string                 `json:"store_id"`
	Created bool                   `json:"created"`
	Claims  map[string]interface{} `json:"claims"`
}

type service struct {
	repo      Repository
	directory auth.Directory
}

// NewService creates a new team service.
func NewService(repo Repository, directory auth.Directory) Service {
	return &service{repo: repo, directory: directory}
}

func (s *service) ManageStaffAccount(ctx context.Context, caller *auth.Context, req ManageStaffRequest) (*ManageStaffResponse, error) {
	if err := auth.RequireOwner(caller); err != nil {
		return nil, err
	}

	storeID := strings.TrimSpace(req.StoreID)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.TrimSpace(req.Role)
	if storeID == "" {
		return nil, callable.New(callable.CodeInvalidArgument, "A storeId is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, callable.New(callable.CodeInvalidArgument, "A valid email is required")
	}
	if role == "" {
		return nil, callable.New(callable.CodeInvalidArgument, "A role is required")
	}
	if !IsValidRole(role) {
		return nil, callable.New(callable.CodeInvalidArgument, "Unsupported role requested")
	}

	record, created, err := s.directory.EnsureUser(ctx, email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("ensure staff account: %w", err)
	}

	membership := Membership{
		UID:       record.UID,
		Email:     email,
		Role:      Role(role),
		StoreID:   storeID,
		InvitedBy: caller.UID,
	}
	if err := s.repo.Upsert(ctx, membership); err != nil {
		return nil, fmt.Errorf("write membership: %w", err)
	}

	claims, err := s.refreshClaims(ctx, record.UID, Role(role))
	if err != nil {
		return nil, err
	}

	return &ManageStaffResponse{
		OK:      true,
		UID:     record.UID,
		Email:   email,
		Role:    Role(role),
		StoreID: storeID,
		Created: created,
		Claims:  claims,
	}, nil
}

func (s *service) ListMemberships(ctx context.Context, uid string) ([]Membership, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, callable.New(callable.CodeInvalidArgument, "A uid is required")
	}
	return s.repo.ListByUser(ctx, uid)
}

func (s *service) ListStoreMembers(ctx context.Context, caller *auth.Context, storeID string) ([]Membership, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(storeID) == "" {
		return nil, callable.New(callable.CodeInvalidArgument, "A storeId is required")
	}
	return s.repo.ListByStore(ctx, storeID)
}

// refreshClaims rewrites the account's role claim and drops legacy
// store-scoped claim keys older clients wrote.
func (s *service) refreshClaims(ctx context.Context, uid string, role Role) (map[string]interface{}, error) {
	record, _, err := s.directory.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	claims := make(map[string]interface{}, len(record.Claims)+1)
	for key, value := range record.Claims {
		claims[key] = value
	}
	claims["role"] = string(role)
	for _, stale := range []string{"stores", "activeStoreId", "storeId", "roleByStore"} {
		delete(claims, stale)
	}
	if err := s.directory.SetCustomClaims(ctx, uid, claims); err != nil {
		return nil, fmt.Errorf("set claims: %w", err)
	}
	return claims, nil
}

// RefreshClaims exposes the claim rewrite for the store-access callable.
func RefreshClaims(ctx context.Context, directory auth.Directory, uid string, role Role) (map[string]interface{}, error) {
	return (&service{directory: directory}).refreshClaims(ctx, uid, role)
}
