package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
	"github.com/sedifex/sedifex-backend/internal/modules/billing"
	"github.com/sedifex/sedifex-backend/internal/modules/team"
)

const (
	storesCollection     = "stores"
	workspacesCollection = "workspaces"
	membersCollection    = "teamMembers"
)

// Service defines workspace bootstrap and access-resolution logic.
type Service interface {
	// InitializeStore provisions (or tops up) the caller's store, workspace
	// and owner membership. Idempotent: re-running merges instead of
	// overwriting, and never shortens an existing contract window.
	InitializeStore(ctx context.Context, caller *auth.Context, req InitializeStoreRequest) (*InitializeStoreResponse, error)
	// ResolveStoreAccess looks up the caller's membership and store and
	// refreshes their role claims, rejecting inactive workspaces.
	ResolveStoreAccess(ctx context.Context, caller *auth.Context) (*ResolveAccessResponse, error)
	// ActivateSubscription records a confirmed paid subscription on the
	// store and its workspace.
	ActivateSubscription(ctx context.Context, storeID string, planID billing.PlanID) error
}

// InitializeStoreRequest is the payload for the store bootstrap callable.
type InitializeStoreRequest struct {
	PlanID  string   `json:"plan_id,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
}

// InitializeStoreResponse reports the provisioned workspace.
type InitializeStoreResponse struct {
	OK            bool                   `json:"ok"`
	StoreID       string                 `json:"store_id"`
	WorkspaceSlug string                 `json:"workspace_slug"`
	Claims        map[string]interface{} `json:"claims"`
	Store         Store                  `json:"store"`
	Membership    team.Membership        `json:"membership"`
}

// ResolveAccessResponse reports the caller's resolved store access.
type ResolveAccessResponse struct {
	OK            bool                   `json:"ok"`
	StoreID       string                 `json:"store_id"`
	WorkspaceSlug string                 `json:"workspace_slug"`
	Claims        map[string]interface{} `json:"claims"`
	Store         Store                  `json:"store"`
	Membership    team.Membership        `json:"membership"`
}

type service struct {
	// rosterDB holds the membership roster; defaultDB holds stores,
	// workspaces, and a mirror of the roster. Deployments may point both at
	// the same backend.
	rosterDB  docstore.Store
	defaultDB docstore.Store
	directory auth.Directory
	config    billing.Config
	now       func() time.Time
}

// NewService creates a new store service.
func NewService(rosterDB, defaultDB docstore.Store, directory auth.Directory, config billing.Config) Service {
	return &service{
		rosterDB:  rosterDB,
		defaultDB: defaultDB,
		directory: directory,
		config:    config,
		now:       time.Now,
	}
}

func (s *service) InitializeStore(ctx context.Context, caller *auth.Context, req InitializeStoreRequest) (*InitializeStoreResponse, error) {
	if err := auth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}

	uid := caller.UID
	tokenEmail := strings.ToLower(docstore.OptionalString(caller.Token, "email"))
	tokenPhone := docstore.OptionalString(caller.Token, "phone_number")

	requestedPlan, ok := billing.NormalizePlanID(req.PlanID)
	if req.PlanID != "" && !ok {
		return nil, callable.New(callable.CodeInvalidArgument, "Choose a valid Sedifex plan.")
	}

	contact := req.Contact
	resolvedPhone := tokenPhone
	if contact != nil && contact.Phone != nil {
		resolvedPhone = strings.TrimSpace(*contact.Phone)
	}
	resolvedFirstSignupEmail := tokenEmail
	if contact != nil && contact.FirstSignupEmail != nil {
		resolvedFirstSignupEmail = strings.ToLower(strings.TrimSpace(*contact.FirstSignupEmail))
	}
	var ownerName, businessName, country, town, signupRole string
	if contact != nil {
		if contact.OwnerName != nil {
			ownerName = strings.TrimSpace(*contact.OwnerName)
		}
		if contact.BusinessName != nil {
			businessName = strings.TrimSpace(*contact.BusinessName)
		}
		if contact.Country != nil {
			country = strings.TrimSpace(*contact.Country)
		}
		if contact.Town != nil {
			town = strings.TrimSpace(*contact.Town)
		}
		if contact.SignupRole != nil {
			signupRole = NormalizeSignupRole(*contact.SignupRole)
		}
	}

	memberDoc, memberExists, err := s.rosterDB.Get(ctx, membersCollection, uid)
	if err != nil {
		return nil, fmt.Errorf("read membership: %w", err)
	}
	storeID := docstore.OptionalString(memberDoc.Data, "storeId")
	if storeID == "" {
		storeID = uid
	}

	storeDoc, storeExists, err := s.defaultDB.Get(ctx, storesCollection, storeID)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	workspaceSlug := docstore.OptionalString(storeDoc.Data, "workspaceSlug")
	if workspaceSlug == "" {
		workspaceSlug = docstore.OptionalString(storeDoc.Data, "slug")
	}
	if workspaceSlug == "" {
		workspaceSlug = docstore.OptionalString(storeDoc.Data, "storeSlug")
	}
	workspaceSlug = NormalizeWorkspaceSlug(workspaceSlug, storeID)

	workspaceDoc, workspaceExists, err := s.defaultDB.Get(ctx, workspacesCollection, workspaceSlug)
	if err != nil {
		return nil, fmt.Errorf("read workspace: %w", err)
	}

	existingBilling := docstore.Map(storeDoc.Data, "billing")
	planID, ok := billing.NormalizePlanID(docstore.OptionalString(existingBilling, "planId"))
	if !ok {
		planID, ok = billing.NormalizePlanID(docstore.OptionalString(storeDoc.Data, "planId"))
	}
	if requestedPlan != "" {
		planID = requestedPlan
	} else if !ok {
		planID = billing.PlanStarter
	}

	now := s.now().UTC()
	contractStart := docstore.Time(storeDoc.Data, "contractStart")
	if contractStart.IsZero() {
		contractStart = now
	}
	contractEnd := docstore.Time(storeDoc.Data, "contractEnd")
	if contractEnd.IsZero() {
		trialDays := s.config.TrialDays
		if trialDays < 0 {
			trialDays = 0
		}
		contractEnd = contractStart.Add(time.Duration(trialDays) * 24 * time.Hour)
	}

	memberData := map[string]interface{}{
		"uid":           uid,
		"role":          string(team.RoleOwner),
		"storeId":       storeID,
		"invitedBy":     uid,
		"workspaceSlug": workspaceSlug,
		"updatedAt":     now,
	}
	if tokenEmail != "" {
		memberData["email"] = tokenEmail
	}
	if resolvedPhone != "" {
		memberData["phone"] = resolvedPhone
	}
	if resolvedFirstSignupEmail != "" {
		memberData["firstSignupEmail"] = resolvedFirstSignupEmail
	}
	if ownerName != "" {
		memberData["name"] = ownerName
	}
	if businessName != "" {
		memberData["companyName"] = businessName
	}
	if country != "" {
		memberData["country"] = country
	}
	if town != "" {
		memberData["town"] = town
	}
	if signupRole != "" {
		memberData["signupRole"] = signupRole
	}

	if err := s.writeMemberDocs(ctx, uid, tokenEmail, memberExists, memberData, now); err != nil {
		return nil, err
	}

	billingDetails := map[string]interface{}{}
	for key, value := range existingBilling {
		billingDetails[key] = value
	}
	billingDetails["planId"] = string(planID)
	if docstore.OptionalString(billingDetails, "provider") == "" {
		billingDetails["provider"] = "paystack"
	}
	if docstore.OptionalString(billingDetails, "status") == "" {
		billingDetails["status"] = "trial"
	}
	if docstore.Time(billingDetails, "trialEndsAt").IsZero() {
		billingDetails["trialEndsAt"] = contractEnd
	}

	storeData := map[string]interface{}{
		"ownerId":       uid,
		"updatedAt":     now,
		"workspaceSlug": workspaceSlug,
		"billing":       billingDetails,
		"contractStart": contractStart,
		"contractEnd":   contractEnd,
	}
	if status := docstore.OptionalString(storeDoc.Data, "status"); status != "" {
		storeData["status"] = status
	} else {
		storeData["status"] = "Active"
	}
	if status := docstore.OptionalString(storeDoc.Data, "contractStatus"); status != "" {
		storeData["contractStatus"] = status
	} else {
		storeData["contractStatus"] = "Active"
	}
	if summary := docstore.Map(storeDoc.Data, "inventorySummary"); summary != nil {
		storeData["inventorySummary"] = summary
	} else {
		storeData["inventorySummary"] = map[string]interface{}{
			"trackedSkus":       0,
			"lowStockSkus":      0,
			"incomingShipments": 0,
		}
	}
	if tokenEmail != "" {
		storeData["ownerEmail"] = tokenEmail
	}
	if ownerName != "" {
		storeData["ownerName"] = ownerName
	}
	if businessName != "" {
		storeData["displayName"] = businessName
		storeData["businessName"] = businessName
	}
	if country != "" {
		storeData["country"] = country
	}
	if town != "" {
		storeData["town"] = town
	}
	if resolvedPhone != "" {
		storeData["ownerPhone"] = resolvedPhone
	}
	if !storeExists {
		storeData["createdAt"] = now
	}
	if err := s.defaultDB.Set(ctx, storesCollection, storeID, storeData, true); err != nil {
		return nil, fmt.Errorf("write store: %w", err)
	}

	workspaceData := map[string]interface{}{
		"slug":          workspaceSlug,
		"storeId":       storeID,
		"ownerId":       uid,
		"updatedAt":     now,
		"planId":        string(planID),
		"contractStart": contractStart,
		"contractEnd":   contractEnd,
	}
	if !workspaceExists {
		workspaceData["createdAt"] = now
	}
	if tokenEmail != "" {
		workspaceData["ownerEmail"] = tokenEmail
	}
	if resolvedPhone != "" {
		workspaceData["ownerPhone"] = resolvedPhone
	}
	if ownerName != "" {
		workspaceData["ownerName"] = ownerName
	}
	if businessName != "" {
		workspaceData["company"] = businessName
		workspaceData["displayName"] = businessName
	}
	if country != "" {
		workspaceData["country"] = country
	}
	if town != "" {
		workspaceData["town"] = town
	}
	if resolvedFirstSignupEmail != "" {
		workspaceData["firstSignupEmail"] = resolvedFirstSignupEmail
	}
	if status := docstore.OptionalString(workspaceDoc.Data, "status"); status != "" {
		workspaceData["status"] = status
	} else {
		workspaceData["status"] = "active"
	}
	if status := docstore.OptionalString(workspaceDoc.Data, "contractStatus"); status != "" {
		workspaceData["contractStatus"] = status
	} else {
		workspaceData["contractStatus"] = "active"
	}
	if status := docstore.OptionalString(workspaceDoc.Data, "paymentStatus"); status != "" {
		workspaceData["paymentStatus"] = status
	} else {
		workspaceData["paymentStatus"] = "trial"
	}
	if err := s.defaultDB.Set(ctx, workspacesCollection, workspaceSlug, workspaceData, true); err != nil {
		return nil, fmt.Errorf("write workspace: %w", err)
	}

	claims, err := team.RefreshClaims(ctx, s.directory, uid, team.RoleOwner)
	if err != nil {
		return nil, err
	}

	storeDoc, _, err = s.defaultDB.Get(ctx, storesCollection, storeID)
	if err != nil {
		return nil, fmt.Errorf("re-read store: %w", err)
	}
	return &InitializeStoreResponse{
		OK:            true,
		StoreID:       storeID,
		WorkspaceSlug: workspaceSlug,
		Claims:        claims,
		Store:         NormalizeStore(storeID, storeDoc.Data),
		Membership:    team.NormalizeMembership(uid, memberData),
	}, nil
}

func (s *service) ResolveStoreAccess(ctx context.Context, caller *auth.Context) (*ResolveAccessResponse, error) {
	if err := auth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}

	memberDoc, memberExists, err := s.rosterDB.Get(ctx, membersCollection, caller.UID)
	if err != nil {
		return nil, fmt.Errorf("read membership: %w", err)
	}
	if !memberExists {
		return nil, callable.New(callable.CodePermissionDenied,
			"We could not find a workspace assignment for this account. Reach out to your Sedifex administrator.")
	}
	membership := team.NormalizeMembership(caller.UID, memberDoc.Data)

	storeID := membership.StoreID
	if storeID == "" {
		storeID = caller.UID
	}
	workspaceSlug := NormalizeWorkspaceSlug(membership.WorkspaceSlug, storeID)

	storeDoc, storeExists, err := s.defaultDB.Get(ctx, storesCollection, storeID)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if !storeExists {
		return nil, callable.New(callable.CodeFailedPrecondition,
			"We could not locate the Sedifex workspace configuration for this store. Reach out to your Sedifex administrator.")
	}

	status := docstore.OptionalString(storeDoc.Data, "status")
	if status == "" {
		status = docstore.OptionalString(storeDoc.Data, "contractStatus")
	}
	if billing.IsInactiveContractStatus(status) {
		return nil, callable.New(callable.CodePermissionDenied, billing.InactiveWorkspaceMessage)
	}

	claims, err := team.RefreshClaims(ctx, s.directory, caller.UID, membership.Role)
	if err != nil {
		return nil, err
	}

	return &ResolveAccessResponse{
		OK:            true,
		StoreID:       storeID,
		WorkspaceSlug: workspaceSlug,
		Claims:        claims,
		Store:         NormalizeStore(storeID, storeDoc.Data),
		Membership:    membership,
	}, nil
}

func (s *service) ActivateSubscription(ctx context.Context, storeID string, planID billing.PlanID) error {
	now := s.now().UTC()
	storeDoc, storeExists, err := s.defaultDB.Get(ctx, storesCollection, storeID)
	if err != nil {
		return fmt.Errorf("read store: %w", err)
	}
	if !storeExists {
		return fmt.Errorf("store %s does not exist", storeID)
	}

	billingDetails := map[string]interface{}{}
	for key, value := range docstore.Map(storeDoc.Data, "billing") {
		billingDetails[key] = value
	}
	billingDetails["planId"] = string(planID)
	billingDetails["provider"] = "paystack"
	billingDetails["status"] = "active"
	billingDetails["activatedAt"] = now

	err = s.defaultDB.Set(ctx, storesCollection, storeID, map[string]interface{}{
		"billing":        billingDetails,
		"status":         "Active",
		"contractStatus": "Active",
		"updatedAt":      now,
	}, true)
	if err != nil {
		return fmt.Errorf("write store billing: %w", err)
	}

	workspaceSlug := NormalizeWorkspaceSlug(docstore.OptionalString(storeDoc.Data, "workspaceSlug"), storeID)
	err = s.defaultDB.Set(ctx, workspacesCollection, workspaceSlug, map[string]interface{}{
		"planId":         string(planID),
		"contractStatus": "active",
		"paymentStatus":  "paid",
		"updatedAt":      now,
	}, true)
	if err != nil {
		return fmt.Errorf("write workspace billing: %w", err)
	}
	return nil
}

// writeMemberDocs writes the uid-keyed roster doc, its mirror in the default
// database, and an email-keyed roster doc when the owner has an email.
func (s *service) writeMemberDocs(ctx context.Context, uid, email string, memberExists bool, memberData map[string]interface{}, now time.Time) error {
	rosterData := cloneDoc(memberData)
	if !memberExists {
		rosterData["createdAt"] = now
	}
	if err := s.rosterDB.Set(ctx, membersCollection, uid, rosterData, true); err != nil {
		return fmt.Errorf("write roster membership: %w", err)
	}

	_, defaultExists, err := s.defaultDB.Get(ctx, membersCollection, uid)
	if err != nil {
		return fmt.Errorf("read default membership: %w", err)
	}
	defaultData := cloneDoc(memberData)
	if !defaultExists {
		defaultData["createdAt"] = now
	}
	if err := s.defaultDB.Set(ctx, membersCollection, uid, defaultData, true); err != nil {
		return fmt.Errorf("write default membership: %w", err)
	}

	if email == "" {
		return nil
	}
	_, mirrorExists, err := s.rosterDB.Get(ctx, membersCollection, email)
	if err != nil {
		return fmt.Errorf("read roster email mirror: %w", err)
	}
	mirrorData := cloneDoc(memberData)
	if !mirrorExists {
		mirrorData["createdAt"] = now
	}
	if err := s.rosterDB.Set(ctx, membersCollection, email, mirrorData, true); err != nil {
		return fmt.Errorf("write roster email mirror: %w", err)
	}
	return nil
}

func cloneDoc(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		out[key] = value
	}
	return out
}
