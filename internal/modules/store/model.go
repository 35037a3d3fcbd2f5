package store

import (
	"strings"
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/modules/billing"
)

// Store is a Sedifex workspace tenant: one shop (or shop network) with its
// contract and billing state.
type Store struct {
	ID               string           `json:"id"`
	OwnerID          string           `json:"owner_id"`
	OwnerEmail       string           `json:"owner_email,omitempty"`
	OwnerName        string           `json:"owner_name,omitempty"`
	OwnerPhone       string           `json:"owner_phone,omitempty"`
	DisplayName      string           `json:"display_name,omitempty"`
	Country          string           `json:"country,omitempty"`
	Town             string           `json:"town,omitempty"`
	Status           string           `json:"status"`
	ContractStatus   string           `json:"contract_status"`
	WorkspaceSlug    string           `json:"workspace_slug"`
	Billing          BillingDetails   `json:"billing"`
	InventorySummary InventorySummary `json:"inventory_summary"`
	ContractStart    time.Time        `json:"contract_start,omitempty"`
	ContractEnd      time.Time        `json:"contract_end,omitempty"`
	CreatedAt        time.Time        `json:"created_at,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at,omitempty"`
}

// BillingDetails is the billing block embedded in a store document.
type BillingDetails struct {
	PlanID      billing.PlanID `json:"plan_id"`
	Provider    string         `json:"provider"`
	Status      string         `json:"status"`
	TrialEndsAt time.Time      `json:"trial_ends_at,omitempty"`
}

// InventorySummary is the denormalized inventory rollup shown on the store
// dashboard.
type InventorySummary struct {
	TrackedSKUs       int `json:"trackedSkus"`
	LowStockSKUs      int `json:"lowStockSkus"`
	IncomingShipments int `json:"incomingShipments"`
}

// NormalizeStore builds a Store from an untyped store document.
func NormalizeStore(id string, data map[string]interface{}) Store {
	billingData := docstore.Map(data, "billing")
	planID, ok := billing.NormalizePlanID(docstore.OptionalString(billingData, "planId"))
	if !ok {
		planID, ok = billing.NormalizePlanID(docstore.OptionalString(data, "planId"))
	}
	if !ok {
		planID = billing.PlanStarter
	}
	summary := docstore.Map(data, "inventorySummary")
	return Store{
		ID:             id,
		OwnerID:        docstore.OptionalString(data, "ownerId"),
		OwnerEmail:     docstore.OptionalEmail(data, "ownerEmail"),
		OwnerName:      docstore.OptionalString(data, "ownerName"),
		OwnerPhone:     docstore.OptionalString(data, "ownerPhone"),
		DisplayName:    docstore.OptionalString(data, "displayName"),
		Country:        docstore.OptionalString(data, "country"),
		Town:           docstore.OptionalString(data, "town"),
		Status:         docstore.OptionalString(data, "status"),
		ContractStatus: docstore.OptionalString(data, "contractStatus"),
		WorkspaceSlug:  NormalizeWorkspaceSlug(docstore.OptionalString(data, "workspaceSlug"), id),
		Billing: BillingDetails{
			PlanID:      planID,
			Provider:    docstore.OptionalString(billingData, "provider"),
			Status:      docstore.OptionalString(billingData, "status"),
			TrialEndsAt: docstore.Time(billingData, "trialEndsAt"),
		},
		InventorySummary: InventorySummary{
			TrackedSKUs:       int(docstore.Number(summary, "trackedSkus")),
			LowStockSKUs:      int(docstore.Number(summary, "lowStockSkus")),
			IncomingShipments: int(docstore.Number(summary, "incomingShipments")),
		},
		ContractStart: docstore.Time(data, "contractStart"),
		ContractEnd:   docstore.Time(data, "contractEnd"),
		CreatedAt:     docstore.Time(data, "createdAt"),
		UpdatedAt:     docstore.Time(data, "updatedAt"),
	}
}

// NormalizeWorkspaceSlug returns the trimmed slug, or fallback when blank.
func NormalizeWorkspaceSlug(value, fallback string) string {
	if candidate := strings.TrimSpace(value); candidate != "" {
		return candidate
	}
	return fallback
}

// Contact carries the optional signup contact details. Pointer fields
// distinguish "not provided" from "provided empty": a provided empty value
// clears the stored one.
type Contact struct {
	Phone            *string `json:"phone,omitempty"`
	FirstSignupEmail *string `json:"firstSignupEmail,omitempty"`
	OwnerName        *string `json:"ownerName,omitempty"`
	BusinessName     *string `json:"businessName,omitempty"`
	Country          *string `json:"country,omitempty"`
	Town             *string `json:"town,omitempty"`
	SignupRole       *string `json:"signupRole,omitempty"`
}

// NormalizeSignupRole collapses signup role spellings to "owner" or
// "team-member"; anything else is dropped.
func NormalizeSignupRole(value string) string {
	normalized := strings.TrimSpace(strings.ToLower(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	switch normalized {
	case "owner":
		return "owner"
	case "team-member", "team":
		return "team-member"
	}
	return ""
}
