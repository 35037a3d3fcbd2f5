package billing

import "strings"

// PlanID identifies a Sedifex subscription plan.
type PlanID string

const (
	PlanStarter    PlanID = "starter"
	PlanPro        PlanID = "pro"
	PlanEnterprise PlanID = "enterprise"
)

// Plan is one entry of the plan catalog: the billable facts plus the
// marketing copy the pricing page renders.
type Plan struct {
	ID              PlanID   `json:"id"`
	Name            string   `json:"name"`
	MonthlyGHS      int      `json:"monthly_ghs"`
	BillingFeatures []string `json:"billing_features"`
	Badge           string   `json:"badge,omitempty"`
	Highlight       bool     `json:"highlight,omitempty"`
	Description     string   `json:"description"`
	Features        []string `json:"features"`
}

var catalog = []Plan{
	{
		ID:              PlanStarter,
		Name:            "Starter",
		MonthlyGHS:      99,
		BillingFeatures: []string{"Up to 1,000 SKUs", "Single location", "Email support"},
		Badge:           "Best for single stores",
		Description:     "Kick off with a lightweight workspace for owner-operators.",
		Features: []string{
			"Up to 1,000 SKUs",
			"Single location",
			"Owner access + 2 staff accounts",
			"Core inventory workflows",
		},
	},
	{
		ID:         PlanPro,
		Name:       "Pro",
		MonthlyGHS: 249,
		BillingFeatures: []string{
			"Up to 10,000 SKUs",
			"Multi-location",
			"Priority email + chat support",
		},
		Badge:       "Most popular",
		Highlight:   true,
		Description: "Grow into multi-store ops with team workflows and support.",
		Features: []string{
			"Up to 10,000 SKUs",
			"Multi-location",
			"10 staff accounts included",
			"Priority support",
		},
	},
	{
		ID:         PlanEnterprise,
		Name:       "Enterprise",
		MonthlyGHS: 499,
		BillingFeatures: []string{
			"Unlimited SKUs",
			"Multi-location + advanced roles",
			"Dedicated success manager",
		},
		Description: "Scale a nationwide fleet with advanced controls and limits.",
		Features: []string{
			"Unlimited SKUs",
			"Unlimited stores & users",
			"Advanced roles & approvals",
			"Dedicated success manager",
		},
	},
}

// Plans returns the catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// PlanByID looks a plan up by its normalized id.
func PlanByID(id PlanID) (Plan, bool) {
	for _, plan := range catalog {
		if plan.ID == id {
			return plan, true
		}
	}
	return Plan{}, false
}

// NormalizePlanID maps arbitrary input to a known plan id. Unknown or blank
// values return ok=false; callers decide whether that is an error or a
// fallback to the default plan.
func NormalizePlanID(value string) (PlanID, bool) {
	candidate := PlanID(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := PlanByID(candidate); ok {
		return candidate, true
	}
	return "", false
}

// Config holds environment-level billing settings.
type Config struct {
	TrialDays int               `json:"trial_days"`
	PlanCodes map[PlanID]string `json:"plan_codes"`
}

// DefaultConfig mirrors the production billing configuration: a 14-day trial
// and per-plan Paystack plan codes filled in by deployment config.
func DefaultConfig() Config {
	return Config{
		TrialDays: 14,
		PlanCodes: map[PlanID]string{
			PlanStarter:    "",
			PlanPro:        "",
			PlanEnterprise: "",
		},
	}
}
