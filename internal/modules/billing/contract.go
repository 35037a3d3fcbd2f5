package billing

import "strings"

var inactiveTokens = map[string]struct{}{
	"inactive":    {},
	"terminated":  {},
	"termination": {},
	"cancelled":   {},
	"canceled":    {},
	"suspended":   {},
	"paused":      {},
	"hold":        {},
	"closed":      {},
	"ended":       {},
	"deactivated": {},
	"disabled":    {},
}

// IsInactiveContractStatus reports whether a workspace contract status string
// means the workspace should be locked out. Statuses arrive in many spellings
// ("Suspended", "on-hold", "contract_ended"), so the check tokenizes on
// hyphens and underscores and matches any inactive token.
func IsInactiveContractStatus(status string) bool {
	if status == "" {
		return false
	}
	normalized := strings.ReplaceAll(strings.ToLower(status), "_", "-")
	for _, token := range strings.Split(normalized, "-") {
		if token == "" {
			continue
		}
		if _, ok := inactiveTokens[token]; ok {
			return true
		}
	}
	return false
}

// InactiveWorkspaceMessage is the user-safe message returned when a caller
// hits a workspace whose contract is no longer active.
const InactiveWorkspaceMessage = "This workspace is currently inactive. Reach out to your Sedifex administrator to restore access."
