package payment

import (
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/modules/billing"
)

// Transaction statuses.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Transaction is one subscription checkout attempt.
type Transaction struct {
	Reference        string         `json:"reference"`
	StoreID          string         `json:"store_id"`
	PlanID           billing.PlanID `json:"plan_id"`
	Email            string         `json:"email"`
	AmountSubunits   int64          `json:"amount_subunits"`
	Currency         string         `json:"currency"`
	AuthorizationURL string         `json:"authorization_url,omitempty"`
	Status           string         `json:"status"`
	GatewayMessage   string         `json:"gateway_message,omitempty"`
	InitiatedBy      string         `json:"initiated_by"`
	CreatedAt        time.Time      `json:"created_at,omitempty"`
	UpdatedAt        time.Time      `json:"updated_at,omitempty"`
}

// NormalizeTransaction builds a Transaction from an untyped store document.
func NormalizeTransaction(id string, data map[string]interface{}) Transaction {
	planID, _ := billing.NormalizePlanID(docstore.OptionalString(data, "planId"))
	return Transaction{
		Reference:        id,
		StoreID:          docstore.OptionalString(data, "storeId"),
		PlanID:           planID,
		Email:            docstore.OptionalEmail(data, "email"),
		AmountSubunits:   int64(docstore.Number(data, "amountSubunits")),
		Currency:         docstore.OptionalString(data, "currency"),
		AuthorizationURL: docstore.OptionalString(data, "authorizationUrl"),
		Status:           normalizeStatus(docstore.OptionalString(data, "status")),
		GatewayMessage:   docstore.OptionalString(data, "gatewayMessage"),
		InitiatedBy:      docstore.OptionalString(data, "initiatedBy"),
		CreatedAt:        docstore.Time(data, "createdAt"),
		UpdatedAt:        docstore.Time(data, "updatedAt"),
	}
}

func normalizeStatus(status string) string {
	switch status {
	case StatusSuccess, StatusFailed:
		return status
	default:
		return StatusPending
	}
}

func (t Transaction) toDoc(now time.Time) map[string]interface{} {
	doc := map[string]interface{}{
		"storeId":        t.StoreID,
		"planId":         string(t.PlanID),
		"email":          t.Email,
		"amountSubunits": t.AmountSubunits,
		"currency":       t.Currency,
		"status":         t.Status,
		"initiatedBy":    t.InitiatedBy,
		"updatedAt":      now,
	}
	if t.AuthorizationURL != "" {
		doc["authorizationUrl"] = t.AuthorizationURL
	}
	if t.GatewayMessage != "" {
		doc["gatewayMessage"] = t.GatewayMessage
	}
	return doc
}
