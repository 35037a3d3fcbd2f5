package customer

import (
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

// Customer is one store customer record.
type Customer struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NormalizeCustomer builds a Customer from an untyped store document.
func NormalizeCustomer(id string, data map[string]interface{}) Customer {
	return Customer{
		ID:        id,
		StoreID:   docstore.OptionalString(data, "storeId"),
		Name:      docstore.OptionalString(data, "name"),
		Phone:     docstore.OptionalString(data, "phone"),
		Email:     docstore.OptionalEmail(data, "email"),
		Notes:     docstore.OptionalString(data, "notes"),
		CreatedAt: docstore.Time(data, "createdAt"),
		UpdatedAt: docstore.Time(data, "updatedAt"),
	}
}

func (c Customer) toDoc(now time.Time) map[string]interface{} {
	doc := map[string]interface{}{
		"storeId":   c.StoreID,
		"name":      c.Name,
		"updatedAt": now,
	}
	if c.Phone != "" {
		doc["phone"] = c.Phone
	}
	if c.Email != "" {
		doc["email"] = c.Email
	}
	if c.Notes != "" {
		doc["notes"] = c.Notes
	}
	return doc
}
