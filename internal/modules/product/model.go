package product

import (
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

// Product is one inventory item of a store.
type Product struct {
	ID               string    `json:"id"`
	StoreID          string    `json:"store_id"`
	ClientID         string    `json:"client_id,omitempty"`
	Name             string    `json:"name"`
	SKU              string    `json:"sku,omitempty"`
	Price            *float64  `json:"price"`
	ReorderThreshold *float64  `json:"reorder_threshold"`
	StockCount       *float64  `json:"stock_count"`
	Pending          bool      `json:"pending,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// NormalizeProduct builds a Product from an untyped store document.
func NormalizeProduct(id string, data map[string]interface{}) Product {
	return Product{
		ID:               id,
		StoreID:          docstore.OptionalString(data, "storeId"),
		ClientID:         docstore.OptionalString(data, "clientId"),
		Name:             docstore.OptionalString(data, "name"),
		SKU:              docstore.OptionalString(data, "sku"),
		Price:            docstore.OptionalNumber(data, "price"),
		ReorderThreshold: docstore.OptionalNumber(data, "reorderThreshold"),
		StockCount:       docstore.OptionalNumber(data, "stockCount"),
		CreatedAt:        docstore.Time(data, "createdAt"),
		UpdatedAt:        docstore.Time(data, "updatedAt"),
	}
}

func (p Product) toDoc(now time.Time) map[string]interface{} {
	doc := map[string]interface{}{
		"storeId":          p.StoreID,
		"name":             p.Name,
		"sku":              p.SKU,
		"price":            numberOrNil(p.Price),
		"reorderThreshold": numberOrNil(p.ReorderThreshold),
		"stockCount":       numberOrNil(p.StockCount),
		"updatedAt":        now,
	}
	if p.ClientID != "" {
		doc["clientId"] = p.ClientID
	}
	if !p.CreatedAt.IsZero() {
		doc["createdAt"] = p.CreatedAt
	}
	return doc
}

func numberOrNil(value *float64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
