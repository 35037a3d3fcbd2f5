package pendingops

import "time"

// Kind discriminates the pending operation union.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
)

// Create is a product create awaiting remote confirmation. ClientID is the
// client-generated idempotency key; the server assigns the canonical id when
// the create lands.
type Create struct {
	ClientID         string   `json:"clientId"`
	Name             string   `json:"name"`
	SKU              string   `json:"sku"`
	Price            *float64 `json:"price"`
	ReorderThreshold *float64 `json:"reorderThreshold"`
	StockCount       *float64 `json:"stockCount"`
}

// Update is a product edit awaiting remote confirmation. ProductID may still
// be a client id when the matching create has not confirmed yet.
type Update struct {
	ProductID        string   `json:"productId"`
	Name             string   `json:"name"`
	SKU              string   `json:"sku"`
	Price            *float64 `json:"price"`
	ReorderThreshold *float64 `json:"reorderThreshold"`
	Previous         Snapshot `json:"previous"`
}

// Snapshot is the pre-edit state kept with an update for conflict display.
type Snapshot struct {
	Name             string   `json:"name"`
	SKU              string   `json:"sku"`
	Price            *float64 `json:"price"`
	ReorderThreshold *float64 `json:"reorderThreshold"`
}

// Operation is one queued mutation. Exactly one of Create/Update is set,
// matching Kind.
type Operation struct {
	Kind      Kind      `json:"kind"`
	StoreID   string    `json:"storeId"`
	CreatedAt time.Time `json:"createdAt"`
	Create    *Create   `json:"create,omitempty"`
	Update    *Update   `json:"update,omitempty"`
}
