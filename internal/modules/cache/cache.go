// Package cache keeps a bounded, per-store mirror of remote collection data
// in the device-local kv store, so the terminal paints a populated first
// frame before its live subscription resolves. It is a last-write-wins
// cache: the live subscription is the source of truth and overwrites the
// snapshot wholesale on every delivery.
package cache

import (
	"encoding/json"
	"log"

	"github.com/sedifex/sedifex-backend/internal/kv"
	"github.com/sedifex/sedifex-backend/internal/modules/customer"
	"github.com/sedifex/sedifex-backend/internal/modules/product"
	"github.com/sedifex/sedifex-backend/internal/modules/sales"
)

// Limits bound the snapshot sizes. Callers pre-sort by recency; Save keeps
// the head of whatever order it is handed.
type Limits struct {
	Customers int
	Products  int
	Sales     int
}

func DefaultLimits() Limits {
	return Limits{Customers: 200, Products: 500, Sales: 100}
}

const (
	customersKey = "cachedCustomers/"
	productsKey  = "cachedProducts/"
	salesKey     = "cachedSales/"
)

// Snapshots reads and writes the per-store collection snapshots.
type Snapshots struct {
	store  kv.Store
	limits Limits
}

func NewSnapshots(store kv.Store, limits Limits) *Snapshots {
	defaults := DefaultLimits()
	if limits.Customers <= 0 {
		limits.Customers = defaults.Customers
	}
	if limits.Products <= 0 {
		limits.Products = defaults.Products
	}
	if limits.Sales <= 0 {
		limits.Sales = defaults.Sales
	}
	return &Snapshots{store: store, limits: limits}
}

func (s *Snapshots) SaveCustomers(storeID string, rows []customer.Customer) {
	save(s.store, customersKey+storeID, rows, s.limits.Customers)
}

func (s *Snapshots) LoadCustomers(storeID string) []customer.Customer {
	return load[customer.Customer](s.store, customersKey+storeID)
}

func (s *Snapshots) SaveProducts(storeID string, rows []product.Product) {
	save(s.store, productsKey+storeID, rows, s.limits.Products)
}

func (s *Snapshots) LoadProducts(storeID string) []product.Product {
	return load[product.Product](s.store, productsKey+storeID)
}

func (s *Snapshots) SaveSales(storeID string, rows []sales.Sale) {
	save(s.store, salesKey+storeID, rows, s.limits.Sales)
}

func (s *Snapshots) LoadSales(storeID string) []sales.Sale {
	return load[sales.Sale](s.store, salesKey+storeID)
}

// ClearStore evicts every snapshot for storeID (sign-out, store switch).
func (s *Snapshots) ClearStore(storeID string) {
	for _, key := range []string{customersKey + storeID, productsKey + storeID, salesKey + storeID} {
		if err := s.store.Delete(key); err != nil {
			log.Printf("cache: clear %s: %v", key, err)
		}
	}
}

func save[T any](store kv.Store, key string, rows []T, limit int) {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []T{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		log.Printf("cache: encode %s: %v", key, err)
		return
	}
	if err := store.Set(key, raw); err != nil {
		log.Printf("cache: write %s: %v", key, err)
	}
}

// load returns the persisted snapshot, or an empty list when the snapshot
// is missing, corrupt, or storage is unavailable. Never fails.
func load[T any](store kv.Store, key string) []T {
	raw, ok, err := store.Get(key)
	if err != nil {
		log.Printf("cache: read %s: %v", key, err)
		return nil
	}
	if !ok {
		return nil
	}
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		log.Printf("cache: decode %s: %v", key, err)
		return nil
	}
	return rows
}
