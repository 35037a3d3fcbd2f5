package product

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
	"github.com/sedifex/sedifex-backend/internal/modules/pendingops"
)

// Service defines product business logic.
type Service interface {
	Create(ctx context.Context, caller *auth.Context, storeID string, in Input) (Product, error)
	Update(ctx context.Context, caller *auth.Context, storeID, productID string, in Input) (Product, error)
	Get(ctx context.Context, caller *auth.Context, storeID, id string) (Product, error)
	List(ctx context.Context, caller *auth.Context, storeID string) ([]Product, error)
}

// Input is a product create or edit payload.
type Input struct {
	ClientID         string   `json:"clientId"`
	Name             string   `json:"name"`
	SKU              string   `json:"sku"`
	Price            *float64 `json:"price"`
	ReorderThreshold *float64 `json:"reorderThreshold"`
	StockCount       *float64 `json:"stockCount"`
}

type service struct {
	repo  Repository
	queue *pendingops.Queue
}

// NewService wires the product service. queue may be nil on the API server,
// where there is no local durability layer to fall back to.
func NewService(repo Repository, queue *pendingops.Queue) Service {
	return &service{repo: repo, queue: queue}
}

// Create writes the product through to the document store. When the store is
// unreachable the create is queued locally instead and returned as pending —
// the caller keeps a usable (provisional) product either way.
func (s *service) Create(ctx context.Context, caller *auth.Context, storeID string, in Input) (Product, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return Product{}, err
	}
	if storeID == "" {
		return Product{}, callable.New(callable.CodeInvalidArgument, "A store id is required")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Product{}, callable.New(callable.CodeInvalidArgument, "A product name is required")
	}
	if in.ClientID == "" {
		in.ClientID = uuid.NewString()
	}

	// Replayed or retried creates with the same client id land on the
	// existing record instead of producing a duplicate.
	if existing, ok, err := s.repo.FindByClientID(ctx, storeID, in.ClientID); err == nil && ok {
		return existing, nil
	} else if err != nil && !docstore.IsTransient(err) {
		return Product{}, fmt.Errorf("look up client id %s: %w", in.ClientID, err)
	}

	p := Product{
		ID:               uuid.NewString(),
		StoreID:          storeID,
		ClientID:         in.ClientID,
		Name:             in.Name,
		SKU:              strings.TrimSpace(in.SKU),
		Price:            in.Price,
		ReorderThreshold: in.ReorderThreshold,
		StockCount:       in.StockCount,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if s.queue != nil && docstore.IsTransient(err) {
			log.Printf("product: create for %s deferred: %v", storeID, err)
			s.queue.QueueCreate(storeID, pendingops.Create{
				ClientID:         in.ClientID,
				Name:             p.Name,
				SKU:              p.SKU,
				Price:            in.Price,
				ReorderThreshold: in.ReorderThreshold,
				StockCount:       in.StockCount,
			})
			p.ID = in.ClientID
			p.Pending = true
			return p, nil
		}
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update edits the product, capturing the pre-edit snapshot for the queued
// fallback when the document store is unreachable.
func (s *service) Update(ctx context.Context, caller *auth.Context, storeID, productID string, in Input) (Product, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return Product{}, err
	}
	if storeID == "" || productID == "" {
		return Product{}, callable.New(callable.CodeInvalidArgument, "A store id and product id are required")
	}
	in.Name = strings.TrimSpace(in.Name)

	existing, found, err := s.repo.Get(ctx, productID)
	if err != nil && !docstore.IsTransient(err) {
		return Product{}, fmt.Errorf("load product %s: %w", productID, err)
	}
	if found && existing.StoreID != storeID {
		return Product{}, callable.New(callable.CodeNotFound, "Product not found")
	}

	p := Product{
		ID:               productID,
		StoreID:          storeID,
		Name:             in.Name,
		SKU:              strings.TrimSpace(in.SKU),
		Price:            in.Price,
		ReorderThreshold: in.ReorderThreshold,
		StockCount:       in.StockCount,
	}
	if found {
		p.ClientID = existing.ClientID
		p.CreatedAt = existing.CreatedAt
		if p.StockCount == nil {
			p.StockCount = existing.StockCount
		}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if s.queue != nil && docstore.IsTransient(err) {
			log.Printf("product: update %s for %s deferred: %v", productID, storeID, err)
			s.queue.QueueUpdate(storeID, pendingops.Update{
				ProductID:        productID,
				Name:             p.Name,
				SKU:              p.SKU,
				Price:            in.Price,
				ReorderThreshold: in.ReorderThreshold,
				Previous: pendingops.Snapshot{
					Name:             existing.Name,
					SKU:              existing.SKU,
					Price:            existing.Price,
					ReorderThreshold: existing.ReorderThreshold,
				},
			})
			p.Pending = true
			return p, nil
		}
		return Product{}, fmt.Errorf("update product %s: %w", productID, err)
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, caller *auth.Context, storeID, id string) (Product, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return Product{}, err
	}
	p, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("load product %s: %w", id, err)
	}
	if !ok || p.StoreID != storeID {
		return Product{}, callable.New(callable.CodeNotFound, "Product not found")
	}
	return p, nil
}

func (s *service) List(ctx context.Context, caller *auth.Context, storeID string) ([]Product, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return nil, err
	}
	products, err := s.repo.ListByStore(ctx, storeID, 0)
	if err != nil {
		return nil, fmt.Errorf("list products for %s: %w", storeID, err)
	}
	return products, nil
}

// ReplayWriter adapts the repository into the pendingops replay target.
type ReplayWriter struct{ repo Repository }

func NewReplayWriter(repo Repository) *ReplayWriter {
	return &ReplayWriter{repo: repo}
}

func (w *ReplayWriter) CreateProduct(ctx context.Context, storeID string, create pendingops.Create) (string, error) {
	if existing, ok, err := w.repo.FindByClientID(ctx, storeID, create.ClientID); err != nil {
		return "", err
	} else if ok {
		return existing.ID, nil
	}
	p := Product{
		ID:               uuid.NewString(),
		StoreID:          storeID,
		ClientID:         create.ClientID,
		Name:             create.Name,
		SKU:              create.SKU,
		Price:            create.Price,
		ReorderThreshold: create.ReorderThreshold,
		StockCount:       create.StockCount,
	}
	if err := w.repo.Create(ctx, p); err != nil {
		return "", err
	}
	return p.ID, nil
}

func (w *ReplayWriter) UpdateProduct(ctx context.Context, storeID string, update pendingops.Update) error {
	existing, ok, err := w.repo.Get(ctx, update.ProductID)
	if err != nil {
		return err
	}
	if !ok || existing.StoreID != storeID {
		return fmt.Errorf("product %s no longer exists in %s", update.ProductID, storeID)
	}
	existing.Name = update.Name
	existing.SKU = update.SKU
	existing.Price = update.Price
	existing.ReorderThreshold = update.ReorderThreshold
	return w.repo.Update(ctx, existing)
}
