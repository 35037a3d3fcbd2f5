package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
)

// Service defines customer business logic.
type Service interface {
	Create(ctx context.Context, caller *auth.Context, storeID string, in Input) (Customer, error)
	Update(ctx context.Context, caller *auth.Context, storeID, id string, in Input) (Customer, error)
	List(ctx context.Context, caller *auth.Context, storeID string) ([]Customer, error)
}

// Input is a customer create or edit payload.
type Input struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, caller *auth.Context, storeID string, in Input) (Customer, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return Customer{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if storeID == "" || in.Name == "" {
		return Customer{}, callable.New(callable.CodeInvalidArgument, "A store id and customer name are required")
	}
	c := Customer{
		ID:      uuid.NewString(),
		StoreID: storeID,
		Name:    in.Name,
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Notes:   strings.TrimSpace(in.Notes),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, caller *auth.Context, storeID, id string, in Input) (Customer, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return Customer{}, err
	}
	existing, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Customer{}, fmt.Errorf("load customer %s: %w", id, err)
	}
	if !ok || existing.StoreID != storeID {
		return Customer{}, callable.New(callable.CodeNotFound, "Customer not found")
	}
	existing.Name = strings.TrimSpace(in.Name)
	existing.Phone = strings.TrimSpace(in.Phone)
	existing.Email = strings.ToLower(strings.TrimSpace(in.Email))
	existing.Notes = strings.TrimSpace(in.Notes)
	if existing.Name == "" {
		return Customer{}, callable.New(callable.CodeInvalidArgument, "A customer name is required")
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return Customer{}, fmt.Errorf("update customer %s: %w", id, err)
	}
	return existing, nil
}

func (s *service) List(ctx context.Context, caller *auth.Context, storeID string) ([]Customer, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return nil, err
	}
	customers, err := s.repo.ListByStore(ctx, storeID, 0)
	if err != nil {
		return nil, fmt.Errorf("list customers for %s: %w", storeID, err)
	}
	return customers, nil
}
