package sales

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
)

// Service defines sales business logic.
type Service interface {
	Record(ctx context.Context, caller *auth.Context, storeID string, in Input) (Sale, error)
	ListForDay(ctx context.Context, caller *auth.Context, storeID, day string) ([]Sale, error)
	ListRecent(ctx context.Context, caller *auth.Context, storeID string) ([]Sale, error)
}

// Input is a recorded sale payload.
type Input struct {
	Tenders    []Tender `json:"tenders"`
	CustomerID string   `json:"customerId"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// Record persists a completed sale. The total is derived from the tender
// legs; a sale with no positive tender is rejected.
func (s *service) Record(ctx context.Context, caller *auth.Context, storeID string, in Input) (Sale, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return Sale{}, err
	}
	if storeID == "" {
		return Sale{}, callable.New(callable.CodeInvalidArgument, "A store id is required")
	}
	var total float64
	tenders := make([]Tender, 0, len(in.Tenders))
	for _, t := range in.Tenders {
		if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount <= 0 {
			continue
		}
		tenders = append(tenders, Tender{Method: NormalizeTenderMethod(t.Method), Amount: t.Amount})
		total += t.Amount
	}
	if len(tenders) == 0 {
		return Sale{}, callable.New(callable.CodeInvalidArgument, "A sale needs at least one payment")
	}
	now := s.now().UTC()
	sale := Sale{
		ID:         uuid.NewString(),
		StoreID:    storeID,
		Day:        DayKey(now),
		Total:      total,
		Tenders:    tenders,
		CustomerID: in.CustomerID,
		SoldBy:     caller.UID,
		CreatedAt:  now,
	}
	if err := s.repo.Create(ctx, sale); err != nil {
		return Sale{}, fmt.Errorf("record sale: %w", err)
	}
	return sale, nil
}

func (s *service) ListForDay(ctx context.Context, caller *auth.Context, storeID, day string) ([]Sale, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return nil, err
	}
	if day == "" {
		day = DayKey(s.now().UTC())
	}
	list, err := s.repo.ListForDay(ctx, storeID, day)
	if err != nil {
		return nil, fmt.Errorf("list sales for %s on %s: %w", storeID, day, err)
	}
	return list, nil
}

func (s *service) ListRecent(ctx context.Context, caller *auth.Context, storeID string) ([]Sale, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return nil, err
	}
	list, err := s.repo.ListRecent(ctx, storeID, 100)
	if err != nil {
		return nil, fmt.Errorf("list sales for %s: %w", storeID, err)
	}
	return list, nil
}
