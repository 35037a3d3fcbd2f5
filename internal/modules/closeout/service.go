package closeout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
	"github.com/sedifex/sedifex-backend/internal/modules/sales"
)

// Service defines closeout business logic.
type Service interface {
	// Preview computes the reconciliation without persisting anything, for
	// the live count screen.
	Preview(ctx context.Context, caller *auth.Context, storeID string, in Input) (Reconciliation, error)
	Close(ctx context.Context, caller *auth.Context, storeID string, in Input) (Record, error)
	History(ctx context.Context, caller *auth.Context, storeID string) ([]Record, error)
}

// Input is a drawer count as entered: raw strings, parsed defensively.
type Input struct {
	Day         string            `json:"day"`
	Counts      map[string]string `json:"counts"`
	LooseCash   string            `json:"looseCash"`
	CashRemoved string            `json:"cashRemoved"`
	CashAdded   string            `json:"cashAdded"`
	Notes       string            `json:"notes"`
}

type service struct {
	repo          Repository
	sales         sales.Repository
	noteThreshold float64
	now           func() time.Time
}

// NewService wires the closeout service. noteThreshold <= 0 falls back to
// the default.
func NewService(repo Repository, salesRepo sales.Repository, noteThreshold float64) Service {
	return &service{repo: repo, sales: salesRepo, noteThreshold: noteThreshold, now: time.Now}
}

func (s *service) Preview(ctx context.Context, caller *auth.Context, storeID string, in Input) (Reconciliation, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return Reconciliation{}, err
	}
	if storeID == "" {
		return Reconciliation{}, callable.New(callable.CodeInvalidArgument, "A store id is required")
	}
	day := s.day(in)
	totalSales, nonCashTotal, err := s.dayTotals(ctx, storeID, day)
	if err != nil {
		return Reconciliation{}, err
	}
	return Reconcile(in.Counts, in.LooseCash, totalSales, nonCashTotal, in.CashRemoved, in.CashAdded, s.noteThreshold), nil
}

// Close persists the day's reconciliation. The note policy is checked
// before any write: a rejected closeout leaves no partial record behind.
func (s *service) Close(ctx context.Context, caller *auth.Context, storeID string, in Input) (Record, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return Record{}, err
	}
	if storeID == "" {
		return Record{}, callable.New(callable.CodeInvalidArgument, "A store id is required")
	}
	day := s.day(in)
	totalSales, nonCashTotal, err := s.dayTotals(ctx, storeID, day)
	if err != nil {
		return Record{}, err
	}
	result := Reconcile(in.Counts, in.LooseCash, totalSales, nonCashTotal, in.CashRemoved, in.CashAdded, s.noteThreshold)
	notes := strings.TrimSpace(in.Notes)
	if result.NoteRequired && notes == "" {
		return Record{}, callable.New(callable.CodeFailedPrecondition, "The cash difference is too large to close without a note explaining it.")
	}

	counts := make(map[string]int, len(in.Counts))
	for _, denomination := range Denominations {
		key := DenominationKey(denomination)
		if raw, ok := in.Counts[key]; ok {
			counts[key] = ParseQuantity(raw)
		}
	}
	record := Record{
		ID:           RecordID(storeID, day),
		StoreID:      storeID,
		Day:          day,
		Counts:       counts,
		LooseCash:    Round2(ParseCurrency(in.LooseCash)),
		TotalSales:   Round2(totalSales),
		NonCashTotal: Round2(nonCashTotal),
		CashRemoved:  Round2(ParseCurrency(in.CashRemoved)),
		CashAdded:    Round2(ParseCurrency(in.CashAdded)),
		CountedCash:  result.CountedCash,
		ExpectedCash: result.ExpectedCash,
		Variance:     result.Variance,
		Outcome:      result.Outcome,
		Notes:        notes,
		ClosedBy:     caller.UID,
		ClosedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, ErrAlreadyClosed) {
			return Record{}, callable.New(callable.CodeFailedPrecondition, "This day has already been closed for this store.")
		}
		return Record{}, fmt.Errorf("persist closeout for %s on %s: %w", storeID, day, err)
	}
	return record, nil
}

func (s *service) History(ctx context.Context, caller *auth.Context, storeID string) ([]Record, error) {
	if err := auth.RequireStaff(caller); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByStore(ctx, storeID, 31)
	if err != nil {
		return nil, fmt.Errorf("list closeouts for %s: %w", storeID, err)
	}
	return records, nil
}

func (s *service) day(in Input) string {
	if in.Day != "" {
		return in.Day
	}
	return sales.DayKey(s.now().UTC())
}

// dayTotals derives the sales side of the reconciliation from the day's
// recorded transactions.
func (s *service) dayTotals(ctx context.Context, storeID, day string) (totalSales, nonCashTotal float64, err error) {
	daySales, err := s.sales.ListForDay(ctx, storeID, day)
	if err != nil {
		return 0, 0, fmt.Errorf("load sales for %s on %s: %w", storeID, day, err)
	}
	for _, sale := range daySales {
		totalSales += sale.Total
		nonCashTotal += sale.NonCashTotal()
	}
	return totalSales, nonCashTotal, nil
}
