package closeout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
	"github.com/sedifex/sedifex-backend/internal/modules/sales"
)

func staffCaller() *auth.Context {
	return &auth.Context{UID: "u-1", Token: map[string]interface{}{"role": "staff"}}
}

func seedSales(t *testing.T, store docstore.Store) sales.Repository {
	t.Helper()
	repo := sales.NewDocstoreRepository(store)
	svc := sales.NewService(repo)
	// 300 total, 120 of it non-cash
	_, err := svc.Record(context.Background(), staffCaller(), "store-1", sales.Input{
		Tenders: []sales.Tender{
			{Method: "cash", Amount: 180},
			{Method: "momo", Amount: 70},
		},
	})
	require.NoError(t, err)
	_, err = svc.Record(context.Background(), staffCaller(), "store-1", sales.Input{
		Tenders: []sales.Tender{{Method: "card", Amount: 50}},
	})
	require.NoError(t, err)
	return repo
}

func TestCloseDerivesTotalsAndPersists(t *testing.T) {
	mem := docstore.NewMemoryStore()
	salesRepo := seedSales(t, mem)
	svc := NewService(NewDocstoreRepository(mem), salesRepo, 0)

	// expected cash: 300 − 120 = 180; counted: 1×100 + 4×20 = 180
	record, err := svc.Close(context.Background(), staffCaller(), "store-1", Input{
		Counts: map[string]string{"100": "1", "20": "4"},
	})
	require.NoError(t, err)
	assert.Equal(t, 300.0, record.TotalSales)
	assert.Equal(t, 120.0, record.NonCashTotal)
	assert.Equal(t, 180.0, record.ExpectedCash)
	assert.Equal(t, Matches, record.Outcome)
	assert.Equal(t, "u-1", record.ClosedBy)
}

func TestCloseRejectsLargeVarianceWithoutNote(t *testing.T) {
	mem := docstore.NewMemoryStore()
	salesRepo := seedSales(t, mem)
	repo := NewDocstoreRepository(mem)
	svc := NewService(repo, salesRepo, 0)

	// expected 180, counted 100: 80 short, above the 20 threshold
	_, err := svc.Close(context.Background(), staffCaller(), "store-1", Input{
		Counts: map[string]string{"100": "1"},
	})
	require.Error(t, err)

	// rejection happens before any write
	_, exists, lookupErr := repo.Get(context.Background(), "store-1", sales.DayKey(time.Now().UTC()))
	require.NoError(t, lookupErr)
	assert.False(t, exists)

	// the same count with a note goes through
	record, err := svc.Close(context.Background(), staffCaller(), "store-1", Input{
		Counts: map[string]string{"100": "1"},
		Notes:  "80 cedis banked early, deposit slip attached",
	})
	require.NoError(t, err)
	assert.Equal(t, Short, record.Outcome)
	assert.Equal(t, -80.0, record.Variance)
}

func TestCloseIsOncePerDay(t *testing.T) {
	mem := docstore.NewMemoryStore()
	salesRepo := seedSales(t, mem)
	svc := NewService(NewDocstoreRepository(mem), salesRepo, 0)

	in := Input{Counts: map[string]string{"100": "1", "20": "4"}}
	_, err := svc.Close(context.Background(), staffCaller(), "store-1", in)
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), staffCaller(), "store-1", in)
	require.Error(t, err)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	mem := docstore.NewMemoryStore()
	salesRepo := seedSales(t, mem)
	repo := NewDocstoreRepository(mem)
	svc := NewService(repo, salesRepo, 0)

	result, err := svc.Preview(context.Background(), staffCaller(), "store-1", Input{
		Counts: map[string]string{"100": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, Short, result.Outcome)

	records, err := repo.ListByStore(context.Background(), "store-1", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCloseToleratesMalformedInputs(t *testing.T) {
	mem := docstore.NewMemoryStore()
	salesRepo := seedSales(t, mem)
	svc := NewService(NewDocstoreRepository(mem), salesRepo, 0)

	record, err := svc.Close(context.Background(), staffCaller(), "store-1", Input{
		Counts:      map[string]string{"100": "abc", "20": "nine"},
		LooseCash:   "xyz",
		CashRemoved: "abc",
		Notes:       "drawer never opened, till fault logged",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, record.CountedCash)
	assert.Equal(t, 0.0, record.CashRemoved)
}
