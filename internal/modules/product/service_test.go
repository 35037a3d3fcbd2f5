package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/kv"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
	"github.com/sedifex/sedifex-backend/internal/modules/pendingops"
)

func staffCaller() *auth.Context {
	return &auth.Context{UID: "u-1", Token: map[string]interface{}{"role": "staff"}}
}

func f(v float64) *float64 { return &v }

// offlineRepo fails every call with a transient error.
type offlineRepo struct{}

func (offlineRepo) transient() error { return status.Error(codes.Unavailable, "offline") }

func (r offlineRepo) Create(context.Context, Product) error { return r.transient() }
func (r offlineRepo) Update(context.Context, Product) error { return r.transient() }
func (r offlineRepo) Get(context.Context, string) (Product, bool, error) {
	return Product{}, false, r.transient()
}
func (r offlineRepo) FindByClientID(context.Context, string, string) (Product, bool, error) {
	return Product{}, false, r.transient()
}
func (r offlineRepo) ListByStore(context.Context, string, int) ([]Product, error) {
	return nil, r.transient()
}

func TestCreateWritesThrough(t *testing.T) {
	repo := NewDocstoreRepository(docstore.NewMemoryStore())
	svc := NewService(repo, nil)

	p, err := svc.Create(context.Background(), staffCaller(), "store-1", Input{
		ClientID: "c-1", Name: "  Sugar ", Price: f(4.5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Sugar", p.Name)
	assert.False(t, p.Pending)
	assert.NotEqual(t, "c-1", p.ID)

	stored, ok, err := repo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "store-1", stored.StoreID)
}

func TestCreateIsIdempotentPerClientID(t *testing.T) {
	repo := NewDocstoreRepository(docstore.NewMemoryStore())
	svc := NewService(repo, nil)

	first, err := svc.Create(context.Background(), staffCaller(), "store-1", Input{ClientID: "c-1", Name: "Sugar"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), staffCaller(), "store-1", Input{ClientID: "c-1", Name: "Sugar"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	products, err := repo.ListByStore(context.Background(), "store-1", 0)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCreateQueuesWhenStoreUnreachable(t *testing.T) {
	queue := pendingops.NewQueue(kv.NewMemoryStore())
	svc := NewService(offlineRepo{}, queue)

	p, err := svc.Create(context.Background(), staffCaller(), "store-1", Input{ClientID: "c-1", Name: "Sugar"})
	require.NoError(t, err)
	assert.True(t, p.Pending)
	// the provisional id is the client id until the create confirms
	assert.Equal(t, "c-1", p.ID)

	ops := queue.List("store-1")
	require.Len(t, ops, 1)
	assert.Equal(t, pendingops.KindCreate, ops[0].Kind)
	assert.Equal(t, "Sugar", ops[0].Create.Name)
}

func TestUpdateQueuesWithPreviousSnapshot(t *testing.T) {
	mem := docstore.NewMemoryStore()
	repo := NewDocstoreRepository(mem)
	svc := NewService(repo, nil)
	created, err := svc.Create(context.Background(), staffCaller(), "store-1", Input{ClientID: "c-1", Name: "Rice", Price: f(30)})
	require.NoError(t, err)

	queue := pendingops.NewQueue(kv.NewMemoryStore())
	offline := NewService(readOnlyRepo{repo}, queue)

	p, err := offline.Update(context.Background(), staffCaller(), "store-1", created.ID, Input{Name: "Rice 5kg", Price: f(55)})
	require.NoError(t, err)
	assert.True(t, p.Pending)

	ops := queue.List("store-1")
	require.Len(t, ops, 1)
	require.Equal(t, pendingops.KindUpdate, ops[0].Kind)
	assert.Equal(t, "Rice 5kg", ops[0].Update.Name)
	assert.Equal(t, "Rice", ops[0].Update.Previous.Name)
	assert.Equal(t, 30.0, *ops[0].Update.Previous.Price)
}

func TestReplayConfirmsQueuedCreate(t *testing.T) {
	repo := NewDocstoreRepository(docstore.NewMemoryStore())
	queue := pendingops.NewQueue(kv.NewMemoryStore())
	queue.QueueCreate("store-1", pendingops.Create{ClientID: "tmp-1", Name: "Sugar", Price: f(4)})
	queue.QueueUpdate("store-1", pendingops.Update{ProductID: "tmp-1", Name: "Sugar 1kg", Price: f(5)})

	replayer := pendingops.NewReplayer(queue, NewReplayWriter(repo))
	require.NoError(t, replayer.Replay(context.Background(), "store-1"))

	assert.Empty(t, queue.List("store-1"))
	products, err := repo.ListByStore(context.Background(), "store-1", 0)
	require.NoError(t, err)
	require.Len(t, products, 1)
	// the rewritten update landed on the confirmed record
	assert.Equal(t, "Sugar 1kg", products[0].Name)
	assert.Equal(t, 5.0, *products[0].Price)
}

func TestGetScopedToStore(t *testing.T) {
	repo := NewDocstoreRepository(docstore.NewMemoryStore())
	svc := NewService(repo, nil)
	p, err := svc.Create(context.Background(), staffCaller(), "store-1", Input{ClientID: "c-1", Name: "Sugar"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), staffCaller(), "store-2", p.ID)
	require.Error(t, err)

	got, err := svc.Get(context.Background(), staffCaller(), "store-1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestMutationsRequireStaffRole(t *testing.T) {
	svc := NewService(NewDocstoreRepository(docstore.NewMemoryStore()), nil)
	anon := &auth.Context{UID: "u-1", Token: map[string]interface{}{}}

	_, err := svc.Create(context.Background(), anon, "store-1", Input{Name: "Sugar"})
	require.Error(t, err)
	_, err = svc.Create(context.Background(), nil, "store-1", Input{Name: "Sugar"})
	require.Error(t, err)
}

// readOnlyRepo serves reads from the wrapped repository but fails writes
// transiently, modelling a connection lost mid-session.
type readOnlyRepo struct{ Repository }

func (readOnlyRepo) Create(context.Context, Product) error {
	return status.Error(codes.Unavailable, "offline")
}

func (readOnlyRepo) Update(context.Context, Product) error {
	return status.Error(codes.Unavailable, "offline")
}
