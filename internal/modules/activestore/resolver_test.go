package activestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedifex/sedifex-backend/internal/kv"
)

type fakeSource struct {
	mu          sync.Mutex
	memberships []Membership
	err         error
	calls       int
}

func (s *fakeSource) Memberships(context.Context, string) ([]Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.memberships, s.err
}

func (s *fakeSource) set(memberships []Membership, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = memberships
	s.err = err
}

func newResolver(source Source) (*Resolver, kv.Store) {
	store := kv.NewMemoryStore()
	return NewResolver(store, kv.NewNotifier(), source, "u-1"), store
}

func TestResolveFallsBackToFirstMembership(t *testing.T) {
	source := &fakeSource{memberships: []Membership{
		{StoreID: "store-a", Role: "owner"},
		{StoreID: "store-b", Role: "staff"},
	}}
	r, store := newResolver(source)

	status := r.Resolve(context.Background())
	assert.Equal(t, StateResolvedFallback, status.State)
	assert.Equal(t, "store-a", status.StoreID)

	// the fallback is persisted for the next session
	raw, ok, err := store.Get("activeStoreId/u-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "store-a", string(raw))
}

func TestResolveValidPersistedSelection(t *testing.T) {
	source := &fakeSource{memberships: []Membership{
		{StoreID: "store-a"}, {StoreID: "store-b"},
	}}
	r, store := newResolver(source)
	require.NoError(t, store.Set("activeStoreId/u-1", []byte("store-b")))

	status := r.Resolve(context.Background())
	assert.Equal(t, StateResolvedValid, status.State)
	assert.Equal(t, "store-b", status.StoreID)
}

func TestResolveCorrectsRevokedSelection(t *testing.T) {
	source := &fakeSource{memberships: []Membership{{StoreID: "store-a"}}}
	r, store := newResolver(source)
	require.NoError(t, store.Set("activeStoreId/u-1", []byte("store-gone")))

	status := r.Resolve(context.Background())
	assert.Equal(t, StateResolvedFallback, status.State)
	assert.Equal(t, "store-a", status.StoreID)

	raw, _, err := store.Get("activeStoreId/u-1")
	require.NoError(t, err)
	assert.Equal(t, "store-a", string(raw))
}

func TestResolveEmptyMemberships(t *testing.T) {
	r, store := newResolver(&fakeSource{})
	require.NoError(t, store.Set("activeStoreId/u-1", []byte("store-gone")))

	status := r.Resolve(context.Background())
	assert.Equal(t, StateResolvedEmpty, status.State)
	assert.Empty(t, status.StoreID)

	_, ok, err := store.Get("activeStoreId/u-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFetchFailureKeepsLastSelection(t *testing.T) {
	source := &fakeSource{memberships: []Membership{{StoreID: "store-a"}}}
	r, _ := newResolver(source)
	r.Resolve(context.Background())

	source.set(nil, errors.New("backend down"))
	status := r.Resolve(context.Background())

	assert.Equal(t, FetchFailedMessage, status.ErrMessage)
	assert.Equal(t, "store-a", status.StoreID)

	// a later successful fetch clears the message
	source.set([]Membership{{StoreID: "store-a"}}, nil)
	status = r.Resolve(context.Background())
	assert.Empty(t, status.ErrMessage)
	assert.Equal(t, StateResolvedValid, status.State)
}

func TestSetActiveStoreIDOverridesAndPersists(t *testing.T) {
	source := &fakeSource{memberships: []Membership{
		{StoreID: "store-a"}, {StoreID: "store-b"},
	}}
	r, store := newResolver(source)
	r.Resolve(context.Background())

	r.SetActiveStoreID("store-b")
	assert.Equal(t, "store-b", r.ActiveStoreID())
	assert.Equal(t, StateResolvedValid, r.Status().State)

	raw, _, err := store.Get("activeStoreId/u-1")
	require.NoError(t, err)
	assert.Equal(t, "store-b", string(raw))
}

func TestCrossContextConvergence(t *testing.T) {
	store := kv.NewMemoryStore()
	notifier := kv.NewNotifier()
	source := &fakeSource{memberships: []Membership{
		{StoreID: "store-a"}, {StoreID: "store-b"},
	}}

	first := NewResolver(store, notifier, source, "u-1")
	second := NewResolver(store, notifier, source, "u-1")
	first.Resolve(context.Background())
	second.Resolve(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go second.Listen(ctx)

	// re-publish until the listener is subscribed and has converged
	require.Eventually(t, func() bool {
		first.SetActiveStoreID("store-b")
		return second.ActiveStoreID() == "store-b"
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerFiresOnTriggerAndInterval(t *testing.T) {
	var (
		mu       sync.Mutex
		triggers []Trigger
	)
	s := NewScheduler(20*time.Millisecond, func(_ context.Context, trigger Trigger) {
		mu.Lock()
		triggers = append(triggers, trigger)
		mu.Unlock()
	})
	s.Start(context.Background())
	defer s.Stop()

	s.Fire(TriggerOnline)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		var sawOnline, sawInterval bool
		for _, tr := range triggers {
			sawOnline = sawOnline || tr == TriggerOnline
			sawInterval = sawInterval || tr == TriggerInterval
		}
		return sawOnline && sawInterval
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewScheduler(time.Hour, func(context.Context, Trigger) {})
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}
