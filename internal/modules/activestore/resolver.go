// Package activestore decides which single store is "active" for a signed-in
// user, reconciling the locally persisted preference against the
// authoritative membership list. Every store-scoped read in the terminal
// hangs off the id this resolver emits.
package activestore

import (
	"context"
	"log"
	"sync"

	"github.com/sedifex/sedifex-backend/internal/kv"
)

// State names the resolver's position in its lifecycle.
type State string

const (
	StateUninitialized    State = "uninitialized"
	StateResolving        State = "resolving"
	StateResolvedValid    State = "resolved-valid"
	StateResolvedFallback State = "resolved-fallback"
	StateResolvedEmpty    State = "resolved-empty"
)

// Membership is the slice of a roster record the resolver needs: which store
// and with what role.
type Membership struct {
	StoreID string `json:"store_id"`
	Role    string `json:"role"`
}

// Source fetches the caller's current memberships. Implemented by the team
// module against the roster collection.
type Source interface {
	Memberships(ctx context.Context, uid string) ([]Membership, error)
}

// FetchFailedMessage is what the UI shows when the membership fetch fails.
// The raw error stays in the logs.
const FetchFailedMessage = "We could not refresh your workspace access. Your last workspace is still selected."

// Status is a point-in-time view of the resolver.
type Status struct {
	State       State        `json:"state"`
	StoreID     string       `json:"store_id,omitempty"`
	Memberships []Membership `json:"memberships,omitempty"`
	ErrMessage  string       `json:"error,omitempty"`
}

const selectionKeyPrefix = "activeStoreId/"

// Resolver owns the persisted selection for one uid. Concurrent resolutions
// are sequenced by a generation counter: a resolution that started before a
// manual selection (or a newer resolution) landed never clobbers it.
type Resolver struct {
	store    kv.Store
	notifier *kv.Notifier
	source   Source
	uid      string

	mu         sync.Mutex
	generation uint64
	status     Status
}

func NewResolver(store kv.Store, notifier *kv.Notifier, source Source, uid string) *Resolver {
	return &Resolver{
		store:    store,
		notifier: notifier,
		source:   source,
		uid:      uid,
		status:   Status{State: StateUninitialized},
	}
}

func (r *Resolver) key() string { return selectionKeyPrefix + r.uid }

// Status returns the current resolver snapshot.
func (r *Resolver) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// ActiveStoreID returns the resolved store id, or "" when none is resolved.
func (r *Resolver) ActiveStoreID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status.StoreID
}

// Resolve reads the persisted selection, fetches memberships, and settles on
// a valid active store. Safe to call repeatedly; each call re-validates
// against the live membership list, so a revoked selection self-corrects.
func (r *Resolver) Resolve(ctx context.Context) Status {
	r.mu.Lock()
	r.generation++
	generation := r.generation
	persisted := r.readPersisted()
	r.status.State = StateResolving
	r.mu.Unlock()

	memberships, err := r.source.Memberships(ctx, r.uid)

	r.mu.Lock()
	defer r.mu.Unlock()
	if generation != r.generation {
		// a manual selection or newer resolution landed meanwhile
		return r.status
	}
	if err != nil {
		log.Printf("activestore: membership fetch for %s: %v", r.uid, err)
		// keep the last known selection; surface a user-safe message only
		r.status.ErrMessage = FetchFailedMessage
		if r.status.State == StateResolving {
			r.status.State = r.settledState(persisted)
			r.status.StoreID = persisted
		}
		return r.status
	}

	r.status.ErrMessage = ""
	r.status.Memberships = memberships

	if persisted != "" && hasStore(memberships, persisted) {
		r.status.State = StateResolvedValid
		r.status.StoreID = persisted
		resolutionsTotal.WithLabelValues(string(StateResolvedValid)).Inc()
		return r.status
	}

	// persisted id missing or no longer among memberships
	if len(memberships) == 0 {
		r.status.State = StateResolvedEmpty
		r.status.StoreID = ""
		r.persist("")
		resolutionsTotal.WithLabelValues(string(StateResolvedEmpty)).Inc()
		return r.status
	}
	fallback := memberships[0].StoreID
	if persisted == "" {
		r.status.State = StateResolvedFallback
	} else {
		log.Printf("activestore: %s lost access to %s, falling back to %s", r.uid, persisted, fallback)
		r.status.State = StateResolvedFallback
	}
	r.status.StoreID = fallback
	r.persist(fallback)
	resolutionsTotal.WithLabelValues(string(StateResolvedFallback)).Inc()
	return r.status
}

// SetActiveStoreID records a manual workspace switch. The choice is
// persisted and broadcast immediately; the next Resolve still re-validates
// it against live memberships.
func (r *Resolver) SetActiveStoreID(storeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.status.StoreID = storeID
	r.status.ErrMessage = ""
	if storeID == "" {
		r.status.State = StateResolvedEmpty
	} else if hasStore(r.status.Memberships, storeID) {
		r.status.State = StateResolvedValid
	} else {
		// accepted provisionally, validated on next resolve
		r.status.State = StateResolvedFallback
	}
	r.persist(storeID)
}

// Listen converges this resolver with selections made in other execution
// contexts sharing the same storage. Blocks until ctx is done.
func (r *Resolver) Listen(ctx context.Context) {
	events, cancel := r.notifier.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Key != r.key() {
				continue
			}
			r.adoptPersisted()
		}
	}
}

// adoptPersisted picks up an externally written selection without a fetch.
func (r *Resolver) adoptPersisted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	persisted := r.readPersisted()
	if persisted == r.status.StoreID {
		return
	}
	r.generation++
	r.status.StoreID = persisted
	r.status.State = r.settledState(persisted)
}

func (r *Resolver) settledState(storeID string) State {
	if storeID == "" {
		return StateResolvedEmpty
	}
	if hasStore(r.status.Memberships, storeID) {
		return StateResolvedValid
	}
	return StateResolvedFallback
}

func (r *Resolver) readPersisted() string {
	raw, ok, err := r.store.Get(r.key())
	if err != nil {
		log.Printf("activestore: read selection for %s: %v", r.uid, err)
		return ""
	}
	if !ok {
		return ""
	}
	return string(raw)
}

// persist writes the selection and notifies other contexts. Callers hold
// r.mu.
func (r *Resolver) persist(storeID string) {
	var err error
	if storeID == "" {
		err = r.store.Delete(r.key())
	} else {
		err = r.store.Set(r.key(), []byte(storeID))
	}
	if err != nil {
		log.Printf("activestore: persist selection for %s: %v", r.uid, err)
		return
	}
	if r.notifier != nil {
		r.notifier.Publish(r.key())
	}
}

func hasStore(memberships []Membership, storeID string) bool {
	for _, m := range memberships {
		if m.StoreID == storeID {
			return true
		}
	}
	return false
}
