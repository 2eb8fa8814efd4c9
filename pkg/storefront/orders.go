package storefront

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// OrderSync mirrors the signed-in account's order history. Fetches may overlap;
// the result of the most recently started fetch wins and each result replaces
// the whole list at once.
type OrderSync struct {
	api   *API
	store IdentityStore

	mu       sync.Mutex
	orders   []Order
	started  uint64
	inflight int
}

// NewOrderSync returns an empty order cache.
func NewOrderSync(api *API, store IdentityStore) *OrderSync {
	return &OrderSync{api: api, store: store, orders: []Order{}}
}

// FetchOrders resolves identifier to an account and replaces the cached orders with
// the server's list. An empty identifier is a no-op. On failure the cached orders
// are left as they were.
func (s *OrderSync) FetchOrders(ctx context.Context, identifier string) error {
	if identifier == "" {
		return nil
	}

	s.mu.Lock()
	s.started++
	generation := s.started
	s.inflight++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	identity, err := resolveIdentity(ctx, s.api, s.store, identifier)
	if err != nil {
		return err
	}
	orders, err := s.api.ListOrders(ctx, identity.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if generation == s.started {
		s.orders = orders
	}
	s.mu.Unlock()
	return nil
}

// AddOrder prepends order ahead of the next refresh.
func (s *OrderSync) AddOrder(order Order) {
	s.mu.Lock()
	s.orders = append([]Order{order}, s.orders...)
	s.mu.Unlock()
}

// RefreshOrders fetches again for the stored identity. Nothing happens when no
// identity is stored.
func (s *OrderSync) RefreshOrders(ctx context.Context) error {
	identity, err := s.store.Load()
	if err != nil {
		return err
	}
	if identity == nil || identity.Identifier == "" {
		return nil
	}
	return s.FetchOrders(ctx, identity.Identifier)
}

// ClearOrders empties the cache and discards fetches still in flight.
func (s *OrderSync) ClearOrders() {
	s.mu.Lock()
	s.orders = []Order{}
	s.started++
	s.mu.Unlock()
}

// Orders returns a copy of the cached orders, newest first.
func (s *OrderSync) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Loading reports whether a fetch is in flight.
func (s *OrderSync) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// resolveIdentity prefers the stored identity for identifier and otherwise looks the
// account up and stores the result.
func resolveIdentity(ctx context.Context, api *API, store IdentityStore, identifier string) (*Identity, error) {
	stored, err := store.Load()
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.ID != "" && stored.Identifier == identifier {
		return stored, nil
	}

	account, err := api.GetAccount(ctx, identifier)
	if err != nil {
		return nil, err
	}
	identity := Identity{ID: account.ID, Identifier: account.Identifier, Name: account.Name}
	if identity.Identifier == "" {
		identity.Identifier = identifier
	}
	if identity.Name == "" {
		identity.Name, _, _ = strings.Cut(identifier, "@")
	}
	if err := store.Save(identity); err != nil {
		return nil, fmt.Errorf("store identity: %w", err)
	}
	return &identity, nil
}
