// Package cart mirrors the server's per-user cart. Every mutation round-trips
// to the backend and the local snapshot is replaced wholesale with the
// server's authoritative response; there is no partial merge.
//
// Mutations are not serialized or de-duplicated: two rapid calls race and the
// last response to be applied wins, which can silently drop an earlier
// change. The behavior is eventually consistent, matching the backend's
// contract that the next fetch returns truth.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/models"
	"github.com/chungmin23/storefront/internal/storage"
)

// Listener receives the cart snapshot after every successful mutation. It
// replaces the cartUpdated broadcast event: header badges and cart views
// subscribe instead of listening on a global bus.
type Listener func(items []models.CartItem)

// Store is the client-side cart state container.
type Store struct {
	client *api.Client
	store  storage.Store
	log    *slog.Logger

	mu        sync.RWMutex
	items     []models.CartItem
	listeners map[int]Listener
	nextID    int
}

// New creates a cart store.
func New(client *api.Client, store storage.Store, log *slog.Logger) *Store {
	return &Store{
		client:    client,
		store:     store,
		log:       log,
		listeners: make(map[int]Listener),
	}
}

// Fetch loads the authoritative cart and replaces the local snapshot.
// Called on startup and whenever a view needs fresh state.
func (s *Store) Fetch(ctx context.Context) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.client.Get(ctx, "/cart/items", nil, &items); err != nil {
		return nil, err
	}
	s.replace(items)
	return s.Items(), nil
}

// AddOrUpdate sets the absolute quantity for a product line. The server
// returns the full updated cart, which becomes the new local snapshot.
func (s *Store) AddOrUpdate(ctx context.Context, productID int64, quantity int) ([]models.CartItem, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %d", quantity)
	}

	change := models.CartChange{
		Email:     s.userEmail(),
		ProductID: productID,
		Quantity:  quantity,
	}

	var items []models.CartItem
	if err := s.client.Post(ctx, "/cart/change", change, &items); err != nil {
		return nil, err
	}

	s.replace(items)
	s.notify()
	return s.Items(), nil
}

// Remove deletes one cart line. Same full-replace-on-response contract as
// AddOrUpdate.
func (s *Store) Remove(ctx context.Context, cartItemID int64) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.client.Delete(ctx, fmt.Sprintf("/cart/%d", cartItemID), &items); err != nil {
		return nil, err
	}

	s.replace(items)
	s.notify()
	return s.Items(), nil
}

// Items returns a copy of the current snapshot.
func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Subtotal is the displayed cart total, always computed over the latest
// authoritative snapshot.
func (s *Store) Subtotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, item := range s.items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// Count returns the total unit count, used for the badge display.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Subscribe registers a listener for cart mutations and returns an
// unsubscribe function.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// replace swaps in the authoritative snapshot and persists the denormalized
// mirror used for badge counts across restarts.
func (s *Store) replace(items []models.CartItem) {
	if items == nil {
		items = []models.CartItem{}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	blob, err := json.Marshal(items)
	if err != nil {
		s.log.Warn("failed to encode cart mirror", "error", err)
		return
	}
	if err := s.store.Set(storage.KeyCart, string(blob)); err != nil {
		s.log.Warn("failed to persist cart mirror", "error", err)
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	snapshot := make([]models.CartItem, len(s.items))
	copy(snapshot, s.items)
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// userEmail reads the persisted user blob; the cart change endpoint wants
// the owner's email in the body.
func (s *Store) userEmail() string {
	raw, ok := s.store.Get(storage.KeyUser)
	if !ok {
		return ""
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return ""
	}
	return user.Email
}
