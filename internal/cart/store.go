// Package cart owns the cart aggregate. The Store is the only mutator
// of line items and the single source of truth for totals.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/graziella-cheese/shopcore/internal/domain"
	"github.com/graziella-cheese/shopcore/internal/port"
)

// StorageKey is the DurableStore key the cart persists under, carried
// over from the storefront's local storage key.
const StorageKey = "graziella-cart"

// Snapshot is the read-only view handed to subscribers after every
// successful mutation.
type Snapshot = []domain.CartItem

type Store struct {
	store  port.DurableStore
	logger *zap.Logger

	mu          sync.Mutex
	items       []domain.CartItem
	subscribers map[string]func(Snapshot)
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New restores the cart from the durable store. A missing, malformed
// or structurally invalid payload is discarded and the cart starts
// empty; restore never fails.
func New(ctx context.Context, store port.DurableStore, opts ...Option) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}

	s := &Store{
		store:       store,
		logger:      zap.NewNop(),
		subscribers: make(map[string]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.items = s.restore(ctx)
	return s, nil
}

// AddItem puts quantity units of a catalog product into the cart,
// incrementing the existing line item if the product is already there.
// Quantity below one means one, mirroring the storefront's default.
// A malformed product is rejected with no mutation.
func (s *Store) AddItem(ctx context.Context, product domain.Product, quantity int) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].ProductID == product.ID {
			s.items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, domain.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			Icon:      product.Icon,
		})
	}
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snapshot, subscribers)
	return nil
}

// UpdateQuantity sets the line item's quantity. A quantity of zero or
// below removes the item. Absent ids are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID)
		return
	}

	s.mu.Lock()
	changed := false
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			changed = true
			break
		}
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snapshot, subscribers)
}

// RemoveItem deletes the line item if present. Absent ids are a
// no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	changed := false
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			changed = true
			break
		}
	}
	if !changed {
		s.mu.Unlock()
		return
	}
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snapshot, subscribers)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return
	}
	s.items = nil
	snapshot, subscribers := s.snapshotLocked()
	s.mu.Unlock()

	s.commit(ctx, snapshot, subscribers)
}

// Items returns a copy of the current line items in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Cart{Items: s.items}.TotalItems()
}

func (s *Store) TotalPrice() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Cart{Items: s.items}.TotalPrice()
}

// Subscribe registers a callback invoked with the new snapshot after
// every successful mutation. The returned func unsubscribes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	token := uuid.NewString()

	s.mu.Lock()
	s.subscribers[token] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, token)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() (Snapshot, []func(Snapshot)) {
	snapshot := make(Snapshot, len(s.items))
	copy(snapshot, s.items)

	subscribers := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	return snapshot, subscribers
}

// commit persists the snapshot and fans it out to subscribers. A
// failed write is logged and swallowed: the in-memory mutation is
// already applied and must not be rolled back.
func (s *Store) commit(ctx context.Context, snapshot Snapshot, subscribers []func(Snapshot)) {
	payload, err := json.Marshal(mapItemsToStored(snapshot))
	if err != nil {
		s.logger.Warn("marshal cart", zap.Error(err))
	} else if err := s.store.Set(ctx, StorageKey, string(payload)); err != nil {
		s.logger.Warn("persist cart", zap.Error(err))
	}

	for _, fn := range subscribers {
		fn(snapshot)
	}
}

func (s *Store) restore(ctx context.Context) []domain.CartItem {
	raw, ok, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		s.logger.Warn("read cart", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var stored []storedItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Warn("discarding corrupt cart", zap.Error(err))
		return nil
	}

	items, err := mapStoredToItems(stored)
	if err != nil {
		s.logger.Warn("discarding corrupt cart", zap.Error(err))
		return nil
	}
	return items
}
