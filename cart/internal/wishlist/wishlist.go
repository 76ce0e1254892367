package wishlist

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Item is one saved product. The wishlist is a set keyed by product id:
// no quantities, no stock arithmetic.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
}

// Store holds the saved items for one browsing session in insertion
// order. Add and Remove are idempotent.
type Store struct {
	mu    sync.Mutex
	items []Item
}

func New() *Store {
	return &Store{}
}

func FromItems(items []Item) *Store {
	s := &Store{}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s *Store) indexOf(productID string) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) Add(item Item) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(item.ProductID) < 0 {
		s.items = append(s.items, item)
	}
	return append([]Item(nil), s.items...)
}

func (s *Store) Remove(productID string) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	return append([]Item(nil), s.items...)
}

// Toggle adds the item when absent and removes it when present, returning
// whether the item is saved afterwards.
func (s *Store) Toggle(item Item) (items []Item, saved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(item.ProductID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		return append([]Item(nil), s.items...), false
	}
	s.items = append(s.items, item)
	return append([]Item(nil), s.items...), true
}

func (s *Store) Has(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}
