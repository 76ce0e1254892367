package store

import (
	"sync"
)

// Store is the thin mutable wrapper around the reducer. It owns the
// current CartState and is the only sanctioned way to mutate it. Handlers
// for the same browsing session may run concurrently, so the wrapper
// serializes dispatches with a mutex while Reduce stays pure.
type Store struct {
	mu     sync.Mutex
	state  CartState
	subs   map[int]func(CartState)
	nextID int
}

func New() *Store {
	return FromState(CartState{})
}

// FromState builds a store around a restored snapshot. The aggregates are
// re-derived so a hand-edited or stale snapshot cannot introduce drift.
func FromState(state CartState) *Store {
	state = state.clone()
	state.Total, state.LineCount = derive(state.Lines)
	return &Store{state: state, subs: map[int]func(CartState){}}
}

func (s *Store) dispatch(action Action) CartState {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	next := s.state.clone()
	subs := make([]func(CartState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

func (s *Store) AddLine(candidate LineCandidate) CartState {
	return s.dispatch(AddLine{Candidate: candidate})
}

func (s *Store) RemoveLine(key LineKey) CartState {
	return s.dispatch(RemoveLine{Key: key})
}

func (s *Store) SetQuantity(key LineKey, quantity int) CartState {
	return s.dispatch(SetQuantity{Key: key, Quantity: quantity})
}

func (s *Store) Clear() CartState {
	return s.dispatch(Clear{})
}

func (s *Store) Open() CartState {
	return s.dispatch(Open{})
}

func (s *Store) Close() CartState {
	return s.dispatch(Close{})
}

func (s *Store) Toggle() CartState {
	return s.dispatch(Toggle{})
}

// State returns a snapshot of the current state. The snapshot is detached;
// mutating it cannot reach back into the store.
func (s *Store) State() CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to run after every transition with the resulting
// state. The returned func cancels the subscription.
func (s *Store) Subscribe(fn func(CartState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
