package store

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCommands(t *testing.T) {
	s := New()
	key := LineKey{ProductID: "P1", Size: "M", Color: "Rosa"}

	state := s.AddLine(pajamaCandidate("M", "Rosa"))
	assert.Equal(t, 1, state.LineCount)
	assert.True(t, state.IsOpen)

	state = s.AddLine(pajamaCandidate("M", "Rosa"))
	assert.Equal(t, 2, state.Lines[0].Quantity)

	state = s.SetQuantity(key, 1)
	assert.True(t, state.Total.Equal(decimal.NewFromInt(10000)))

	state = s.RemoveLine(key)
	assert.Empty(t, state.Lines)

	state = s.Clear()
	assert.Equal(t, 0, state.LineCount)
	assert.True(t, state.IsOpen, "clear leaves visibility alone")

	state = s.Close()
	assert.False(t, state.IsOpen)
	state = s.Toggle()
	assert.True(t, state.IsOpen)
}

func TestStoreStateIsDetached(t *testing.T) {
	s := New()
	s.AddLine(pajamaCandidate("M", "Rosa"))

	snapshot := s.State()
	snapshot.Lines[0].Quantity = 99
	snapshot.Lines[0].Name = "tampered"

	current := s.State()
	assert.Equal(t, 1, current.Lines[0].Quantity)
	assert.Equal(t, "Cloud Pajama Set", current.Lines[0].Name)
}

func TestStoreFromStateRederivesAggregates(t *testing.T) {
	stale := CartState{
		Lines: []CartLine{
			{
				ProductID: "P1",
				Name:      "Cloud Pajama Set",
				UnitPrice: decimal.NewFromInt(10000),
				Size:      "M",
				Color:     "Rosa",
				Quantity:  2,
				MaxStock:  3,
			},
		},
		// Deliberately wrong cached aggregates, as a corrupted snapshot
		// would carry.
		Total:     decimal.NewFromInt(1),
		LineCount: 42,
	}

	s := FromState(stale)
	state := s.State()
	assert.True(t, state.Total.Equal(decimal.NewFromInt(20000)))
	assert.Equal(t, 2, state.LineCount)
}

func TestStoreSubscribe(t *testing.T) {
	s := New()

	var got []CartState
	cancel := s.Subscribe(func(state CartState) {
		got = append(got, state)
	})

	s.AddLine(pajamaCandidate("M", "Rosa"))
	s.Toggle()
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].LineCount)
	assert.False(t, got[1].IsOpen)

	cancel()
	s.Clear()
	assert.Len(t, got, 2, "cancelled subscriber must not fire")
}

// Two rapid increments racing on the same session must both observe the
// clamp against the latest state.
func TestStoreConcurrentAdds(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddLine(pajamaCandidate("M", "Rosa"))
		}()
	}
	wg.Wait()

	state := s.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 3, state.Lines[0].Quantity, "quantity must clamp at maxStock under contention")
	assert.Equal(t, 3, state.LineCount)
}
