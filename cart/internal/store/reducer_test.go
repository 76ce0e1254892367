package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pajamaCandidate(size, color string) LineCandidate {
	return LineCandidate{
		ProductID: "P1",
		Name:      "Cloud Pajama Set",
		UnitPrice: decimal.NewFromInt(10000),
		Image:     "https://img.example.com/p1.jpg",
		Size:      size,
		Color:     color,
		MaxStock:  3,
	}
}

func assertInvariants(t *testing.T, state CartState) {
	t.Helper()

	seen := map[LineKey]bool{}
	for _, line := range state.Lines {
		assert.GreaterOrEqual(t, line.Quantity, 1, "no zero-quantity line may persist")
		assert.LessOrEqual(t, line.Quantity, line.MaxStock, "quantity must not exceed maxStock")
		assert.False(t, seen[line.Key()], "no two lines may share a composite identity")
		seen[line.Key()] = true
	}

	total, lineCount := derive(state.Lines)
	assert.True(t, state.Total.Equal(total), "cached total drifted from lines")
	assert.Equal(t, lineCount, state.LineCount, "cached lineCount drifted from lines")
}

func TestReduceAddLine(t *testing.T) {
	tests := []struct {
		name     string
		actions  []Action
		expected func(t *testing.T, state CartState)
	}{
		{
			name:    "given empty cart adding a candidate should insert one line at quantity 1",
			actions: []Action{AddLine{Candidate: pajamaCandidate("M", "Rosa")}},
			expected: func(t *testing.T, state CartState) {
				require.Len(t, state.Lines, 1)
				assert.Equal(t, 1, state.Lines[0].Quantity)
				assert.True(t, state.Total.Equal(decimal.NewFromInt(10000)))
				assert.Equal(t, 1, state.LineCount)
				assert.True(t, state.IsOpen, "adding surfaces the cart")
			},
		},
		{
			name: "given same identity twice should merge into one line at quantity 2",
			actions: []Action{
				AddLine{Candidate: pajamaCandidate("M", "Rosa")},
				AddLine{Candidate: pajamaCandidate("M", "Rosa")},
			},
			expected: func(t *testing.T, state CartState) {
				require.Len(t, state.Lines, 1)
				assert.Equal(t, 2, state.Lines[0].Quantity)
				assert.True(t, state.Total.Equal(decimal.NewFromInt(20000)))
			},
		},
		{
			name: "given four adds with maxStock 3 quantity should cap at 3",
			actions: []Action{
				AddLine{Candidate: pajamaCandidate("M", "Rosa")},
				AddLine{Candidate: pajamaCandidate("M", "Rosa")},
				AddLine{Candidate: pajamaCandidate("M", "Rosa")},
				AddLine{Candidate: pajamaCandidate("M", "Rosa")},
			},
			expected: func(t *testing.T, state CartState) {
				require.Len(t, state.Lines, 1)
				assert.Equal(t, 3, state.Lines[0].Quantity)
				assert.True(t, state.Total.Equal(decimal.NewFromInt(30000)))
			},
		},
		{
			name: "given different size should create a distinct line",
			actions: []Action{
				AddLine{Candidate: pajamaCandidate("M", "Rosa")},
				AddLine{Candidate: pajamaCandidate("L", "Rosa")},
			},
			expected: func(t *testing.T, state CartState) {
				require.Len(t, state.Lines, 2)
				assert.Equal(t, 2, state.LineCount)
			},
		},
		{
			name: "given different color should create a distinct line",
			actions: []Action{
				AddLine{Candidate: pajamaCandidate("M", "Rosa")},
				AddLine{Candidate: pajamaCandidate("M", "Salvia")},
			},
			expected: func(t *testing.T, state CartState) {
				require.Len(t, state.Lines, 2)
			},
		},
		{
			name: "given maxStock 0 line degenerates to a never-incrementable line",
			actions: []Action{
				AddLine{Candidate: LineCandidate{
					ProductID: "P9",
					Name:      "Sold Out Robe",
					UnitPrice: decimal.NewFromInt(25000),
					Size:      "S",
					Color:     "Crema",
					MaxStock:  0,
				}},
				AddLine{Candidate: LineCandidate{
					ProductID: "P9",
					Name:      "Sold Out Robe",
					UnitPrice: decimal.NewFromInt(25000),
					Size:      "S",
					Color:     "Crema",
					MaxStock:  0,
				}},
			},
			expected: func(t *testing.T, state CartState) {
				require.Len(t, state.Lines, 1)
				assert.Equal(t, 1, state.Lines[0].Quantity)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := CartState{}
			for _, action := range tt.actions {
				state = Reduce(state, action)
			}
			tt.expected(t, state)
			assertInvariants(t, state)
		})
	}
}

func TestReduceSetQuantity(t *testing.T) {
	base := Reduce(CartState{}, AddLine{Candidate: pajamaCandidate("M", "Rosa")})
	key := LineKey{ProductID: "P1", Size: "M", Color: "Rosa"}

	t.Run("set within range updates quantity and total", func(t *testing.T) {
		state := Reduce(base, SetQuantity{Key: key, Quantity: 2})
		require.Len(t, state.Lines, 1)
		assert.Equal(t, 2, state.Lines[0].Quantity)
		assert.True(t, state.Total.Equal(decimal.NewFromInt(20000)))
	})

	t.Run("set above maxStock clamps to maxStock", func(t *testing.T) {
		state := Reduce(base, SetQuantity{Key: key, Quantity: 99})
		require.Len(t, state.Lines, 1)
		assert.Equal(t, 3, state.Lines[0].Quantity)
		assert.True(t, state.Total.Equal(decimal.NewFromInt(30000)))
	})

	t.Run("set to zero removes the line entirely", func(t *testing.T) {
		state := Reduce(base, SetQuantity{Key: key, Quantity: 0})
		assert.Empty(t, state.Lines)
		assert.True(t, state.Total.IsZero())
		assert.Equal(t, 0, state.LineCount)
	})

	t.Run("set to negative removes the line entirely", func(t *testing.T) {
		state := Reduce(base, SetQuantity{Key: key, Quantity: -5})
		assert.Empty(t, state.Lines)
	})

	t.Run("unknown key is a no-op", func(t *testing.T) {
		state := Reduce(base, SetQuantity{Key: LineKey{ProductID: "nope"}, Quantity: 2})
		assert.Equal(t, base.Lines, state.Lines)
	})
}

func TestReduceRemoveLine(t *testing.T) {
	base := Reduce(CartState{}, AddLine{Candidate: pajamaCandidate("M", "Rosa")})
	key := LineKey{ProductID: "P1", Size: "M", Color: "Rosa"}

	t.Run("remove existing line", func(t *testing.T) {
		state := Reduce(base, RemoveLine{Key: key})
		assert.Empty(t, state.Lines)
		assert.Equal(t, 0, state.LineCount)
	})

	t.Run("remove is idempotent on absent key", func(t *testing.T) {
		state := Reduce(base, RemoveLine{Key: key})
		state = Reduce(state, RemoveLine{Key: key})
		assert.Empty(t, state.Lines)
	})

	t.Run("remove keeps sibling variants", func(t *testing.T) {
		state := Reduce(base, AddLine{Candidate: pajamaCandidate("L", "Rosa")})
		state = Reduce(state, RemoveLine{Key: key})
		require.Len(t, state.Lines, 1)
		assert.Equal(t, "L", state.Lines[0].Size)
	})
}

func TestReduceClearAndVisibility(t *testing.T) {
	state := Reduce(CartState{}, AddLine{Candidate: pajamaCandidate("M", "Rosa")})
	state = Reduce(state, AddLine{Candidate: pajamaCandidate("L", "Rosa")})
	require.True(t, state.IsOpen)

	state = Reduce(state, Clear{})
	assert.Empty(t, state.Lines)
	assert.True(t, state.Total.IsZero())
	assert.Equal(t, 0, state.LineCount)
	assert.True(t, state.IsOpen, "clear must not touch visibility")

	state = Reduce(state, Close{})
	assert.False(t, state.IsOpen)
	state = Reduce(state, Toggle{})
	assert.True(t, state.IsOpen)
	state = Reduce(state, Toggle{})
	assert.False(t, state.IsOpen)
	state = Reduce(state, Open{})
	assert.True(t, state.IsOpen)
}

func TestReduceIsPure(t *testing.T) {
	before := Reduce(CartState{}, AddLine{Candidate: pajamaCandidate("M", "Rosa")})
	snapshot := before.clone()

	Reduce(before, AddLine{Candidate: pajamaCandidate("M", "Rosa")})
	Reduce(before, SetQuantity{Key: snapshot.Lines[0].Key(), Quantity: 3})
	Reduce(before, Clear{})

	assert.Equal(t, snapshot.Lines, before.Lines, "Reduce must not mutate its input")
	assert.Equal(t, snapshot.LineCount, before.LineCount)
}

// TestInvariantPreservation sweeps a long mixed command sequence and checks
// the state invariants after every single transition: bounded quantities,
// unique identities, exact cached aggregates, no zero lines.
func TestInvariantPreservation(t *testing.T) {
	keyM := LineKey{ProductID: "P1", Size: "M", Color: "Rosa"}
	keyL := LineKey{ProductID: "P1", Size: "L", Color: "Rosa"}

	actions := []Action{
		AddLine{Candidate: pajamaCandidate("M", "Rosa")},
		AddLine{Candidate: pajamaCandidate("M", "Rosa")},
		AddLine{Candidate: pajamaCandidate("L", "Rosa")},
		SetQuantity{Key: keyM, Quantity: 99},
		AddLine{Candidate: pajamaCandidate("M", "Rosa")},
		Toggle{},
		SetQuantity{Key: keyL, Quantity: 0},
		RemoveLine{Key: keyL},
		AddLine{Candidate: pajamaCandidate("L", "Salvia")},
		SetQuantity{Key: keyM, Quantity: -1},
		Clear{},
		AddLine{Candidate: pajamaCandidate("M", "Rosa")},
		Close{},
		Open{},
	}

	state := CartState{}
	for i, action := range actions {
		state = Reduce(state, action)
		assertInvariants(t, state)
		if t.Failed() {
			t.Fatalf("invariant broken after action %d (%T)", i, action)
		}
	}
}
