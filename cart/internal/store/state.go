package store

import (
	"github.com/shopspring/decimal"
)

// LineKey is the composite identity of a cart line. Two operations refer
// to the same line iff product, size, and color are all equal; the same
// product in two sizes occupies two lines.
type LineKey struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CartLine is one addressable row of the cart. Name, price, and image are
// captured from the catalog at add-time and never re-fetched. Quantity is
// always in [1, MaxStock]; a line that would reach zero is removed instead.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	MaxStock  int             `json:"max_stock"`
}

func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// LineCandidate is the add-time snapshot supplied by the catalog. It
// carries no quantity; adding an existing identity increments instead.
type LineCandidate struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Image     string
	Size      string
	Color     string
	MaxStock  int
}

func (cand LineCandidate) Key() LineKey {
	return LineKey{ProductID: cand.ProductID, Size: cand.Size, Color: cand.Color}
}

// CartState is the aggregate. Lines keep insertion order for display.
// Total and LineCount are exact functions of Lines, recomputed by the
// reducer after every transition; they are never independently mutable.
type CartState struct {
	Lines     []CartLine      `json:"lines"`
	IsOpen    bool            `json:"is_open"`
	Total     decimal.Decimal `json:"total"`
	LineCount int             `json:"line_count"`
}

func (s CartState) clone() CartState {
	next := s
	next.Lines = append([]CartLine(nil), s.Lines...)
	return next
}

// findLine returns the index of the line matching key, or -1. Lookup is
// centralized here so identity comparison happens in exactly one place.
func findLine(lines []CartLine, key LineKey) int {
	for i := range lines {
		if lines[i].Key() == key {
			return i
		}
	}
	return -1
}

// derive is the single recomputation point for the cached aggregates.
func derive(lines []CartLine) (total decimal.Decimal, lineCount int) {
	total = decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		lineCount += line.Quantity
	}
	return total, lineCount
}
