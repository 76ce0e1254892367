package response

import (
	"github.com/shopspring/decimal"

	"github.com/dormire/storefront/cart/internal/store"
	"github.com/dormire/storefront/cart/internal/wishlist"
)

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

type Cart struct {
	Lines     []CartLine      `json:"lines"`
	IsOpen    bool            `json:"is_open"`
	Total     decimal.Decimal `json:"total"`
	LineCount int             `json:"line_count"`
}

func NewCart(state store.CartState) Cart {
	lines := make([]CartLine, len(state.Lines))
	for i, line := range state.Lines {
		lines[i] = CartLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Image:     line.Image,
			Size:      line.Size,
			Color:     line.Color,
			Quantity:  line.Quantity,
			MaxStock:  line.MaxStock,
		}
	}
	return Cart{
		Lines:     lines,
		IsOpen:    state.IsOpen,
		Total:     state.Total,
		LineCount: state.LineCount,
	}
}

type WishlistItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image"`
}

func NewWishlist(items []wishlist.Item) []WishlistItem {
	out := make([]WishlistItem, len(items))
	for i, item := range items {
		out[i] = WishlistItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Image:     item.Image,
		}
	}
	return out
}
