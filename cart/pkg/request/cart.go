package request

import (
	"github.com/dormire/storefront/cart/internal/checkout"
)

type AddCartItem struct {
	ProductID string `validate:"required" json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateCartItem struct {
	Quantity int `json:"quantity"`
}

type CartVisibility struct {
	Action string `validate:"required,oneof=open close toggle" json:"action"`
}

// CheckoutCart carries the chosen shipping address. Field-level address
// validation is owned by the order service; a rejection comes back as a
// failure result with the cart preserved.
type CheckoutCart struct {
	ShippingAddress checkout.Address `validate:"required" json:"shipping_address"`
}

type SaveWishlistItem struct {
	ProductID string `validate:"required" json:"product_id"`
}
