package errors

import (
	"errors"
)

var (
	ErrEmptyAuth      = errors.New("missing authorization")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrEmptySession   = errors.New("missing session id")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrProductFetch   = errors.New("failed fetching product from catalog")
	ErrUnknownVariant = errors.New("unknown size or color variant")
)
