package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dormire/storefront/cart/internal/catalog"
	"github.com/dormire/storefront/cart/internal/checkout"
	"github.com/dormire/storefront/cart/internal/common/otel"
	"github.com/dormire/storefront/cart/internal/session"
	"github.com/dormire/storefront/cart/internal/store"
	"github.com/dormire/storefront/cart/pkg/request"
	"github.com/dormire/storefront/cart/pkg/response"
	inErrors "github.com/dormire/storefront/internal/errors"
	"github.com/dormire/storefront/internal/log"
	inOtel "github.com/dormire/storefront/internal/otel"
)

// Fallback variant when the catalog lists no size or color options.
const defaultVariant = "standard"

type ProductFinder interface {
	FindProductById(c context.Context, productID string) (catalog.Product, error)
}

type OrderSubmitter interface {
	Submit(c context.Context, bearer string, param checkout.SubmitOrder) (checkout.Result, error)
}

// CartService owns one cart store per browsing session. Stores live in
// memory and are snapshotted to the session repository after every
// mutation; a session seen for the first time by this process is restored
// from its snapshot.
type CartService struct {
	finder    ProductFinder
	submitter OrderSubmitter
	snapshots *session.CartRepository

	mu     sync.Mutex
	stores map[string]*store.Store
}

func NewCartService(
	finder ProductFinder,
	submitter OrderSubmitter,
	snapshots *session.CartRepository,
) *CartService {
	return &CartService{
		finder:    finder,
		submitter: submitter,
		snapshots: snapshots,
		stores:    map[string]*store.Store{},
	}
}

func (svc *CartService) storeFor(c context.Context, sessionID string) (*store.Store, error) {
	svc.mu.Lock()
	if st, ok := svc.stores[sessionID]; ok {
		svc.mu.Unlock()
		return st, nil
	}
	svc.mu.Unlock()

	state, err := svc.snapshots.Load(c, sessionID)
	if err != nil && !errors.Is(err, session.ErrNoSnapshot) {
		return nil, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	// Another handler may have restored the same session meanwhile.
	if st, ok := svc.stores[sessionID]; ok {
		return st, nil
	}
	st := store.FromState(state)
	svc.stores[sessionID] = st
	return st, nil
}

// snapshot persists the post-transition state. Best effort: the in-memory
// store is authoritative for the session's lifetime, so a cache hiccup is
// logged and the mutation still stands.
func (svc *CartService) snapshot(c context.Context, sessionID string, state store.CartState) {
	err := svc.snapshots.Save(c, sessionID, state)
	if err != nil {
		zerolog.Ctx(c).Error().Err(err).Msg("failed snapshotting cart, continuing")
	}
}

func (svc *CartService) FindCart(c context.Context, sessionID string) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService FindCart")
	defer span.End()

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring cart with error=%w", err)
		inOtel.RecordError(err, span)
		zerolog.Ctx(c).Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	return response.NewCart(st.State()), nil
}

// AddItem resolves the add-time product snapshot from the catalog and
// merges it into the session's cart. Beyond-stock adds are a silent
// no-op on the increment, matching the can't-exceed-stock policy.
func (svc *CartService) AddItem(
	c context.Context,
	sessionID string,
	param request.AddCartItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyProductID, param.ProductID).
		Str(log.KeySize, param.Size).
		Str(log.KeyColor, param.Color).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in catalog").Logger()
	logger.Info().Msgf("finding productId=%s in catalog", param.ProductID)
	c = logger.WithContext(c)
	product, err := svc.finder.FindProductById(c, param.ProductID)
	if err != nil {
		err = fmt.Errorf("%w: %w", inErrors.ErrProductFetch, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msgf("found productId=%s in catalog", param.ProductID)

	logger = logger.With().Str(log.KeyProcess, "resolving variant").Logger()
	size, err := resolveVariant(param.Size, product.Sizes)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	color, err := resolveVariant(param.Color, product.Colors)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "adding line").Logger()
	state := st.AddLine(store.LineCandidate{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Image:     product.Image,
		Size:      size,
		Color:     color,
		MaxStock:  product.Stock,
	})
	logger.Info().
		Int(log.KeyLineCount, state.LineCount).
		Str(log.KeyCartTotal, state.Total.String()).
		Msg("added line")

	svc.snapshot(c, sessionID, state)
	return response.NewCart(state), nil
}

// resolveVariant applies the caller-supplied fallback rule: empty picks
// the catalog's first option (or the generic fallback when the catalog
// lists none); anything else must be one of the listed options.
func resolveVariant(requested string, options []string) (string, error) {
	if requested == "" {
		if len(options) > 0 {
			return options[0], nil
		}
		return defaultVariant, nil
	}
	if len(options) > 0 && !slices.Contains(options, requested) {
		return "", fmt.Errorf("%w: %q", inErrors.ErrUnknownVariant, requested)
	}
	return requested, nil
}

func (svc *CartService) RemoveItem(
	c context.Context,
	sessionID string,
	key store.LineKey,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyProductID, key.ProductID).
		Str(log.KeySize, key.Size).
		Str(log.KeyColor, key.Color).
		Logger()

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	// Absent key is a no-op, which keeps double-clicked removes safe.
	state := st.RemoveLine(key)
	logger.Info().Int(log.KeyLineCount, state.LineCount).Msg("removed line")

	svc.snapshot(c, sessionID, state)
	return response.NewCart(state), nil
}

func (svc *CartService) UpdateQuantity(
	c context.Context,
	sessionID string,
	key store.LineKey,
	quantity int,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Str(log.KeyProductID, key.ProductID).
		Int(log.KeyQuantity, quantity).
		Logger()

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	state := st.SetQuantity(key, quantity)
	logger.Info().Int(log.KeyLineCount, state.LineCount).Msg("updated quantity")

	svc.snapshot(c, sessionID, state)
	return response.NewCart(state), nil
}

func (svc *CartService) ClearCart(c context.Context, sessionID string) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring cart with error=%w", err)
		inOtel.RecordError(err, span)
		zerolog.Ctx(c).Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	state := st.Clear()
	svc.snapshot(c, sessionID, state)
	return response.NewCart(state), nil
}

func (svc *CartService) SetVisibility(
	c context.Context,
	sessionID string,
	action string,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService SetVisibility")
	defer span.End()

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring cart with error=%w", err)
		inOtel.RecordError(err, span)
		zerolog.Ctx(c).Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	var state store.CartState
	switch action {
	case "open":
		state = st.Open()
	case "close":
		state = st.Close()
	default:
		state = st.Toggle()
	}

	svc.snapshot(c, sessionID, state)
	return response.NewCart(state), nil
}

// Checkout serializes the session's cart and hands it to the order
// service. The flow has exactly one retry point: anything but success
// leaves the cart untouched so the user can fix the problem (sign in,
// change address) and resubmit the same contents.
func (svc *CartService) Checkout(
	c context.Context,
	sessionID string,
	bearer string,
	param request.CheckoutCart,
) (checkout.Result, response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Checkout").
		Logger()

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return checkout.Result{}, response.Cart{}, err
	}

	state := st.State()
	if len(state.Lines) == 0 {
		logger.Info().Msg("checkout on empty cart rejected")
		result := checkout.Result{
			Status:  checkout.StatusFailed,
			Message: inErrors.ErrEmptyCart.Error(),
		}
		return result, response.NewCart(state), nil
	}

	items := make([]checkout.Item, len(state.Lines))
	for i, line := range state.Lines {
		items[i] = checkout.Item{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Size:      line.Size,
			Color:     line.Color,
		}
	}

	logger = logger.With().Str(log.KeyProcess, "submitting order").Logger()
	logger.Info().Msgf("submitting %d lines to order service", len(items))
	c = logger.WithContext(c)
	result, err := svc.submitter.Submit(c, bearer, checkout.SubmitOrder{
		Items:           items,
		ShippingAddress: param.ShippingAddress,
	})
	if err != nil {
		err = fmt.Errorf("failed submitting order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return checkout.Result{}, response.NewCart(state), err
	}
	logger = logger.With().
		Str(log.KeyCheckoutStatus, result.Status.String()).
		Str(log.KeyOrderID, result.OrderID).
		Logger()
	logger.Info().Msg("order service answered")

	if result.Status != checkout.StatusSuccess {
		// Cart stays byte-for-byte as it was; the user may retry.
		return result, response.NewCart(st.State()), nil
	}

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart after successful checkout")
	st.Clear()
	cleared := st.Close()
	svc.snapshot(c, sessionID, cleared)
	logger.Info().Msg("cleared cart after successful checkout")

	return result, response.NewCart(cleared), nil
}
