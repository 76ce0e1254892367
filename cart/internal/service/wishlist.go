package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dormire/storefront/cart/internal/common/otel"
	"github.com/dormire/storefront/cart/internal/session"
	"github.com/dormire/storefront/cart/internal/wishlist"
	"github.com/dormire/storefront/cart/pkg/response"
	inErrors "github.com/dormire/storefront/internal/errors"
	"github.com/dormire/storefront/internal/log"
	inOtel "github.com/dormire/storefront/internal/otel"
)

// WishlistService keeps one saved-items store per browsing session,
// following the same restore-on-first-touch and snapshot-after-mutation
// shape as CartService.
type WishlistService struct {
	finder    ProductFinder
	snapshots *session.WishlistRepository

	mu     sync.Mutex
	stores map[string]*wishlist.Store
}

func NewWishlistService(
	finder ProductFinder,
	snapshots *session.WishlistRepository,
) *WishlistService {
	return &WishlistService{
		finder:    finder,
		snapshots: snapshots,
		stores:    map[string]*wishlist.Store{},
	}
}

func (svc *WishlistService) storeFor(c context.Context, sessionID string) (*wishlist.Store, error) {
	svc.mu.Lock()
	if st, ok := svc.stores[sessionID]; ok {
		svc.mu.Unlock()
		return st, nil
	}
	svc.mu.Unlock()

	items, err := svc.snapshots.Load(c, sessionID)
	if err != nil && !errors.Is(err, session.ErrNoSnapshot) {
		return nil, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if st, ok := svc.stores[sessionID]; ok {
		return st, nil
	}
	st := wishlist.FromItems(items)
	svc.stores[sessionID] = st
	return st, nil
}

func (svc *WishlistService) snapshot(c context.Context, sessionID string, items []wishlist.Item) {
	err := svc.snapshots.Save(c, sessionID, items)
	if err != nil {
		zerolog.Ctx(c).Error().Err(err).Msg("failed snapshotting wishlist, continuing")
	}
}

func (svc *WishlistService) FindWishlist(
	c context.Context,
	sessionID string,
) ([]response.WishlistItem, error) {
	c, span := otel.Tracer.Start(c, "WishlistService FindWishlist")
	defer span.End()

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring wishlist with error=%w", err)
		inOtel.RecordError(err, span)
		zerolog.Ctx(c).Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return response.NewWishlist(st.Items()), nil
}

func (svc *WishlistService) item(c context.Context, productID string) (wishlist.Item, error) {
	product, err := svc.finder.FindProductById(c, productID)
	if err != nil {
		return wishlist.Item{}, fmt.Errorf("%w: %w", inErrors.ErrProductFetch, err)
	}
	return wishlist.Item{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Image:     product.Image,
	}, nil
}

func (svc *WishlistService) SaveItem(
	c context.Context,
	sessionID string,
	productID string,
) ([]response.WishlistItem, error) {
	c, span := otel.Tracer.Start(c, "WishlistService SaveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistService SaveItem").
		Str(log.KeyProductID, productID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in catalog").Logger()
	c = logger.WithContext(c)
	item, err := svc.item(c, productID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring wishlist with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	items := st.Add(item)
	logger.Info().Msgf("saved productId=%s to wishlist", productID)

	svc.snapshot(c, sessionID, items)
	return response.NewWishlist(items), nil
}

func (svc *WishlistService) RemoveItem(
	c context.Context,
	sessionID string,
	productID string,
) ([]response.WishlistItem, error) {
	c, span := otel.Tracer.Start(c, "WishlistService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistService RemoveItem").
		Str(log.KeyProductID, productID).
		Logger()

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring wishlist with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	items := st.Remove(productID)
	logger.Info().Msgf("removed productId=%s from wishlist", productID)

	svc.snapshot(c, sessionID, items)
	return response.NewWishlist(items), nil
}

// ToggleItem returns whether the product ended up saved so the handler
// can tell both outcomes apart without diffing the list.
func (svc *WishlistService) ToggleItem(
	c context.Context,
	sessionID string,
	productID string,
) ([]response.WishlistItem, bool, error) {
	c, span := otel.Tracer.Start(c, "WishlistService ToggleItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistService ToggleItem").
		Str(log.KeyProductID, productID).
		Logger()

	st, err := svc.storeFor(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed restoring wishlist with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, false, err
	}

	// The catalog is only consulted when the toggle will insert.
	if !st.Has(productID) {
		logger = logger.With().Str(log.KeyProcess, "finding product in catalog").Logger()
		c = logger.WithContext(c)
		item, err := svc.item(c, productID)
		if err != nil {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, false, err
		}
		items := st.Add(item)
		svc.snapshot(c, sessionID, items)
		return response.NewWishlist(items), true, nil
	}

	items := st.Remove(productID)
	logger.Info().Msgf("toggled productId=%s off wishlist", productID)

	svc.snapshot(c, sessionID, items)
	return response.NewWishlist(items), false, nil
}
