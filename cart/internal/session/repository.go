package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dormire/storefront/cart/internal/common/otel"
	"github.com/dormire/storefront/cart/internal/store"
	"github.com/dormire/storefront/cart/internal/wishlist"
	"github.com/dormire/storefront/internal/log"
	inOtel "github.com/dormire/storefront/internal/otel"
)

const (
	keyCart     = "carts:%s"
	keyWishlist = "wishlists:%s"
)

// ErrNoSnapshot distinguishes "this session was never snapshotted" from a
// transport failure; callers start an empty store on the former.
var ErrNoSnapshot = errors.New("no snapshot for session")

// CartRepository snapshots and restores CartState per browsing session.
// The cart store itself has no knowledge of persistence; the service layer
// calls Save after every mutation and Load on first touch of a session.
type CartRepository struct {
	cache *redis.Client
	ttl   time.Duration
}

func NewCartRepository(cache *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{cache: cache, ttl: ttl}
}

func (r *CartRepository) Save(c context.Context, sessionID string, state store.CartState) error {
	c, span := otel.Tracer.Start(c, "CartRepository Save")
	defer span.End()

	cacheKey := fmt.Sprintf(keyCart, sessionID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartRepository Save").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	data, err := json.Marshal(state)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	err = r.cache.Set(c, cacheKey, data, r.ttl).Err()
	if err != nil {
		err = fmt.Errorf("failed saving cart snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	return nil
}

func (r *CartRepository) Load(c context.Context, sessionID string) (store.CartState, error) {
	c, span := otel.Tracer.Start(c, "CartRepository Load")
	defer span.End()

	cacheKey := fmt.Sprintf(keyCart, sessionID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartRepository Load").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	data, err := r.cache.Get(c, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.CartState{}, ErrNoSnapshot
		}
		err = fmt.Errorf("failed loading cart snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.CartState{}, err
	}

	state := store.CartState{}
	err = json.Unmarshal(data, &state)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cart snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.CartState{}, err
	}

	return state, nil
}

func (r *CartRepository) Delete(c context.Context, sessionID string) error {
	c, span := otel.Tracer.Start(c, "CartRepository Delete")
	defer span.End()

	err := r.cache.Del(c, fmt.Sprintf(keyCart, sessionID)).Err()
	if err != nil {
		err = fmt.Errorf("failed deleting cart snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		zerolog.Ctx(c).Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

// WishlistRepository mirrors CartRepository for the saved-items set.
type WishlistRepository struct {
	cache *redis.Client
	ttl   time.Duration
}

func NewWishlistRepository(cache *redis.Client, ttl time.Duration) *WishlistRepository {
	return &WishlistRepository{cache: cache, ttl: ttl}
}

func (r *WishlistRepository) Save(
	c context.Context,
	sessionID string,
	items []wishlist.Item,
) error {
	c, span := otel.Tracer.Start(c, "WishlistRepository Save")
	defer span.End()

	cacheKey := fmt.Sprintf(keyWishlist, sessionID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistRepository Save").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	data, err := json.Marshal(items)
	if err != nil {
		err = fmt.Errorf("failed marshaling wishlist snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	err = r.cache.Set(c, cacheKey, data, r.ttl).Err()
	if err != nil {
		err = fmt.Errorf("failed saving wishlist snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	return nil
}

func (r *WishlistRepository) Load(c context.Context, sessionID string) ([]wishlist.Item, error) {
	c, span := otel.Tracer.Start(c, "WishlistRepository Load")
	defer span.End()

	cacheKey := fmt.Sprintf(keyWishlist, sessionID)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistRepository Load").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	data, err := r.cache.Get(c, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		err = fmt.Errorf("failed loading wishlist snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	items := []wishlist.Item{}
	err = json.Unmarshal(data, &items)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling wishlist snapshot with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	return items, nil
}
