package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dormire/storefront/cart/internal/session"
)

func newWishlistService(t *testing.T) (*WishlistService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })
	repository := session.NewWishlistRepository(cache, time.Hour)
	return NewWishlistService(&fakeFinder{products: pajamaCatalog()}, repository), mr
}

func TestWishlistServiceSaveAndRemove(t *testing.T) {
	svc, _ := newWishlistService(t)

	items, err := svc.SaveItem(context.Background(), "s1", "P1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Cloud Pajama Set", items[0].Name)

	// Saving twice keeps the set semantics.
	items, err = svc.SaveItem(context.Background(), "s1", "P1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = svc.RemoveItem(context.Background(), "s1", "P1")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.SaveItem(context.Background(), "s1", "missing")
	assert.Error(t, err)
}

func TestWishlistServiceToggle(t *testing.T) {
	svc, _ := newWishlistService(t)

	items, saved, err := svc.ToggleItem(context.Background(), "s1", "P2")
	require.NoError(t, err)
	assert.True(t, saved)
	require.Len(t, items, 1)

	items, saved, err = svc.ToggleItem(context.Background(), "s1", "P2")
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Empty(t, items)
}

func TestWishlistServiceRestoresFromSnapshot(t *testing.T) {
	svc, mr := newWishlistService(t)

	_, err := svc.SaveItem(context.Background(), "s1", "P1")
	require.NoError(t, err)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })
	restored := NewWishlistService(
		&fakeFinder{products: pajamaCatalog()},
		session.NewWishlistRepository(cache, time.Hour),
	)

	items, err := restored.FindWishlist(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "P1", items[0].ProductID)
}
