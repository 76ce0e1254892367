package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dormire/storefront/cart/internal/common/otel"
	"github.com/dormire/storefront/cart/internal/service"
	inErrors "github.com/dormire/storefront/internal/errors"
	inHttp "github.com/dormire/storefront/internal/http"
	"github.com/dormire/storefront/internal/log"
	inOtel "github.com/dormire/storefront/internal/otel"
)

type WishlistController struct {
	service *service.WishlistService
}

func AttachWishlistController(router *mux.Router, service *service.WishlistService) {
	controller := WishlistController{service: service}

	wishlists := router.PathPrefix("/wishlists").Subrouter()
	wishlists.HandleFunc("", controller.FindWishlist).Methods(http.MethodGet)
	wishlists.HandleFunc("/{productId}", controller.SaveItem).Methods(http.MethodPut)
	wishlists.HandleFunc("/{productId}", controller.RemoveItem).Methods(http.MethodDelete)
	wishlists.HandleFunc("/{productId}/toggle", controller.ToggleItem).Methods(http.MethodPost)
}

func (t WishlistController) FindWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController FindWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistController FindWishlist").
		Str(log.KeyProcess, "finding wishlist").
		Logger()

	c = logger.WithContext(c)
	items, err := t.service.FindWishlist(c, log.SessionIDFromContext(c))
	if err != nil {
		err = fmt.Errorf("failed finding wishlist with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found wishlist",
		"data":       map[string]interface{}{"wishlist": items},
	})
}

func (t WishlistController) SaveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController SaveItem")
	defer span.End()

	productID := mux.Vars(r)["productId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistController SaveItem").
		Str(log.KeyProductID, productID).
		Str(log.KeyProcess, "saving item").
		Logger()

	c = logger.WithContext(c)
	items, err := t.service.SaveItem(c, log.SessionIDFromContext(c), productID)
	if err != nil {
		err = fmt.Errorf("failed saving item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": wishlistStatusCode(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("saved item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "saved item to wishlist",
		"data":       map[string]interface{}{"wishlist": items},
	})
}

func wishlistStatusCode(err error) int {
	if errors.Is(err, inErrors.ErrProductFetch) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (t WishlistController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController RemoveItem")
	defer span.End()

	productID := mux.Vars(r)["productId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistController RemoveItem").
		Str(log.KeyProductID, productID).
		Str(log.KeyProcess, "removing item").
		Logger()

	c = logger.WithContext(c)
	items, err := t.service.RemoveItem(c, log.SessionIDFromContext(c), productID)
	if err != nil {
		err = fmt.Errorf("failed removing item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "removed item from wishlist",
		"data":       map[string]interface{}{"wishlist": items},
	})
}

func (t WishlistController) ToggleItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController ToggleItem")
	defer span.End()

	productID := mux.Vars(r)["productId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistController ToggleItem").
		Str(log.KeyProductID, productID).
		Str(log.KeyProcess, "toggling item").
		Logger()

	c = logger.WithContext(c)
	items, saved, err := t.service.ToggleItem(c, log.SessionIDFromContext(c), productID)
	if err != nil {
		err = fmt.Errorf("failed toggling item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": wishlistStatusCode(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("toggled item saved=%t", saved)

	message := "removed item from wishlist"
	if saved {
		message = "saved item to wishlist"
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    message,
		"data": map[string]interface{}{
			"wishlist": items,
			"saved":    saved,
		},
	})
}
