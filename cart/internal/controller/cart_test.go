package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dormire/storefront/cart/internal/catalog"
	"github.com/dormire/storefront/cart/internal/checkout"
	"github.com/dormire/storefront/cart/internal/service"
	"github.com/dormire/storefront/cart/internal/session"
	"github.com/dormire/storefront/internal/constants"
	"github.com/dormire/storefront/internal/middleware"
)

const testSecretKey = "unit-test-secret"

// mintToken signs an HS256 customer token the auth middleware accepts.
func mintToken(t *testing.T, secretKey string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{constants.AUDIENCE_CUSTOMER},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	require.NoError(t, err)
	return signed
}

// orderRecorder captures what the order server saw so tests can assert
// the forwarded Authorization header.
type orderRecorder struct {
	auth string
}

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/P1") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "P1",
			"name":   "Cloud Pajama Set",
			"price":  decimal.NewFromInt(10000),
			"image":  "/img/cloud.jpg",
			"sizes":  []string{"S", "M", "L"},
			"colors": []string{"Rosa", "Salvia"},
			"stock":  3,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func orderServer(t *testing.T, status int, rec *orderRecorder) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.auth = r.Header.Get("Authorization")
		w.WriteHeader(status)
		if status == http.StatusCreated {
			json.NewEncoder(w).Encode(map[string]string{"order_id": "ord-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"error": "card declined"})
	}))
	t.Cleanup(server.Close)
	return server
}

func newRouter(t *testing.T, orderStatus int) (*mux.Router, *orderRecorder) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	rec := &orderRecorder{}
	catalogClient := catalog.NewClient(catalogServer(t).URL)
	checkoutClient := checkout.NewClient(orderServer(t, orderStatus, rec).URL)

	cartService := service.NewCartService(
		catalogClient,
		checkoutClient,
		session.NewCartRepository(cache, time.Hour),
	)
	wishlistService := service.NewWishlistService(
		catalogClient,
		session.NewWishlistRepository(cache, time.Hour),
	)

	router := mux.NewRouter()
	router.Use(middleware.Session)
	AttachCartController(router, cartService, testSecretKey)
	AttachWishlistController(router, wishlistService)
	return router, rec
}

func doJson(
	t *testing.T,
	router *mux.Router,
	method string,
	target string,
	body string,
	header map[string]string,
) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, reader)
	r.Header.Set("X-Session-Id", "s1")
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	decoded := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w, decoded
}

func TestCartRoutes(t *testing.T) {
	router, _ := newRouter(t, http.StatusCreated)

	w, body := doJson(t, router, http.MethodPost, "/carts/items",
		`{"product_id":"P1","size":"M","color":"Rosa"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])
	cart := body["data"].(map[string]interface{})["cart"].(map[string]interface{})
	assert.Equal(t, true, cart["is_open"])
	assert.Len(t, cart["lines"], 1)

	w, body = doJson(t, router, http.MethodGet, "/carts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart = body["data"].(map[string]interface{})["cart"].(map[string]interface{})
	assert.EqualValues(t, 1, cart["line_count"])

	w, _ = doJson(t, router, http.MethodPost, "/carts/items",
		`{"size":"M"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "product_id is required")

	w, body = doJson(t, router, http.MethodPut, "/carts/items/P1/M/Rosa",
		`{"quantity":99}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart = body["data"].(map[string]interface{})["cart"].(map[string]interface{})
	line := cart["lines"].([]interface{})[0].(map[string]interface{})
	assert.EqualValues(t, 3, line["quantity"], "quantity clamps to stock")

	w, body = doJson(t, router, http.MethodPost, "/carts/visibility",
		`{"action":"close"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart = body["data"].(map[string]interface{})["cart"].(map[string]interface{})
	assert.Equal(t, false, cart["is_open"])

	w, _ = doJson(t, router, http.MethodPost, "/carts/visibility",
		`{"action":"hide"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = doJson(t, router, http.MethodDelete, "/carts/items/P1/M/Rosa", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart = body["data"].(map[string]interface{})["cart"].(map[string]interface{})
	assert.Empty(t, cart["lines"])
}

func TestCheckoutRouteRequiresAuth(t *testing.T) {
	router, _ := newRouter(t, http.StatusCreated)

	w, body := doJson(t, router, http.MethodPost, "/carts/checkout",
		`{"shipping_address":{"full_name":"Dana","street":"Via Roma 1"}}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "auth-required", body["status"])
}

func TestCheckoutRouteSuccess(t *testing.T) {
	router, rec := newRouter(t, http.StatusCreated)
	token := mintToken(t, testSecretKey)

	w, _ := doJson(t, router, http.MethodPost, "/carts/items",
		`{"product_id":"P1","size":"M","color":"Rosa"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJson(t, router, http.MethodPost, "/carts/checkout",
		`{"shipping_address":{"full_name":"Dana","street":"Via Roma 1"}}`,
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ord-1", data["order_id"])
	cart := data["cart"].(map[string]interface{})
	assert.Empty(t, cart["lines"])
	assert.Equal(t, false, cart["is_open"])

	// The order service must see the scheme exactly once.
	assert.Equal(t, "Bearer "+token, rec.auth)

	w, body = doJson(t, router, http.MethodGet, "/carts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart = body["data"].(map[string]interface{})["cart"].(map[string]interface{})
	assert.Empty(t, cart["lines"])
}

func TestCheckoutRouteRejectsInvalidToken(t *testing.T) {
	router, rec := newRouter(t, http.StatusCreated)
	token := mintToken(t, "some-other-secret")

	w, _ := doJson(t, router, http.MethodPost, "/carts/items",
		`{"product_id":"P1","size":"M","color":"Rosa"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJson(t, router, http.MethodPost, "/carts/checkout",
		`{"shipping_address":{"full_name":"Dana","street":"Via Roma 1"}}`,
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "auth-required", body["status"])
	assert.Empty(t, rec.auth, "rejected request never reaches the order service")

	w, body = doJson(t, router, http.MethodGet, "/carts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := body["data"].(map[string]interface{})["cart"].(map[string]interface{})
	assert.Len(t, cart["lines"], 1, "cart untouched after failed auth")
}

func TestWishlistRoutes(t *testing.T) {
	router, _ := newRouter(t, http.StatusCreated)

	w, body := doJson(t, router, http.MethodPut, "/wishlists/P1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"].(map[string]interface{})["wishlist"], 1)

	w, body = doJson(t, router, http.MethodPost, "/wishlists/P1/toggle", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["data"].(map[string]interface{})["saved"])
	assert.Empty(t, body["data"].(map[string]interface{})["wishlist"])

	w, body = doJson(t, router, http.MethodGet, "/wishlists", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"].(map[string]interface{})["wishlist"])
}
