package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dormire/storefront/cart/internal/common/otel"
	inHttp "github.com/dormire/storefront/internal/http"
	"github.com/dormire/storefront/internal/log"
	inOtel "github.com/dormire/storefront/internal/otel"
)

// Product is the catalog's snapshot of a sellable item at lookup time.
// The cart captures name, price, image, and the stock ceiling from this
// snapshot when a line is added and never re-fetches them.
type Product struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Sizes  []string        `json:"sizes"`
	Colors []string        `json:"colors"`
	Stock  int             `json:"stock"`
}

// Client talks to the external Product Catalog Provider.
type Client struct {
	baseUrl string
	http    *http.Client
}

func NewClient(baseUrl string) Client {
	return Client{baseUrl: baseUrl, http: otelhttp.DefaultClient}
}

func (cl Client) FindProductById(c context.Context, productID string) (Product, error) {
	c, span := otel.Tracer.Start(c, "catalog.Client FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "catalog.Client FindProductById").
		Str(log.KeyProductID, productID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in catalog").Logger()
	logger.Info().Msgf("finding productId=%s in catalog", productID)
	req, err := http.NewRequestWithContext(
		c,
		http.MethodGet,
		cl.baseUrl+"/"+productID,
		nil,
	)
	if err != nil {
		err = fmt.Errorf("failed creating catalog request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}
	req.Header.Add(inHttp.KEY_HEADER_REQUEST_ID, log.RequestIDFromContext(c))

	resp, err := cl.http.Do(req)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%s with error=%w", productID, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("productId=%s not found in catalog", productID)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "decoding catalog response").Logger()
	product := Product{}
	err = json.NewDecoder(resp.Body).Decode(&product)
	if err != nil {
		err = fmt.Errorf("failed decoding catalog response with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Product{}, err
	}
	logger.Info().Msgf("found productId=%s in catalog", productID)

	return product, nil
}
