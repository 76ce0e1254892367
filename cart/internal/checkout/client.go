package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dormire/storefront/cart/internal/common/otel"
	inHttp "github.com/dormire/storefront/internal/http"
	"github.com/dormire/storefront/internal/log"
	inOtel "github.com/dormire/storefront/internal/otel"
)

// Status is the tri-state outcome of an order submission. Failures are
// data, never panics, and anything but StatusSuccess leaves the caller's
// cart untouched so the same contents can be resubmitted.
type Status int

const (
	StatusSuccess Status = iota
	StatusAuthRequired
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusAuthRequired:
		return "auth-required"
	default:
		return "failed"
	}
}

type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type Address struct {
	FullName   string `json:"full_name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type SubmitOrder struct {
	Items           []Item  `json:"items"`
	ShippingAddress Address `json:"shipping_address"`
}

type Result struct {
	Status  Status `json:"status"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client talks to the external Order Submission Service. An order is
// atomic from the cart's point of view: either fully created or not
// created at all.
type Client struct {
	baseUrl string
	http    *http.Client
}

func NewClient(baseUrl string) Client {
	return Client{baseUrl: baseUrl, http: otelhttp.DefaultClient}
}

// Submit posts the finalized cart lines plus the shipping address.
// 200/201 with an order_id maps to StatusSuccess, 401 to
// StatusAuthRequired, and every other response or transport failure to
// StatusFailed with a user-surfaceable message.
func (cl Client) Submit(c context.Context, bearer string, param SubmitOrder) (Result, error) {
	c, span := otel.Tracer.Start(c, "checkout.Client Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "checkout.Client Submit").
		Int("items", len(param.Items)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "creating checkout request").Logger()
	logger.Info().Msg("creating checkout request to order service")
	orderJson, err := json.Marshal(param)
	if err != nil {
		err = fmt.Errorf("failed marshaling order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		cl.baseUrl+"/orders",
		bytes.NewBuffer(orderJson),
	)
	if err != nil {
		err = fmt.Errorf("failed creating checkout request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{}, err
	}
	req.Header.Add(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_APPLICATION_JSON)
	req.Header.Add(inHttp.KEY_HEADER_REQUEST_ID, log.RequestIDFromContext(c))
	if bearer != "" {
		req.Header.Add("Authorization", "Bearer "+bearer)
	}
	logger.Info().Msg("created checkout request to order service")

	logger = logger.With().Str(log.KeyProcess, "sending checkout request").Logger()
	logger.Info().Msg("sending checkout request to order service")
	span.AddEvent("sending checkout request to order service")
	resp, err := cl.http.Do(req)
	if err != nil {
		err = fmt.Errorf("failed sending checkout request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{Status: StatusFailed, Message: err.Error()}, nil
	}
	defer resp.Body.Close()
	span.AddEvent("sent checkout request to order service")
	logger.Info().Msg("sent checkout request to order service")

	logger = logger.With().Str(log.KeyProcess, "decoding checkout response").Logger()
	respBody := map[string]interface{}{}
	decodeErr := json.NewDecoder(resp.Body).Decode(&respBody)

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// A success status without a verifiable order id must not clear
		// the caller's cart.
		if decodeErr != nil {
			err = fmt.Errorf("failed decoding checkout response with error=%w", decodeErr)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return Result{Status: StatusFailed, Message: err.Error()}, nil
		}
		orderID, _ := respBody["order_id"].(string)
		if orderID == "" {
			err = fmt.Errorf(
				"order service answered status code=%d without order_id",
				resp.StatusCode,
			)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return Result{Status: StatusFailed, Message: err.Error()}, nil
		}
		logger = logger.With().Str(log.KeyOrderID, orderID).Logger()
		span.AddEvent("order created")
		logger.Info().Msgf("order service created orderId=%s", orderID)
		return Result{Status: StatusSuccess, OrderID: orderID}, nil
	case resp.StatusCode == http.StatusUnauthorized:
		logger.Info().Msg("order service requires authentication, cart preserved")
		return Result{
			Status:  StatusAuthRequired,
			Message: "authentication required, sign in and resubmit",
		}, nil
	default:
		message, _ := respBody["error"].(string)
		if message == "" {
			message = fmt.Sprintf("order service returned status code=%d", resp.StatusCode)
		}
		err = fmt.Errorf(
			"order service rejected submission with status code=%d message=%s",
			resp.StatusCode,
			message,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Result{Status: StatusFailed, Message: message}, nil
	}
}
