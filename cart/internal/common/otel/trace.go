package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/dormire/storefront/internal/constants"
)

var Tracer = otel.Tracer(constants.APP_CART_SERVICE)
