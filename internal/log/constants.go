package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeySessionID          = "sessionId"
	KeyProcess            = "process"
	KeyToken              = "token"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeyCart               = "cart"
	KeyCartLines          = "cartLines"
	KeyLineCount          = "lineCount"
	KeyCartTotal          = "cartTotal"
	KeyProductID          = "productId"
	KeySize               = "size"
	KeyColor              = "color"
	KeyQuantity           = "quantity"
	KeyOrderID            = "orderId"
	KeyCheckoutStatus     = "checkoutStatus"
	KeyWishlist           = "wishlist"
	KeyCacheKey           = "cacheKey"
	KeyPathValues         = "pathValues"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestProcessedAt = "requestProcessedAt"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
)
