package http

const (
	KEY_HEADER_CONTENT_TYPE       = "Content-Type"
	KEY_HEADER_REQUEST_ID         = "X-Request-Id"
	KEY_HEADER_SESSION_ID         = "X-Session-Id"
	VALUE_HEADER_APPLICATION_JSON = "application/json"

	COOKIE_SESSION_ID = "storefront_session"
)
