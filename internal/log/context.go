package log

import (
	"context"
)

type requestId struct{}

type sessionId struct{}

func RequestIDFromContext(c context.Context) string {
	id, ok := c.Value(requestId{}).(string)
	if !ok {
		return ""
	}
	return id
}

func AttachRequestIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, requestId{}, id)
}

// SessionIDFromContext returns the browsing-session id attached by the
// session middleware, or an empty string outside a request scope.
func SessionIDFromContext(c context.Context) string {
	id, ok := c.Value(sessionId{}).(string)
	if !ok {
		return ""
	}
	return id
}

func AttachSessionIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, sessionId{}, id)
}
