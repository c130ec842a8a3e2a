package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ContextKey struct {
	Name string
}

// RequestIDKey is the key to use to pull a request id out of a context
var RequestIDKey = &ContextKey{"request"}

// GetRequestID returns the request id associated with the context or a blank string
func GetRequestID(ctx context.Context) string {
	str, ok := ctx.Value(RequestIDKey).(string)
	if ok {
		return str
	}
	return ""
}

// RequestIDMiddleware returns a middleware function that adds a request
// ID to the request context
func RequestIDMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(res http.ResponseWriter, req *http.Request) {
			requestID := uuid.New().String()

			rctx := context.WithValue(req.Context(), RequestIDKey, requestID)

			next(res, req.WithContext(rctx))
		}
	}
}
