package testutil

import (
	"context"
	"net/http"

	"pickup-gateway/internal/platform/middleware"
)

// WithRole adds an authenticated subject and role to the request context.
// This simulates what the auth middleware would do for authenticated
// requests, for handler tests that call handlers directly.
func WithRole(req *http.Request, subject, role string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeySubject, subject)
	ctx = context.WithValue(ctx, middleware.ContextKeyRole, role)
	return req.WithContext(ctx)
}

// WithRequestID adds a request id to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyRequestID, requestID)
	return req.WithContext(ctx)
}
