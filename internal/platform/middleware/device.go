package middleware

import (
	"context"
	"net/http"

	"github.com/mssola/useragent"
)

type contextKeyDevice struct{}

// ContextKeyDevice is exported for tests that prime a request context.
var ContextKeyDevice = contextKeyDevice{}

// GetDevice retrieves the driver-device description from the context.
func GetDevice(ctx context.Context) string {
	if device, ok := ctx.Value(ContextKeyDevice).(string); ok {
		return device
	}
	return ""
}

// WithDevice injects a device description. Useful for service unit tests
// that don't run the full HTTP middleware chain.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, ContextKeyDevice, device)
}

// Device parses the User-Agent so scan logs can tell which handheld or
// phone submitted a read. Misreads cluster by device model in practice.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := useragent.New(r.UserAgent())
		name, version := ua.Browser()
		device := ua.OS()
		if name != "" {
			device = name + "/" + version + " " + device
		}
		ctx := WithDevice(r.Context(), device)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
