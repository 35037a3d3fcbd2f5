package auth

import (
	"context"
	"log"
	"net/http"
	"strings"
)

type contextKey struct{}

// Middleware extracts and verifies a Bearer token, attaching the caller
// context to the request. Requests without a token pass through without a
// caller; the per-endpoint guards decide what is required.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				caller, err := verifier.Verify(r.Context(), strings.TrimSpace(token))
				if err != nil {
					log.Printf("auth: token rejected: %v", err)
				} else {
					r = r.WithContext(context.WithValue(r.Context(), contextKey{}, &caller))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerFromRequest returns the verified caller attached by Middleware, or
// nil when the request was anonymous.
func CallerFromRequest(r *http.Request) *Context {
	caller, _ := r.Context().Value(contextKey{}).(*Context)
	return caller
}

// WithCaller attaches a caller to a context. Test helper and syncd local-mode
// hook.
func WithCaller(ctx context.Context, caller *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, caller)
}
