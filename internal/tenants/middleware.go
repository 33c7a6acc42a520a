package tenants

import (
	"context"
	"net/http"
)

type ctxKey struct{}

var ctxKeyOrg = ctxKey{}

func WithOrg(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, ctxKeyOrg, orgID)
}

func OrgFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyOrg).(string); ok {
		return s
	}
	return ""
}

// Middleware resolves the org for every request and rejects requests with no
// resolvable tenant scope.
func Middleware(res Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			org, err := res.Resolve(r)
			if err != nil {
				http.Error(w, "unknown tenant", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOrg(r.Context(), org)))
		})
	}
}
