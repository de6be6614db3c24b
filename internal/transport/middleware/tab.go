package middleware

import (
	"net/http"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/pkg/ctxutil"
)

// TabIDHeader identifies the browser tab a page request comes from.
const TabIDHeader = "X-Tab-Id"

// TabID parses the X-Tab-Id header and stores the tab id in the context.
// Requests without the header pass through; a malformed id is rejected
// with 400.
func TabID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(TabIDHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			tab, err := domain.ParseTabID(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+TabIDHeader+" header")
				return
			}
			ctx := ctxutil.WithTabID(r.Context(), int(tab))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
