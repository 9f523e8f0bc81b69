package middleware

import "net/http"

// DefaultBodyLimit applies to every route without its own entry.
const DefaultBodyLimit = 1 << 20

// BodyLimits maps a "METHOD /path" route to the largest body it accepts.
type BodyLimits map[string]int64

// LimitBody caps the request body before any later middleware reads it.
// It must run before CSRFProtection, which may parse the form.
func LimitBody(limits BodyLimits) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				limit, ok := limits[r.Method+" "+r.URL.Path]
				if !ok {
					limit = DefaultBodyLimit
				}
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
