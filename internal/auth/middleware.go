package auth

import "net/http"

// Middleware resolves the request's session and stores it in the context.
// Requests without a valid session pass through with no session attached.
func (c *SessionCodec) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session := c.Resolve(r); session != nil {
			r = r.WithContext(WithSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}
