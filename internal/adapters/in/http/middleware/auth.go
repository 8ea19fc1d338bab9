// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient is an alias so router deps can name the type without
// importing the Firebase SDK.
type FirebaseAuthClient = fbauth.Client

type ctxKey struct{ name string }

var (
	ctxKeyUID       = ctxKey{name: "uid"}
	ctxKeyAuthToken = ctxKey{name: "authToken"}
)

// CustomerAuth verifies an optional Authorization: Bearer <ID_TOKEN>
// header. Anonymous requests pass through untouched; a present but
// invalid token is rejected. On success the verified uid and the raw
// token are injected into the request context so downstream code can
// resolve the logged-in customer's cart.
type CustomerAuth struct {
	FirebaseAuth *FirebaseAuthClient
}

func (m *CustomerAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		if m.FirebaseAuth == nil {
			log.Printf("[customer_auth] token presented but verifier not configured path=%s", r.URL.Path)
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUID, uid)
		ctx = context.WithValue(ctx, ctxKeyAuthToken, idToken)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUID returns the verified customer uid, "" for anonymous requests.
func CurrentUID(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyUID).(string)
	return s
}

// AuthToken returns the verified bearer token carried by the request, ""
// for anonymous requests. Wired as the cart store's token source.
func AuthToken(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyAuthToken).(string)
	return s
}
