// internal/adapters/in/http/storefront/router.go
package storefront

import (
	"log"
	"net/http"
)

// Deps is the storefront-facing handler set.
type Deps struct {
	Cart   http.Handler
	Events http.Handler
	Auth   http.Handler
	Locale http.Handler

	// Metrics is the Prometheus scrape endpoint.
	Metrics http.Handler
}

// handleSafe registers pattern with h. A nil handler logs and registers
// NotFoundHandler instead so a partially wired container still serves.
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[storefront.router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers the storefront routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	handleSafe(mux, "/storefront/cart", deps.Cart, "Cart")
	handleSafe(mux, "/storefront/cart/", deps.Cart, "Cart")

	handleSafe(mux, "/storefront/cart/events", deps.Events, "Events")

	handleSafe(mux, "/storefront/session", deps.Auth, "Auth")
	handleSafe(mux, "/storefront/login", deps.Auth, "Auth")

	handleSafe(mux, "/storefront/locales", deps.Locale, "Locale")
	handleSafe(mux, "/storefront/locale", deps.Locale, "Locale")
	handleSafe(mux, "/storefront/config", deps.Locale, "Locale")

	handleSafe(mux, "/metrics", deps.Metrics, "Metrics")
}
