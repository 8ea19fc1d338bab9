// internal/adapters/in/http/storefront/handler/locale_handler.go
package storefrontHandler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"luminaire/internal/domain/locale"
)

// ConfigLookup resolves a published per-country config value. Implemented
// by the config sheet provider.
type ConfigLookup interface {
	Lookup(ctx context.Context, country, key string) (string, error)
}

// LocaleHandler serves country resolution and the country selector list.
type LocaleHandler struct {
	configs ConfigLookup
}

func NewLocaleHandler(configs ConfigLookup) http.Handler {
	return &LocaleHandler{configs: configs}
}

func (h *LocaleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	switch {
	case strings.HasSuffix(path, "/locales"):
		h.handleList(w, r)
	case strings.HasSuffix(path, "/locale"):
		h.handleResolve(w, r)
	case strings.HasSuffix(path, "/config"):
		h.handleConfig(w, r)
	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

// handleList returns the selector entries, minus countries disabled by
// the published config.
func (h *LocaleHandler) handleList(w http.ResponseWriter, r *http.Request) {
	disabled := map[string]bool{}
	if h.configs != nil {
		raw, err := h.configs.Lookup(r.Context(), locale.DefaultCountry, "disabled-locales")
		if err != nil {
			log.Printf("[locale_handler] disabled-locales lookup failed: %v", err)
		} else {
			for _, p := range strings.Split(raw, ",") {
				if p = strings.TrimSpace(p); p != "" {
					disabled[p] = true
				}
			}
		}
	}
	writeJSON(w, http.StatusOK, locale.Enabled(disabled))
}

func (h *LocaleHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, locale.Resolve(r.URL.Query().Get("path")))
}

// handleConfig resolves one published config value for a country.
func (h *LocaleHandler) handleConfig(w http.ResponseWriter, r *http.Request) {
	if h.configs == nil {
		writeErr(w, http.StatusInternalServerError, "config lookup is not configured")
		return
	}

	key := strings.TrimSpace(r.URL.Query().Get("key"))
	if key == "" {
		writeErr(w, http.StatusBadRequest, "key is required")
		return
	}
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if country == "" {
		country = locale.DefaultCountry
	}

	value, err := h.configs.Lookup(r.Context(), country, key)
	if err != nil {
		log.Printf("[locale_handler] config lookup failed country=%q key=%q: %v", country, key, err)
		writeErr(w, http.StatusNotFound, "config value not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"country": country, "key": key, "value": value})
}
