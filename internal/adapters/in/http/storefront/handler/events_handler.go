// internal/adapters/in/http/storefront/handler/events_handler.go
package storefrontHandler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"luminaire/internal/application/store"
)

// EventsHandler streams cart store events as server-sent events. Each UI
// fragment holding the stream open is an independent subscriber; closing
// the connection unsubscribes it.
type EventsHandler struct {
	store *store.CartStore
}

func NewEventsHandler(st *store.CartStore) http.Handler {
	return &EventsHandler{store: st}
}

type eventDTO struct {
	Type     string          `json:"type"`
	Cart     json.RawMessage `json:"cart"`
	LoggedIn bool            `json:"loggedIn"`
}

func eventName(t store.EventType) string {
	switch t {
	case store.EventReset:
		return "reset"
	case store.EventAuthChanged:
		return "auth-changed"
	default:
		return "update"
	}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if h.store == nil {
		writeErr(w, http.StatusInternalServerError, "events handler is not configured")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Subscriber callbacks run on the notifying goroutine; hand events to
	// the response writer through a channel instead of writing directly.
	events := make(chan store.Event, 16)
	unsubscribe := h.store.Subscribe(func(ev store.Event) {
		select {
		case events <- ev:
		default:
			// Slow consumer: drop rather than block the store.
		}
	})
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			cart, err := json.Marshal(ev.Cart)
			if err != nil {
				continue
			}
			payload, err := json.Marshal(eventDTO{
				Type:     eventName(ev.Type),
				Cart:     cart,
				LoggedIn: ev.LoggedIn,
			})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventName(ev.Type), payload)
			flusher.Flush()
		}
	}
}
