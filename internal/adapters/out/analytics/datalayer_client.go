// internal/adapters/out/analytics/datalayer_client.go
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"luminaire/internal/application/usecase"
	cartdom "luminaire/internal/domain/cart"
)

const defaultEmitTimeout = 2 * time.Second

// DataLayerClient pushes cart interaction events to the analytics
// collector. Emission is fire and forget: every failure is logged and
// swallowed so a collector outage never affects a cart mutation.
type DataLayerClient struct {
	endpoint string
	client   *http.Client
}

func NewDataLayerClient(endpoint string, timeout time.Duration) *DataLayerClient {
	if timeout <= 0 {
		timeout = defaultEmitTimeout
	}
	return &DataLayerClient{
		endpoint: strings.TrimSpace(endpoint),
		client:   &http.Client{Timeout: timeout},
	}
}

type event struct {
	EventID   string    `json:"event_id"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`

	ItemID   string            `json:"item_id,omitempty"`
	Quantity int               `json:"quantity,omitempty"`
	Cart     *cartdom.Snapshot `json:"cart,omitempty"`
}

func (c *DataLayerClient) AddToCart(ctx context.Context, snap cartdom.Snapshot) {
	c.push(ctx, event{Event: "add-to-cart", Cart: &snap})
}

func (c *DataLayerClient) RemoveCartItem(ctx context.Context, itemID string) {
	c.push(ctx, event{Event: "remove-from-cart", ItemID: itemID})
}

// UpdateCartItem reports a quantity change as an addition or removal of
// the delta, matching how the data layer models cart size changes.
func (c *DataLayerClient) UpdateCartItem(ctx context.Context, itemID string, delta int) {
	if delta == 0 {
		return
	}
	name := "add-to-cart"
	qty := delta
	if delta < 0 {
		name = "remove-from-cart"
		qty = -delta
	}
	c.push(ctx, event{Event: name, ItemID: itemID, Quantity: qty})
}

func (c *DataLayerClient) push(ctx context.Context, ev event) {
	if c == nil || c.endpoint == "" {
		return
	}
	ev.EventID = uuid.NewString()
	ev.Timestamp = time.Now().UTC()

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[datalayer] failed to encode %s event: %v", ev.Event, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Printf("[datalayer] failed to build %s request: %v", ev.Event, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		log.Printf("[datalayer] failed to push %s event: %v", ev.Event, err)
		return
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusMultipleChoices {
		log.Printf("[datalayer] collector rejected %s event: status=%d", ev.Event, res.StatusCode)
	}
}

var _ usecase.AnalyticsEmitter = (*DataLayerClient)(nil)
