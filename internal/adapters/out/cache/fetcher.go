// internal/adapters/out/cache/fetcher.go
package cache

import (
	"context"
	"encoding/json"
)

// SectionFetcher pulls fresh section payloads from the remote session.
// Satisfied by the commerce client.
type SectionFetcher interface {
	FetchSections(ctx context.Context, names []string) (map[string]json.RawMessage, error)
}
