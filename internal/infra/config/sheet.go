// internal/infra/config/sheet.go
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
)

var ErrConfigKeyMissing = errors.New("config: key missing")

// SheetProvider serves published per-country config sheets from the
// storefront content bucket. A sheet lives at
// "<country>/configs-<env>.json" ("configs-<env>.json" for the default
// country) and holds rows of key/value pairs.
//
// Sheets are fetched once per country and cached for the process
// lifetime; the storefront republishes by restarting engines.
type SheetProvider struct {
	bucket *storage.BucketHandle
	env    string

	mu     sync.RWMutex
	sheets map[string]map[string]string
}

func NewSheetProvider(client *storage.Client, bucketName, env string) (*SheetProvider, error) {
	bucketName = strings.TrimSpace(bucketName)
	if client == nil || bucketName == "" {
		return nil, errors.New("config: storage client and bucket are required")
	}
	env = strings.TrimSpace(env)
	if env == "" {
		env = "prod"
	}
	return &SheetProvider{
		bucket: client.Bucket(bucketName),
		env:    env,
		sheets: map[string]map[string]string{},
	}, nil
}

type sheetRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type sheetFile struct {
	Data []sheetRow `json:"data"`
}

// Lookup resolves one config value for a country. Missing keys return
// ErrConfigKeyMissing.
func (p *SheetProvider) Lookup(ctx context.Context, country, key string) (string, error) {
	country = strings.TrimSpace(strings.ToLower(country))
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrConfigKeyMissing
	}

	sheet, err := p.sheet(ctx, country)
	if err != nil {
		return "", err
	}
	value, ok := sheet[key]
	if !ok {
		return "", ErrConfigKeyMissing
	}
	return value, nil
}

func (p *SheetProvider) sheet(ctx context.Context, country string) (map[string]string, error) {
	p.mu.RLock()
	cached, ok := p.sheets[country]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	object := fmt.Sprintf("configs-%s.json", p.env)
	if country != "" && country != "us" {
		object = country + "/" + object
	}

	rd, err := p.bucket.Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("config: open sheet %q: %w", object, err)
	}
	defer rd.Close()

	raw, err := io.ReadAll(io.LimitReader(rd, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("config: read sheet %q: %w", object, err)
	}

	var file sheetFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("config: parse sheet %q: %w", object, err)
	}

	sheet := make(map[string]string, len(file.Data))
	for _, row := range file.Data {
		if k := strings.TrimSpace(row.Key); k != "" {
			sheet[k] = row.Value
		}
	}

	p.mu.Lock()
	p.sheets[country] = sheet
	p.mu.Unlock()
	return sheet, nil
}
