// internal/infra/secrets/provider.go
package secrets

import (
	"context"
	"errors"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var errNotConfigured = errors.New("secrets: provider not configured")

// Provider reads secret values (commerce API keys, Redis passwords) from
// Secret Manager.
type Provider struct {
	sm        *secretmanager.Client
	projectID string
	version   string
}

func NewProvider(sm *secretmanager.Client, projectID string) (*Provider, error) {
	if sm == nil || strings.TrimSpace(projectID) == "" {
		return nil, errNotConfigured
	}
	return &Provider{sm: sm, projectID: strings.TrimSpace(projectID), version: "latest"}, nil
}

// Get returns the latest version of the named secret, trimmed.
func (p *Provider) Get(ctx context.Context, secretID string) (string, error) {
	if p == nil || p.sm == nil {
		return "", errNotConfigured
	}
	sid := strings.TrimSpace(secretID)
	if sid == "" {
		return "", errors.New("secrets: secretID is empty")
	}

	name := "projects/" + p.projectID + "/secrets/" + sid + "/versions/" + p.version
	resp, err := p.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", errors.New("secrets: AccessSecretVersion failed (" + name + "): " + err.Error())
	}
	if resp == nil || resp.Payload == nil {
		return "", errors.New("secrets: empty payload (" + name + ")")
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	if p == nil || p.sm == nil {
		return nil
	}
	return p.sm.Close()
}
