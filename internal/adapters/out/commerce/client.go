// internal/adapters/out/commerce/client.go
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"luminaire/internal/application/usecase"
	cartdom "luminaire/internal/domain/cart"
)

const defaultRequestTimeout = 10 * time.Second

var (
	queryWhitespace = regexp.MustCompile(`(?:\r\n|\r|\n|\t|[\s]{4})`)
	querySqueeze    = regexp.MustCompile(`\s\s+`)
)

// collapseQuery flattens a GraphQL document to a single line; the monolith
// rejects requests above a size threshold and whitespace is most of a
// pretty-printed document.
func collapseQuery(q string) string {
	return querySqueeze.ReplaceAllString(queryWhitespace.ReplaceAllString(q, " "), " ")
}

// Client talks to the commerce monolith: GraphQL endpoint for cart
// operations plus the REST-ish customer endpoints (section load, login).
type Client struct {
	graphqlEndpoint string
	commerceBaseURL string
	storeViewCode   string
	storeCode       string

	client *http.Client
}

// NewClient builds the monolith client. graphqlEndpoint is the core
// GraphQL URL; commerceBaseURL hosts /customer/* endpoints. A timeout of
// zero falls back to the default; cart calls are always bounded.
func NewClient(graphqlEndpoint, commerceBaseURL, storeViewCode, storeCode string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		graphqlEndpoint: strings.TrimSpace(graphqlEndpoint),
		commerceBaseURL: strings.TrimRight(strings.TrimSpace(commerceBaseURL), "/"),
		storeViewCode:   strings.TrimSpace(storeViewCode),
		storeCode:       strings.TrimSpace(storeCode),
		client:          &http.Client{Timeout: timeout},
	}
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Category string `json:"category"`
	} `json:"extensions"`
}

type gqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// query runs a GraphQL document. Mutations go as POST; reads may go as GET
// with the document in the query string. token, when non-empty, is sent as
// a bearer credential.
func (c *Client) query(ctx context.Context, document string, variables map[string]any, post bool, token string) (json.RawMessage, []gqlError, error) {
	if c == nil || c.graphqlEndpoint == "" {
		return nil, nil, fmt.Errorf("commerce client: graphql endpoint is empty")
	}

	collapsed := collapseQuery(document)

	var req *http.Request
	var err error
	if post {
		body, merr := json.Marshal(map[string]any{
			"query":     collapsed,
			"variables": variables,
		})
		if merr != nil {
			return nil, nil, merr
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlEndpoint, bytes.NewReader(body))
	} else {
		endpoint, perr := url.Parse(c.graphqlEndpoint)
		if perr != nil {
			return nil, nil, perr
		}
		vars, merr := json.Marshal(variables)
		if merr != nil {
			return nil, nil, merr
		}
		q := endpoint.Query()
		q.Set("query", collapsed)
		q.Set("variables", string(vars))
		endpoint.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	}
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Store", c.storeViewCode)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		return nil, nil, fmt.Errorf("commerce client: graphql call failed status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope gqlEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, nil, fmt.Errorf("commerce client: decode response: %w", err)
	}
	return envelope.Data, envelope.Errors, nil
}

// FetchSections pulls the named session-state sections from the customer
// section endpoint. The payload is returned serialized, per section.
func (c *Client) FetchSections(ctx context.Context, names []string) (map[string]json.RawMessage, error) {
	if c == nil || c.commerceBaseURL == "" {
		return nil, fmt.Errorf("commerce client: commerce base url is empty")
	}
	if len(names) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	endpoint, err := url.Parse(c.commerceBaseURL + "/customer/section/load")
	if err != nil {
		return nil, err
	}
	q := endpoint.Query()
	q.Set("sections", strings.Join(names, ","))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Store", c.storeViewCode)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		return nil, fmt.Errorf("commerce client: section load failed status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var sections map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&sections); err != nil {
		return nil, fmt.Errorf("commerce client: decode sections: %w", err)
	}

	out := make(map[string]json.RawMessage, len(names))
	for _, name := range names {
		if raw, ok := sections[name]; ok {
			out[name] = raw
		}
	}
	return out, nil
}

// Login performs the commerce form login. The caller bounds the context;
// a deadline here is a hard failure.
func (c *Client) Login(ctx context.Context, form map[string]string) (usecase.LoginResult, error) {
	if c == nil || c.commerceBaseURL == "" {
		return usecase.LoginResult{}, fmt.Errorf("commerce client: commerce base url is empty")
	}

	body, err := json.Marshal(form)
	if err != nil {
		return usecase.LoginResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.commerceBaseURL+"/customer/ajax/login/", bytes.NewReader(body))
	if err != nil {
		return usecase.LoginResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Store", c.storeCode)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	res, err := c.client.Do(req)
	if err != nil {
		return usecase.LoginResult{}, err
	}
	defer res.Body.Close()

	var result usecase.LoginResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return usecase.LoginResult{}, fmt.Errorf("commerce client: decode login response: %w", err)
	}
	return result, nil
}

// normalizeErrors reduces a GraphQL error list to one tagged gateway
// error. Categories are checked in triage priority order: a missing
// entity outranks an authorization failure, which outranks a rejected
// input.
func normalizeErrors(errs []gqlError) error {
	if len(errs) == 0 {
		return nil
	}

	pick := func(category string) *gqlError {
		for i := range errs {
			if errs[i].Extensions.Category == category {
				return &errs[i]
			}
		}
		return nil
	}

	if e := pick("graphql-no-such-entity"); e != nil {
		return &cartdom.GatewayError{Category: cartdom.CategoryNotFound, Message: e.Message}
	}
	if e := pick("graphql-authorization"); e != nil {
		return &cartdom.GatewayError{Category: cartdom.CategoryAuthorization, Message: e.Message}
	}
	if e := pick("graphql-input"); e != nil {
		return &cartdom.GatewayError{Category: cartdom.CategoryInputValidation, Message: e.Message}
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return &cartdom.GatewayError{Category: cartdom.CategoryOther, Message: strings.Join(messages, "; ")}
}
