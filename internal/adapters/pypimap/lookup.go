// Package pypimap provides the conda-name to pypi-name mapping
// collaborators: the best-effort bulk lookup service client and the
// compressed override table loader.
package pypimap

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PurlLookup = (*Client)(nil)

// Client implements ports.PurlLookup against a JSON mapping service. The
// service answers a batch of conda package names with a partial
// name→identifier map; names it does not know are simply absent.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a lookup client for the given service URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type lookupRequest struct {
	Names []string `json:"names"`
}

// Lookup posts the batch of names and returns the partial mapping.
func (c *Client) Lookup(ctx context.Context, names []string, auth ports.AuthContext) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}

	body, err := json.Marshal(lookupRequest{Names: names})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrLookupFailed.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrLookupFailed.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	if auth.Token != "" {
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrLookupFailed.Error())
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	if resp.StatusCode != http.StatusOK {
		err := zerr.With(domain.ErrLookupFailed, "status", resp.StatusCode)
		return nil, zerr.With(err, "url", c.baseURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrLookupFailed.Error())
	}

	mapping := make(map[string]string)
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, zerr.Wrap(err, domain.ErrLookupFailed.Error())
	}
	return mapping, nil
}

// StaticLookup implements ports.PurlLookup from a fixed table. It serves
// offline operation and tests.
type StaticLookup map[string]string

// Lookup returns the subset of the table covering the requested names.
func (s StaticLookup) Lookup(_ context.Context, names []string, _ ports.AuthContext) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		if id, ok := s[name]; ok {
			out[name] = id
		}
	}
	return out, nil
}
