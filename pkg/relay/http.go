package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rooootdev/playit-ios/pkg/log"
)

const rundataEndpoint = "/v1/agents/rundata"

// Doer is the subset of *http.Client the relay client needs.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPClient implements Client against the playit web API.
//
// Both connection and health polling go through the agent rundata endpoint:
// the relay assigns tunnels server-side, and the first tunnel without a
// disabled reason supplies the public address. Rundata sessions hold no
// server-side connection state, so Disconnect is a no-op.
type HTTPClient struct {
	apiURL    string
	secretKey string
	client    Doer
	logger    log.Logger
}

// NewHTTPClient creates a relay client for the given API endpoint.
func NewHTTPClient(apiURL, secretKey string, client Doer, logger log.Logger) *HTTPClient {
	return &HTTPClient{
		apiURL:    strings.TrimRight(apiURL, "/"),
		secretKey: secretKey,
		client:    client,
		logger:    logger,
	}
}

// rundataResponse mirrors the playit API envelope.
type rundataResponse struct {
	Status string  `json:"status"`
	Data   rundata `json:"data"`
}

type rundata struct {
	Tunnels []tunnel `json:"tunnels"`
}

type tunnel struct {
	DisplayAddress string  `json:"display_address"`
	DisabledReason *string `json:"disabled_reason"`
}

// Connect fetches the agent rundata and picks the active tunnel address.
func (c *HTTPClient) Connect(ctx context.Context) (*Session, error) {
	data, err := c.rundata(ctx)
	if err != nil {
		return nil, err
	}

	addr := activeAddress(data.Tunnels)
	if addr == "" {
		return nil, errors.New("relay: no active tunnel assigned")
	}

	c.logger.Debug("relay assigned tunnel", log.String("address", addr))
	return &Session{Address: addr}, nil
}

// PollHealth re-fetches the rundata and verifies the tunnel is still active.
func (c *HTTPClient) PollHealth(ctx context.Context, s *Session) error {
	data, err := c.rundata(ctx)
	if err != nil {
		return err
	}
	if activeAddress(data.Tunnels) == "" {
		return ErrSessionLost
	}
	return nil
}

// Disconnect tears the session down. Rundata sessions are stateless on the
// relay side, so there is nothing to sign off.
func (c *HTTPClient) Disconnect(ctx context.Context, s *Session) error {
	return nil
}

func (c *HTTPClient) rundata(ctx context.Context) (*rundata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+rundataEndpoint, strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("relay: create rundata request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Agent-Key "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay: rundata request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrAuthRejected
	case resp.StatusCode/100 != 2:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("relay: server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed rundataResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("relay: decode rundata: %w", err)
	}
	return &parsed.Data, nil
}

func activeAddress(tunnels []tunnel) string {
	for _, t := range tunnels {
		if t.DisabledReason == nil && t.DisplayAddress != "" {
			return t.DisplayAddress
		}
	}
	return ""
}
