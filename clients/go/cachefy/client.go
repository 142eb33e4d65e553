// Package cachefy provides an agent-side client for the Cachefy server's
// callback surface: registering services and sending heartbeat
// re-registrations.
package cachefy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the Cachefy server's /callback routes on behalf of an
// agent.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a client for the given server and agent API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Service is the record the server returns on registration.
type Service struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	AgentID   string    `json:"agentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Registration describes a service to register.
type Registration struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// apiError is the server's error body.
type apiError struct {
	Message string `json:"message"`
}

// RegisterService upserts a service under this agent's identity.
// Registration is idempotent: re-registering the same name updates the
// existing record and refreshes its heartbeat timestamp.
func (c *Client) RegisterService(ctx context.Context, reg Registration) (*Service, error) {
	body, err := json.Marshal(reg)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/callback/register-service", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var e apiError
		if json.Unmarshal(data, &e) == nil && e.Message != "" {
			return nil, fmt.Errorf("register service: %s (status %d)", e.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("register service: unexpected status %d", resp.StatusCode)
	}

	var service Service
	if err := json.Unmarshal(data, &service); err != nil {
		return nil, fmt.Errorf("register service: parse response: %w", err)
	}
	return &service, nil
}

// Health verifies connectivity and that the API key is still accepted.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/callback/health", nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("callback health: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Heartbeat re-registers the service every interval until ctx is
// cancelled, keeping the server's updatedAt fresh as a liveness signal.
// Failures are reported to onError (if non-nil) and retried on the next
// tick.
func (c *Client) Heartbeat(ctx context.Context, reg Registration, interval time.Duration, onError func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.RegisterService(ctx, reg); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
