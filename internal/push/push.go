// Package push is the thin client boundary to the hosted push provider.
// Delivery internals (device routing, retries) live on the provider side.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMissingAPIKey signals a configuration problem, not a delivery failure.
var ErrMissingAPIKey = errors.New("push api key is not configured")

// Sender sends one push to one device and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, deviceToken, title, message string) (string, error)
}

type Client struct {
	http      *http.Client
	endpoint  string
	projectID string
	apiKey    string
}

func NewClient(endpoint, projectID, apiKey string) *Client {
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		endpoint:  endpoint,
		projectID: projectID,
		apiKey:    apiKey,
	}
}

// WithKey returns a copy using key when the client has none configured.
// Used for the per-request header fallback.
func (c *Client) WithKey(key string) *Client {
	if c.apiKey != "" || key == "" {
		return c
	}
	cp := *c
	cp.apiKey = key
	return &cp
}

// HasKey reports whether a key is available without sending anything.
func (c *Client) HasKey() bool { return c.apiKey != "" }

type sendRequest struct {
	To      string `json:"to"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func (c *Client) Send(ctx context.Context, deviceToken, title, message string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(sendRequest{To: deviceToken, Title: title, Message: message})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/projects/%s/messages", c.endpoint, c.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("push provider returned %d: %s", resp.StatusCode, raw)
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}
