// Package agentflow proxies a property address through the external AI
// qualification and rehab estimation endpoints. The upstream services do
// the real work; the client shapes requests and relays their replies.
package agentflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gulfcoastprop/platform/internal/logger"
)

const callTimeout = 10 * time.Second

type Config struct {
	QualifyURL string
	RehabURL   string
}

type Client struct {
	qualifyURL string
	rehabURL   string

	client *http.Client
	logger logger.Logger
}

func NewClient(cfg Config, l logger.Logger) *Client {
	if l == nil {
		l = logger.NewNop()
	}

	return &Client{
		qualifyURL: cfg.QualifyURL,
		rehabURL:   cfg.RehabURL,
		client:     &http.Client{},
		logger:     l,
	}
}

// Result relays the upstream replies without interpreting them
type Result struct {
	Qualify json.RawMessage `json:"qualify"`
	Rehab   json.RawMessage `json:"rehab"`
}

// Run qualifies the address and estimates rehab cost, one call after the
// other. Either upstream failing fails the workflow.
func (c *Client) Run(ctx context.Context, propertyAddress string) (Result, error) {
	var result Result

	qualify, err := c.call(ctx, c.qualifyURL, propertyAddress)
	if err != nil {
		return result, fmt.Errorf("qualify call failed: %w", err)
	}
	result.Qualify = qualify

	rehab, err := c.call(ctx, c.rehabURL, propertyAddress)
	if err != nil {
		return result, fmt.Errorf("rehab call failed: %w", err)
	}
	result.Rehab = rehab

	return result, nil
}

func (c *Client) call(ctx context.Context, url string, propertyAddress string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"address": propertyAddress})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("agent endpoint returned non-OK status", "url", url, "status_code", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.logger.Warn("failed to decode agent response", "url", url, "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return raw, nil
}
