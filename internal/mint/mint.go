package mint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrDisabled        = errors.New("mint disabled")
	ErrRequestFailed   = errors.New("mint request failed")
	ErrResponseInvalid = errors.New("mint response invalid")
	ErrRejected        = errors.New("mint rejected")
)

const defaultTimeout = 15 * time.Second

// Client talks to the minting service over JSON HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	enabled    bool
}

// Options configures the client.
type Options struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// New creates the client. A disabled client fails fast on Mint.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: &http.Client{Timeout: timeout},
		enabled:    opts.Enabled && baseURL != "",
	}
}

// Enabled reports whether minting is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

// Request describes one mint call.
type Request struct {
	OrderNo       string `json:"order_no"`
	CollectibleID uint   `json:"collectible_id"`
	Recipient     string `json:"recipient"`
	Amount        string `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// Result is a successful mint.
type Result struct {
	Signature string `json:"signature"`
	TokenID   string `json:"token_id,omitempty"`
}

type mintResponse struct {
	Signature string `json:"signature"`
	TokenID   string `json:"token_id"`
	Error     string `json:"error"`
}

// Mint submits a mint and returns the signature receipt. The call is
// synchronous: the minting service only answers once the mint landed.
func (c *Client) Mint(ctx context.Context, req Request) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if strings.TrimSpace(req.OrderNo) == "" || req.CollectibleID == 0 || strings.TrimSpace(req.Recipient) == "" {
		return nil, fmt.Errorf("%w: order_no, collectible_id and recipient are required", ErrRequestFailed)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/mints", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}

	var decoded mintResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := strings.TrimSpace(decoded.Error)
		if reason == "" {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, reason)
	}
	if strings.TrimSpace(decoded.Signature) == "" {
		return nil, fmt.Errorf("%w: missing signature", ErrResponseInvalid)
	}
	return &Result{Signature: decoded.Signature, TokenID: decoded.TokenID}, nil
}
