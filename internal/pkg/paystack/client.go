// Package paystack is a small client for the Paystack transaction API.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production API host; test and live modes differ only by key
const DefaultBaseURL = "https://api.paystack.co"

// ErrNotConfigured is returned when no secret key is set
var ErrNotConfigured = errors.New("paystack secret key is not configured")

// Gateway statuses that mean the customer has not finished paying yet
var inFlightStatuses = map[string]bool{
	"ongoing":    true,
	"pending":    true,
	"processing": true,
	"queued":     true,
}

// Config configures a Client
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Client calls the Paystack REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a Client with a bounded request timeout
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// InitializeRequest creates a remote transaction. Amount is in minor units.
type InitializeRequest struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	Currency    string                 `json:"currency"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Channels    []string               `json:"channels,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// InitializeResult is where the customer is sent to pay
type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the authoritative state of a remote transaction
type VerifyResult struct {
	Status          string
	Reference       string
	Amount          int64
	Currency        string
	Channel         string
	GatewayResponse string
	PaidAt          *time.Time
	// Raw is the full data object returned by the gateway
	Raw map[string]interface{}
}

// Successful reports whether the customer was charged
func (v *VerifyResult) Successful() bool {
	return v.Status == "success"
}

// Abandoned reports whether the customer left the checkout without paying.
// The checkout link stays payable, so this is not a final outcome either.
func (v *VerifyResult) Abandoned() bool {
	return v.Status == "abandoned"
}

// InFlight reports whether the gateway has not reached a final outcome yet
func (v *VerifyResult) InFlight() bool {
	return inFlightStatuses[v.Status]
}

// APIError is a non-successful response from the gateway
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack: %s (http %d)", e.Message, e.StatusCode)
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction creates a transaction on the gateway
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("paystack: encode request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result InitializeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("paystack: decode initialize data: %w", err)
	}
	if result.AuthorizationURL == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "missing authorization_url"}
	}
	if result.Reference == "" {
		result.Reference = req.Reference
	}
	return &result, nil
}

// VerifyTransaction fetches the gateway's view of reference
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error) {
	data, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}

	var typed struct {
		Status          string  `json:"status"`
		Reference       string  `json:"reference"`
		Amount          int64   `json:"amount"`
		Currency        string  `json:"currency"`
		Channel         string  `json:"channel"`
		GatewayResponse string  `json:"gateway_response"`
		PaidAt          *string `json:"paid_at"`
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, fmt.Errorf("paystack: decode verify data: %w", err)
	}
	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("paystack: decode verify data: %w", err)
	}

	result := &VerifyResult{
		Status:          typed.Status,
		Reference:       typed.Reference,
		Amount:          typed.Amount,
		Currency:        typed.Currency,
		Channel:         typed.Channel,
		GatewayResponse: typed.GatewayResponse,
		Raw:             raw,
	}
	if typed.PaidAt != nil {
		if t, err := time.Parse(time.RFC3339, *typed.PaidAt); err == nil {
			result.PaidAt = &t
		}
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("paystack: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("paystack: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "malformed response body"}
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return env.Data, nil
}
