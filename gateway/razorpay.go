// Package gateway talks to the Razorpay REST API over the server-to-server
// channel. Credentials never leave this process.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"feepay-module/errors"
)

// DefaultBaseURL is the production Razorpay API endpoint.
const DefaultBaseURL = "https://api.razorpay.com"

// requestTimeout bounds the outbound detail fetch.
const requestTimeout = 10 * time.Second

// Payment is the authoritative payment entity as reported by Razorpay.
// Amount is in minor currency units (paise).
type Payment struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	OrderID  string `json:"order_id"`
	Email    string `json:"email"`
}

// apiError mirrors Razorpay's error envelope.
type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Fetcher retrieves the authoritative payment detail for a payment id.
type Fetcher interface {
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// Client is an HTTP Basic auth client for the Razorpay API.
type Client struct {
	BaseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// NewClient creates a Razorpay API client with the given credentials.
func NewClient(keyID, keySecret string) *Client {
	return &Client{
		BaseURL:   DefaultBaseURL,
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// FetchPayment retrieves a payment by id. Any non-2xx response or
// unparseable body is reported as an Upstream error carrying the gateway's
// own description when one is present.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	url := fmt.Sprintf("%s/v1/payments/%s", c.BaseURL, paymentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.E(errors.Upstream, "error building razorpay request", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.E(errors.Upstream, "failed to fetch payment", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.E(errors.Upstream, "failed to read razorpay response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Description != "" {
			return nil, errors.E(errors.Upstream, apiErr.Error.Description)
		}
		return nil, errors.E(errors.Upstream, "failed to fetch payment")
	}

	var payment Payment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, errors.E(errors.Upstream, "invalid response from razorpay", err)
	}

	return &payment, nil
}
