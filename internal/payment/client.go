package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Intent is the single normalized shape this service depends on. The
// gateway returns more fields; everything beyond the id and the
// client-usable secret is ignored.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type gatewayErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to a Stripe-compatible payment API over HTTPS.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateIntent creates a payment intent for amountCents and returns the
// gateway's client handle. The metadata bag is attached verbatim for audit
// purposes; the gateway never treats it as pricing input.
func (c *Client) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build intent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, gatewayError(resp.StatusCode, body)
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if intent.ID == "" || intent.ClientSecret == "" {
		return nil, errors.New("gateway response missing intent id or client secret")
	}
	return &intent, nil
}

func gatewayError(status int, body []byte) error {
	var parsed gatewayErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		if parsed.Error.Code != "" {
			return fmt.Errorf("gateway rejected request (%d %s): %s",
				status, parsed.Error.Code, parsed.Error.Message)
		}
		return fmt.Errorf("gateway rejected request (%d): %s", status, parsed.Error.Message)
	}
	return fmt.Errorf("gateway returned status %d", status)
}
