// Package payment opens Midtrans Snap payment sessions.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	config "github.com/syberke/TechStore/configs"
)

// ErrGatewayUnreachable covers transport failures and timeouts. A checkout
// that hits this must be restarted from scratch with a fresh external order
// id; retrying the same id risks colliding with a half-open transaction.
var ErrGatewayUnreachable = errors.New("payment gateway unreachable")

// GatewayError is a non-success response from the gateway, kept for
// diagnostics. Never retried: the Snap API defines no idempotency key, so
// resending could open duplicate sessions for the same order.
type GatewayError struct {
	StatusCode int
	Messages   []string
}

func (e *GatewayError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ItemDetail mirrors an order line for the gateway's fraud and display
// purposes; the gateway does not validate it against the order.
type ItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
	ItemDetails        []ItemDetail       `json:"item_details"`
}

type snapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type snapErrorResponse struct {
	ErrorMessages []string `json:"error_messages"`
}

type Client struct {
	cfg    config.MidtransConfig
	client *http.Client
}

// NewClient builds a Snap client from injected configuration. The HTTP
// client carries an explicit timeout; an unbounded hang here would block
// the checkout caller indefinitely.
func NewClient(cfg config.MidtransConfig) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// CreateTransaction exchanges the transaction payload for an opaque Snap
// token. The token has no meaning to this system beyond pass-through to
// the gateway-hosted payment widget.
func (c *Client) CreateTransaction(ctx context.Context, snapReq SnapRequest) (string, error) {
	body, err := json.Marshal(snapReq)
	if err != nil {
		return "", fmt.Errorf("encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build gateway request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// The Snap API authenticates with base64(serverKey + ":"), which is
	// Basic auth with the key as username and an empty password.
	req.SetBasicAuth(c.cfg.ServerKey, "")

	resp, err := c.client.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"order_id": snapReq.TransactionDetails.OrderID,
		}).WithError(err).Error("midtrans request failed")
		return "", fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		gwErr := &GatewayError{StatusCode: resp.StatusCode}
		var errBody snapErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			gwErr.Messages = errBody.ErrorMessages
		}
		logrus.WithFields(logrus.Fields{
			"order_id": snapReq.TransactionDetails.OrderID,
			"status":   resp.StatusCode,
		}).Error("midtrans rejected transaction")
		return "", gwErr
	}

	var snap snapResponse
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return "", &GatewayError{StatusCode: resp.StatusCode, Messages: []string{"undecodable response body"}}
	}
	if snap.Token == "" {
		return "", &GatewayError{StatusCode: resp.StatusCode, Messages: []string{"response has no token"}}
	}

	return snap.Token, nil
}
