package pesapal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/dialadrink/payrecon/internal/models"
)

// Client talks to the pesapal bridge that fronts the hosted payment page
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates new Client instance
func NewClient(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

type checkoutRequest struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
}

type checkoutResponse struct {
	OrderTrackingID string `json:"orderTrackingId"`
	RedirectURL     string `json:"redirectUrl"`
	Error           string `json:"error,omitempty"`
}

type transactionResponse struct {
	Status        string `json:"status"`
	ReceiptNumber string `json:"receiptNumber,omitempty"`
	Description   string `json:"description,omitempty"`
}

// InitiateCheckout registers the order with the hosted payment page and
// returns the tracking reference plus the URL the dashboard should open.
func (c *Client) InitiateCheckout(ctx context.Context, orderID string, amount float64) (reference, redirectURL string, err error) {
	// POST /api/checkout
	u, err := url.JoinPath(c.baseURL, "api", "checkout")
	if err != nil {
		return "", "", err
	}

	body, err := json.Marshal(checkoutRequest{OrderID: orderID, Amount: amount})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return "", "", err
	}

	checkoutResp := checkoutResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&checkoutResp); err != nil {
		return "", "", err
	}

	if resp.StatusCode != http.StatusOK || checkoutResp.OrderTrackingID == "" {
		reason := checkoutResp.Error
		if reason == "" {
			reason = "checkout rejected"
		}
		return "", "", models.GatewayError{Gateway: "pesapal", Reason: reason}
	}

	return checkoutResp.OrderTrackingID, checkoutResp.RedirectURL, nil
}

// CheckStatusByOrder queries transaction status by order id
func (c *Client) CheckStatusByOrder(ctx context.Context, orderID string) (*models.Signal, error) {
	// GET /api/transaction-status/{orderID}
	u, err := url.JoinPath(c.baseURL, "api", "transaction-status", orderID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		txResp := transactionResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&txResp); err != nil {
			return nil, err
		}
		switch txResp.Status {
		case "completed":
			return &models.Signal{Verdict: models.VerdictSuccess, Receipt: txResp.ReceiptNumber}, nil
		case "failed", "invalid", "reversed":
			reason := txResp.Description
			if reason == "" {
				reason = "payment " + txResp.Status
			}
			return &models.Signal{Verdict: models.VerdictFailure, Reason: reason}, nil
		default:
			return &models.Signal{Verdict: models.VerdictPending}, nil
		}
	case http.StatusNoContent:
		return &models.Signal{Verdict: models.VerdictPending}, nil
	default:
		return nil, models.ErrInternalError
	}
}
