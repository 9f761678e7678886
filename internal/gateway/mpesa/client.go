package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dialadrink/payrecon/internal/models"
)

// default time of retry after
const delaySeconds = 60

// Client talks to the mpesa bridge that fronts the STK-push API
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

type stkPushRequest struct {
	PhoneNumber      string  `json:"phoneNumber"`
	Amount           float64 `json:"amount"`
	OrderID          string  `json:"orderId"`
	AccountReference string  `json:"accountReference"`
}

type stkPushResponse struct {
	Success           bool   `json:"success"`
	CheckoutRequestID string `json:"checkoutRequestID"`
	Error             string `json:"error,omitempty"`
}

type transactionResponse struct {
	Status        string `json:"status"`
	ReceiptNumber string `json:"receiptNumber,omitempty"`
	ResultDesc    string `json:"resultDesc,omitempty"`
}

// InitiatePush sends an STK push to the customer's phone and returns the
// checkout request id used for later status lookups.
func (c *Client) InitiatePush(ctx context.Context, orderID string, amount float64, phone string) (string, error) {
	// POST /api/stk-push
	u, err := url.JoinPath(c.baseURL, "api", "stk-push")
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(stkPushRequest{
		PhoneNumber:      phone,
		Amount:           amount,
		OrderID:          orderID,
		AccountReference: "ORDER-" + orderID,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return "", err
	}

	pushResp := stkPushResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&pushResp); err != nil {
		return "", err
	}

	// a checkout request id means the push went out even when the bridge
	// flags the response as unsuccessful
	if resp.StatusCode != http.StatusOK || (!pushResp.Success && pushResp.CheckoutRequestID == "") {
		reason := pushResp.Error
		if reason == "" {
			reason = "stk push rejected"
		}
		return "", models.GatewayError{Gateway: "mpesa", Reason: reason}
	}

	return pushResp.CheckoutRequestID, nil
}

// CheckStatus queries transaction status by checkout request id
func (c *Client) CheckStatus(ctx context.Context, reference string) (*models.Signal, error) {
	// GET /api/poll-transaction/{checkoutRequestID}
	u, err := url.JoinPath(c.baseURL, "api", "poll-transaction", reference)
	if err != nil {
		return nil, err
	}
	return c.fetchStatus(ctx, u)
}

// CheckStatusByOrder queries transaction status by order id. This is an
// independent lookup path from CheckStatus.
func (c *Client) CheckStatusByOrder(ctx context.Context, orderID string) (*models.Signal, error) {
	// GET /api/transaction-status/{orderID}
	u, err := url.JoinPath(c.baseURL, "api", "transaction-status", orderID)
	if err != nil {
		return nil, err
	}
	return c.fetchStatus(ctx, u)
}

// 200 — status available
// 204 — transaction not yet registered, treated as pending
// 429 — rate limited, caller should back off
func (c *Client) fetchStatus(ctx context.Context, u string) (*models.Signal, error) {
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
		return normalize(txResp), nil
	case http.StatusNoContent:
		return &models.Signal{Verdict: models.VerdictPending}, nil
	case http.StatusTooManyRequests:
		t := delaySeconds
		if val := resp.Header.Get("Retry-After"); val != "" {
			if n, err := strconv.Atoi(val); err == nil {
				t = n
			}
		}
		return nil, models.NewTooManyRequestsError(time.Duration(t) * time.Second)
	default:
		return nil, models.ErrInternalError
	}
}

func normalize(resp transactionResponse) *models.Signal {
	switch resp.Status {
	case "completed":
		return &models.Signal{Verdict: models.VerdictSuccess, Receipt: resp.ReceiptNumber}
	case "failed", "cancelled":
		reason := resp.ResultDesc
		if reason == "" {
			reason = "payment " + resp.Status
		}
		return &models.Signal{Verdict: models.VerdictFailure, Reason: reason}
	default:
		return &models.Signal{Verdict: models.VerdictPending}
	}
}
