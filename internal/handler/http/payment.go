package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dialadrink/payrecon/internal/models"
	"github.com/dialadrink/payrecon/internal/service"
	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=payment.go -destination=mocks/payment.go -package=mocks

type PaymentService interface {
	// Initiate creates a pending order and triggers payment collection
	Initiate(ctx context.Context, draft models.OrderDraft, channel, phone string) (*service.InitiateResult, error)
	// Prompt re-triggers payment collection for an existing unpaid order
	Prompt(ctx context.Context, orderID, channel, phone string) (*service.InitiateResult, error)
	// Cancel stops a waiting session without touching the order
	Cancel(orderID string)
	// Session returns the current session snapshot for an order
	Session(orderID string) (*models.SessionView, error)
	// NotifyWindowClosed forces an immediate status re-check for a redirect session
	NotifyWindowClosed(orderID string) error
	// RecordManualPayment records an out-of-band receipt
	RecordManualPayment(ctx context.Context, orderID, receipt string, amount float64) (*models.Order, error)
}

// PaymentHandler represents HTTP handler for payment-related requests
type PaymentHandler struct {
	svc PaymentService
}

// NewPaymentHandler creates new PaymentHandler instance
func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type initiateRequest struct {
	models.OrderDraft
	Channel string `json:"channel"`
	Phone   string `json:"phone,omitempty"`
}

type orderResponse struct {
	ID              string    `json:"id"`
	CustomerName    string    `json:"customerName,omitempty"`
	TotalAmount     float64   `json:"totalAmount"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"paymentStatus"`
	TransactionCode string    `json:"transactionCode,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type initiateResponse struct {
	Order       orderResponse       `json:"order"`
	Session     *models.SessionView `json:"session,omitempty"`
	RedirectURL string              `json:"redirectUrl,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	return orderResponse{
		ID:              order.ID,
		CustomerName:    order.CustomerName,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		TransactionCode: order.TransactionCode,
		CreatedAt:       order.CreatedAt,
	}
}

// InitiatePayment creates an order and starts payment collection
// 202 — order created, payment session started
// 400 — bad request
// 401 — operator not authenticated
// 422 — invalid amount, phone number or channel
// 502 — gateway rejected the payment request (order is kept, retry later)
// 500 — internal error
func (ph *PaymentHandler) InitiatePayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req initiateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		result, err := ph.svc.Initiate(r.Context(), req.OrderDraft, req.Channel, req.Phone)
		if err != nil {
			writePaymentError(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, initiateResponse{
			Order:       newOrderResponse(result.Order),
			Session:     result.Session,
			RedirectURL: result.RedirectURL,
		})
	}
}

type promptRequest struct {
	Channel string `json:"channel"`
	Phone   string `json:"phone,omitempty"`
}

// PromptPayment re-triggers payment collection for an unpaid order
// 202 — payment session started
// 400 — bad request
// 401 — operator not authenticated
// 404 — order not found
// 409 — order already paid, or a competing prompt won the session slot
// 422 — invalid phone number or channel
// 502 — gateway rejected the payment request
func (ph *PaymentHandler) PromptPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req promptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		result, err := ph.svc.Prompt(r.Context(), chi.URLParam(r, "orderID"), req.Channel, req.Phone)
		if err != nil {
			writePaymentError(w, err)
			return
		}

		writeJSON(w, http.StatusAccepted, initiateResponse{
			Order:       newOrderResponse(result.Order),
			Session:     result.Session,
			RedirectURL: result.RedirectURL,
		})
	}
}

// GetSession returns the payment session snapshot for an order
// 200 — session returned
// 401 — operator not authenticated
// 404 — no session for order
func (ph *PaymentHandler) GetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		view, err := ph.svc.Session(chi.URLParam(r, "orderID"))
		if err != nil {
			if errors.Is(err, models.ErrSessionNotFound) {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

// CancelSession cancels a waiting payment session
// 204 — cancelled (or nothing to cancel)
// 401 — operator not authenticated
func (ph *PaymentHandler) CancelSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ph.svc.Cancel(chi.URLParam(r, "orderID"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// WindowClosed reports the hosted payment window was closed by the customer
// 204 — re-check triggered
// 401 — operator not authenticated
// 404 — no session for order
// 409 — session is not a waiting redirect session
func (ph *PaymentHandler) WindowClosed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := ph.svc.NotifyWindowClosed(chi.URLParam(r, "orderID"))
		if err != nil {
			switch {
			case errors.Is(err, models.ErrSessionNotFound):
				http.Error(w, "session not found", http.StatusNotFound)
			case errors.Is(err, models.ErrSessionTerminal):
				http.Error(w, "session is not waiting", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type manualPaymentRequest struct {
	Receipt string  `json:"receipt"`
	Amount  float64 `json:"amount"`
}

// RecordManualPayment records a receipt taken on a card terminal or other
// out-of-band channel
// 200 — order marked paid
// 400 — bad request
// 401 — operator not authenticated
// 404 — order not found
// 409 — amount does not match order total
// 422 — missing receipt
func (ph *PaymentHandler) RecordManualPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req manualPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := ph.svc.RecordManualPayment(r.Context(), chi.URLParam(r, "orderID"), req.Receipt, req.Amount)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrAmountMismatch):
				http.Error(w, "amount does not match order total", http.StatusConflict)
			case errors.Is(err, models.ErrInvalidReceipt):
				http.Error(w, "receipt is required", http.StatusUnprocessableEntity)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

func writePaymentError(w http.ResponseWriter, err error) {
	var gwErr models.GatewayError
	switch {
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidPhoneNumber),
		errors.Is(err, models.ErrInvalidChannel):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrDataNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	case errors.Is(err, models.ErrConflictData):
		http.Error(w, "order already paid", http.StatusConflict)
	case errors.Is(err, models.ErrSessionActive), errors.Is(err, models.ErrPaymentCancelled):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &gwErr):
		http.Error(w, gwErr.Error(), http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}
