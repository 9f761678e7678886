package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dialadrink/payrecon/internal/handler/http/mocks"
	"github.com/dialadrink/payrecon/internal/models"
	"github.com/dialadrink/payrecon/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func paymentRequest(t *testing.T, method, target, body string, token *models.TokenPayload, orderID string) *http.Request {
	t.Helper()

	req, err := http.NewRequest(method, target, strings.NewReader(body))
	if err != nil {
		t.Fatal("cannot create request", zap.Error(err))
	}

	ctx := req.Context()
	if token != nil {
		ctx = context.WithValue(ctx, authPayloadKey, token)
	}
	if orderID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("orderID", orderID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func TestPaymentHandler_InitiatePayment(t *testing.T) {
	staff := &models.TokenPayload{Login: "staff"}

	tests := []struct {
		name           string
		token          *models.TokenPayload
		body           string
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
	}{
		{
			// 202 — order created, session awaiting payment
			name:  "push_request_return_202",
			token: staff,
			body:  `{"customerName":"Jane","totalAmount":500,"channel":"push","phone":"0712345678"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Initiate(gomock.Any(), gomock.Any(), "push", "0712345678").Return(&service.InitiateResult{
					Order:   &models.Order{ID: "order-1", TotalAmount: 500, PaymentStatus: models.PaymentStatusUnpaid},
					Session: &models.SessionView{OrderID: "order-1", State: models.SessionAwaitingPayment},
				}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusAccepted,
		},
		{
			// 400 — malformed body
			name:  "bad_request_return_400",
			token: staff,
			body:  "not json",
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Initiate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 401 — operator not authenticated
			name: "unauthorized_request_return_401",
			body: `{"totalAmount":500,"channel":"push","phone":"0712345678"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Initiate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			// 422 — validation rejected
			name:  "invalid_amount_return_422",
			token: staff,
			body:  `{"totalAmount":0,"channel":"push","phone":"0712345678"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Initiate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrInvalidAmount).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			// 422 — bad phone number
			name:  "invalid_phone_return_422",
			token: staff,
			body:  `{"totalAmount":500,"channel":"push","phone":"12345"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Initiate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrInvalidPhoneNumber).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			// 502 — gateway rejected the push, order kept
			name:  "gateway_failure_return_502",
			token: staff,
			body:  `{"totalAmount":500,"channel":"push","phone":"0712345678"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Initiate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.GatewayError{Gateway: "mpesa", Reason: "rejected"}).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusBadGateway,
		},
		{
			// 500 — internal error
			name:  "internal_error_return_500",
			token: staff,
			body:  `{"totalAmount":500,"channel":"redirect"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Initiate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrInternalError).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := paymentRequest(t, http.MethodPost, "/api/payments", tt.body, tt.token, "")
			w := httptest.NewRecorder()

			handler := NewPaymentHandler(tt.setup(t))
			h := handler.InitiatePayment()
			h(w, req)

			res := w.Result()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
			defer res.Body.Close()
		})
	}
}

func TestPaymentHandler_InitiatePaymentRedirectBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svcMock := mocks.NewMockPaymentService(ctrl)
	svcMock.EXPECT().Initiate(gomock.Any(), gomock.Any(), "redirect", "").Return(&service.InitiateResult{
		Order: &models.Order{
			ID:            "order-9",
			TotalAmount:   900,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusUnpaid,
			CreatedAt:     createdAt,
		},
		Session:     &models.SessionView{OrderID: "order-9", Channel: models.ChannelRedirect, State: models.SessionAwaitingPayment},
		RedirectURL: "https://pay.example/order-9",
	}, nil)

	req := paymentRequest(t, http.MethodPost, "/api/payments", `{"totalAmount":900,"channel":"redirect"}`, &models.TokenPayload{Login: "staff"}, "")
	w := httptest.NewRecorder()

	h := NewPaymentHandler(svcMock).InitiatePayment()
	h(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusAccepted, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var got initiateResponse
	require.NoError(t, json.Unmarshal(body, &got))

	want := initiateResponse{
		Order: orderResponse{
			ID:            "order-9",
			TotalAmount:   900,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusUnpaid,
			CreatedAt:     createdAt,
		},
		Session:     &models.SessionView{OrderID: "order-9", Channel: models.ChannelRedirect, State: models.SessionAwaitingPayment},
		RedirectURL: "https://pay.example/order-9",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected response (-want +got):\n%s", diff)
	}
}

func TestPaymentHandler_PromptPayment(t *testing.T) {
	staff := &models.TokenPayload{Login: "staff"}

	tests := []struct {
		name           string
		token          *models.TokenPayload
		body           string
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
	}{
		{
			// 202 — re-prompt accepted
			name:  "valid_request_return_202",
			token: staff,
			body:  `{"channel":"push","phone":"0712345678"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Prompt(gomock.Any(), "order-1", "push", "0712345678").Return(&service.InitiateResult{
					Order:   &models.Order{ID: "order-1", TotalAmount: 500, PaymentStatus: models.PaymentStatusUnpaid},
					Session: &models.SessionView{OrderID: "order-1", State: models.SessionAwaitingPayment},
				}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusAccepted,
		},
		{
			// 404 — unknown order
			name:  "order_not_found_return_404",
			token: staff,
			body:  `{"channel":"push","phone":"0712345678"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Prompt(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrDataNotFound).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			// 409 — order already paid
			name:  "order_paid_return_409",
			token: staff,
			body:  `{"channel":"push","phone":"0712345678"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Prompt(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrConflictData).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			// 401 — operator not authenticated
			name: "unauthorized_request_return_401",
			body: `{"channel":"push","phone":"0712345678"}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Prompt(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := paymentRequest(t, http.MethodPost, "/api/payments/order-1/prompt", tt.body, tt.token, "order-1")
			w := httptest.NewRecorder()

			handler := NewPaymentHandler(tt.setup(t))
			h := handler.PromptPayment()
			h(w, req)

			res := w.Result()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
			defer res.Body.Close()
		})
	}
}

func TestPaymentHandler_GetSession(t *testing.T) {
	staff := &models.TokenPayload{Login: "staff"}

	tests := []struct {
		name           string
		token          *models.TokenPayload
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
	}{
		{
			// 200 — session snapshot returned
			name:  "valid_request_return_200",
			token: staff,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Session("order-1").Return(&models.SessionView{
					OrderID: "order-1",
					Channel: models.ChannelPush,
					State:   models.SessionAwaitingPayment,
				}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// 404 — no session for order
			name:  "not_found_return_404",
			token: staff,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Session(gomock.Any()).Return(nil, models.ErrSessionNotFound).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			// 401 — operator not authenticated
			name: "unauthorized_request_return_401",
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().Session(gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := paymentRequest(t, http.MethodGet, "/api/payments/order-1/session", "", tt.token, "order-1")
			w := httptest.NewRecorder()

			handler := NewPaymentHandler(tt.setup(t))
			h := handler.GetSession()
			h(w, req)

			res := w.Result()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
			defer res.Body.Close()
		})
	}
}

func TestPaymentHandler_CancelSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svcMock := mocks.NewMockPaymentService(ctrl)
	svcMock.EXPECT().Cancel("order-1")

	req := paymentRequest(t, http.MethodPost, "/api/payments/order-1/cancel", "", &models.TokenPayload{Login: "staff"}, "order-1")
	w := httptest.NewRecorder()

	h := NewPaymentHandler(svcMock).CancelSession()
	h(w, req)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestPaymentHandler_WindowClosed(t *testing.T) {
	staff := &models.TokenPayload{Login: "staff"}

	tests := []struct {
		name           string
		token          *models.TokenPayload
		svcErr         error
		wantStatusCode int
	}{
		// 204 — re-check triggered
		{name: "valid_request_return_204", token: staff, svcErr: nil, wantStatusCode: http.StatusNoContent},
		// 404 — no session for order
		{name: "not_found_return_404", token: staff, svcErr: models.ErrSessionNotFound, wantStatusCode: http.StatusNotFound},
		// 409 — not a waiting redirect session
		{name: "terminal_session_return_409", token: staff, svcErr: models.ErrSessionTerminal, wantStatusCode: http.StatusConflict},
		// 401 — operator not authenticated
		{name: "unauthorized_request_return_401", wantStatusCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svcMock := mocks.NewMockPaymentService(ctrl)
			if tt.token != nil {
				svcMock.EXPECT().NotifyWindowClosed("order-1").Return(tt.svcErr)
			}

			req := paymentRequest(t, http.MethodPost, "/api/payments/order-1/window-closed", "", tt.token, "order-1")
			w := httptest.NewRecorder()

			h := NewPaymentHandler(svcMock).WindowClosed()
			h(w, req)

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
		})
	}
}

func TestPaymentHandler_RecordManualPayment(t *testing.T) {
	staff := &models.TokenPayload{Login: "staff"}

	tests := []struct {
		name           string
		token          *models.TokenPayload
		body           string
		setup          func(t *testing.T) *mocks.MockPaymentService
		wantStatusCode int
	}{
		{
			// 200 — receipt recorded, order paid
			name:  "valid_request_return_200",
			token: staff,
			body:  `{"receipt":"PDQ-777","amount":1200}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().RecordManualPayment(gomock.Any(), "order-1", "PDQ-777", float64(1200)).Return(&models.Order{
					ID:              "order-1",
					TotalAmount:     1200,
					PaymentStatus:   models.PaymentStatusPaid,
					TransactionCode: "PDQ-777",
				}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// 404 — unknown order
			name:  "order_not_found_return_404",
			token: staff,
			body:  `{"receipt":"PDQ-777","amount":1200}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().RecordManualPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrDataNotFound).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			// 409 — amount mismatch
			name:  "amount_mismatch_return_409",
			token: staff,
			body:  `{"receipt":"PDQ-777","amount":1000}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().RecordManualPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrAmountMismatch).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			// 422 — missing receipt
			name:  "missing_receipt_return_422",
			token: staff,
			body:  `{"receipt":"","amount":1200}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().RecordManualPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrInvalidReceipt).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			// 400 — malformed body
			name:  "bad_request_return_400",
			token: staff,
			body:  "not json",
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().RecordManualPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			// 401 — operator not authenticated
			name: "unauthorized_request_return_401",
			body: `{"receipt":"PDQ-777","amount":1200}`,
			setup: func(t *testing.T) *mocks.MockPaymentService {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockPaymentService(ctrl)
				svcMock.EXPECT().RecordManualPayment(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := paymentRequest(t, http.MethodPost, "/api/payments/order-1/manual", tt.body, tt.token, "order-1")
			w := httptest.NewRecorder()

			handler := NewPaymentHandler(tt.setup(t))
			h := handler.RecordManualPayment()
			h(w, req)

			res := w.Result()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
			defer res.Body.Close()
		})
	}
}
