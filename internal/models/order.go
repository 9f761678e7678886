package models

import "time"

// payment status of an order
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// order lifecycle status, written by order-management flows; the
// reconciliation flow only reads it
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// payment channels
const (
	ChannelPush     = "push"
	ChannelRedirect = "redirect"
	ChannelManual   = "manual"
)

// Order is order entity. The reconciliation flow may only write
// PaymentStatus and TransactionCode; everything else belongs to
// order-management flows.
type Order struct {
	ID              string
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	TotalAmount     float64
	Status          string
	PaymentStatus   string
	// TransactionCode is the settlement receipt. Empty string is the
	// placeholder; it is set at most once by the reconciliation flow.
	TransactionCode string
	CreatedAt       time.Time
}

// OrderLine is one line item of an order draft
type OrderLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderDraft is the finished cart handed over by the order-creation UI
type OrderDraft struct {
	CustomerName    string      `json:"customerName"`
	CustomerPhone   string      `json:"customerPhone"`
	DeliveryAddress string      `json:"deliveryAddress"`
	Lines           []OrderLine `json:"items"`
	TotalAmount     float64     `json:"totalAmount"`
}
