package recon

import (
	"context"

	"github.com/dialadrink/payrecon/internal/models"
)

// signal source names, in merge priority order
const (
	SourceReference     = "reference_lookup"
	SourceOrderSnapshot = "order_snapshot"
	SourceOrderLookup   = "order_lookup"
)

// StatusSource is one independent way of finding out whether a payment
// went through. Sources are bound to a single session's keys; the poller
// is agnostic to how many there are.
type StatusSource interface {
	Name() string
	Check(ctx context.Context) (*models.Signal, error)
}

// StatusChecker is the gateway-side lookup by gateway reference
type StatusChecker interface {
	CheckStatus(ctx context.Context, reference string) (*models.Signal, error)
}

// OrderStatusChecker is the gateway-side lookup by order id
type OrderStatusChecker interface {
	CheckStatusByOrder(ctx context.Context, orderID string) (*models.Signal, error)
}

// OrderGetter reads the persisted order record
type OrderGetter interface {
	GetOrderByID(ctx context.Context, orderID string) (*models.Order, error)
}

// ReferenceSource checks transaction status by gateway reference
type ReferenceSource struct {
	checker   StatusChecker
	reference string
}

func NewReferenceSource(checker StatusChecker, reference string) *ReferenceSource {
	return &ReferenceSource{checker: checker, reference: reference}
}

func (s *ReferenceSource) Name() string { return SourceReference }

func (s *ReferenceSource) Check(ctx context.Context) (*models.Signal, error) {
	sig, err := s.checker.CheckStatus(ctx, s.reference)
	if err != nil {
		return nil, err
	}
	sig.Source = s.Name()
	return sig, nil
}

// OrderSnapshotSource reads the order record itself. A webhook the
// service never sees may have already flipped it to paid.
type OrderSnapshotSource struct {
	orders  OrderGetter
	orderID string
}

func NewOrderSnapshotSource(orders OrderGetter, orderID string) *OrderSnapshotSource {
	return &OrderSnapshotSource{orders: orders, orderID: orderID}
}

func (s *OrderSnapshotSource) Name() string { return SourceOrderSnapshot }

func (s *OrderSnapshotSource) Check(ctx context.Context) (*models.Signal, error) {
	order, err := s.orders.GetOrderByID(ctx, s.orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return &models.Signal{Source: s.Name(), Verdict: models.VerdictSuccess, Receipt: order.TransactionCode}, nil
	}
	return &models.Signal{Source: s.Name(), Verdict: models.VerdictPending}, nil
}

// OrderLookupSource checks transaction status by order id, a lookup path
// independent of the reference one
type OrderLookupSource struct {
	checker OrderStatusChecker
	orderID string
}

func NewOrderLookupSource(checker OrderStatusChecker, orderID string) *OrderLookupSource {
	return &OrderLookupSource{checker: checker, orderID: orderID}
}

func (s *OrderLookupSource) Name() string { return SourceOrderLookup }

func (s *OrderLookupSource) Check(ctx context.Context) (*models.Signal, error) {
	sig, err := s.checker.CheckStatusByOrder(ctx, s.orderID)
	if err != nil {
		return nil, err
	}
	sig.Source = s.Name()
	return sig, nil
}
