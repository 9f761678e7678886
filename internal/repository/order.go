package repository

import (
	"context"
	"errors"

	"github.com/dialadrink/payrecon/internal/models"
	"github.com/dialadrink/payrecon/internal/repository/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	insertOrderQuery = `
						INSERT INTO orders (id, customer_name, customer_phone, delivery_address, total_amount, status, payment_status, transaction_code)
						VALUES ($1, $2, $3, $4, $5, $6, $7, '')
						RETURNING id, customer_name, customer_phone, delivery_address, total_amount, status, payment_status, transaction_code, created_at
`
	insertOrderItemQuery = `
						INSERT INTO order_items (order_id, product_id, name, quantity, price)
						VALUES ($1, $2, $3, $4, $5)
`
	selectOrderByIDQuery = `
						SELECT id, customer_name, customer_phone, delivery_address, total_amount, status, payment_status, transaction_code, created_at
						FROM orders
						WHERE id = $1
`
	// transaction_code is write-once from the reconciliation flow: an
	// already-set code is never overwritten, even if a slower redundant
	// signal lands later
	markPaidQuery = `
						UPDATE orders
						SET payment_status   = 'paid',
						    transaction_code = CASE WHEN transaction_code = '' THEN $1 ELSE transaction_code END
						WHERE id = $2
						RETURNING id, customer_name, customer_phone, delivery_address, total_amount, status, payment_status, transaction_code, created_at
`
)

// OrderRepository implements the order store on postgres
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts new order with its line items. Payment fields start
// at unpaid with an empty transaction code.
func (or *OrderRepository) CreateOrder(ctx context.Context, draft models.OrderDraft) (*models.Order, error) {
	tx, err := or.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	order := models.Order{}
	err = tx.QueryRow(ctx, insertOrderQuery,
		uuid.NewString(),
		draft.CustomerName,
		draft.CustomerPhone,
		draft.DeliveryAddress,
		draft.TotalAmount,
		models.OrderStatusPending,
		models.PaymentStatusUnpaid,
	).Scan(&order.ID, &order.CustomerName, &order.CustomerPhone, &order.DeliveryAddress, &order.TotalAmount, &order.Status, &order.PaymentStatus, &order.TransactionCode, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, line := range draft.Lines {
		if _, err := tx.Exec(ctx, insertOrderItemQuery, order.ID, line.ProductID, line.Name, line.Quantity, line.Price); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &order, nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, selectOrderByIDQuery, orderID).Scan(&order.ID, &order.CustomerName, &order.CustomerPhone, &order.DeliveryAddress, &order.TotalAmount, &order.Status, &order.PaymentStatus, &order.TransactionCode, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// MarkPaid patches the order to paid. The transaction code is written only
// when it is still the empty placeholder; the stored code wins otherwise.
func (or *OrderRepository) MarkPaid(ctx context.Context, orderID string, receipt string) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, markPaidQuery, receipt, orderID).Scan(&order.ID, &order.CustomerName, &order.CustomerPhone, &order.DeliveryAddress, &order.TotalAmount, &order.Status, &order.PaymentStatus, &order.TransactionCode, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}
