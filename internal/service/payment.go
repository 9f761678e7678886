package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dialadrink/payrecon/internal/models"
	"github.com/dialadrink/payrecon/internal/recon"
	"go.uber.org/zap"
)

// OrderStore is the persisted order contract. The reconciliation flow
// creates an order once and patches its payment fields at most once.
type OrderStore interface {
	// CreateOrder inserts new unpaid order from draft
	CreateOrder(ctx context.Context, draft models.OrderDraft) (*models.Order, error)
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, orderID string) (*models.Order, error)
	// MarkPaid patches the order to paid, keeping an already-set transaction code
	MarkPaid(ctx context.Context, orderID string, receipt string) (*models.Order, error)
}

// PushGateway sends STK-style push requests and answers status lookups
type PushGateway interface {
	InitiatePush(ctx context.Context, orderID string, amount float64, phone string) (string, error)
	CheckStatus(ctx context.Context, reference string) (*models.Signal, error)
	CheckStatusByOrder(ctx context.Context, orderID string) (*models.Signal, error)
}

// RedirectGateway registers hosted-page checkouts and answers status lookups
type RedirectGateway interface {
	InitiateCheckout(ctx context.Context, orderID string, amount float64) (reference, redirectURL string, err error)
	CheckStatusByOrder(ctx context.Context, orderID string) (*models.Signal, error)
}

// SessionEvents is fired once per terminal session transition, never per
// poll round
type SessionEvents struct {
	OnReconciled func(order *models.Order)
	OnFailed     func(orderID, reason string)
	OnTimedOut   func(orderID string)
}

// errUpdateAfterConfirm reports a confirmed payment whose order patch
// failed; the receipt must be re-recorded manually
const errUpdateAfterConfirm = "payment confirmed but order update failed"

// InitiateResult is returned to the caller of Initiate/Prompt
type InitiateResult struct {
	Order       *models.Order
	Session     *models.SessionView
	RedirectURL string
}

// session is one bounded reconciliation attempt for one order. It lives
// only in process memory and its state field is the single source of
// truth for "are we still waiting".
type session struct {
	orderID   string
	channel   string
	reference string
	state     string
	reason    string
	receipt   string
	startedAt time.Time
	deadline  time.Time
	poller    *recon.Poller
	cancel    context.CancelFunc
}

func (s *session) view() *models.SessionView {
	return &models.SessionView{
		OrderID:   s.orderID,
		Channel:   s.channel,
		Reference: s.reference,
		State:     s.state,
		Reason:    s.reason,
		Receipt:   s.receipt,
		StartedAt: s.startedAt,
		Deadline:  s.deadline,
	}
}

// PaymentService orchestrates payment reconciliation: it creates the
// pending order, triggers the gateway, runs the poller and applies the
// final verdict to the order store exactly once per session.
type PaymentService struct {
	orders   OrderStore
	push     PushGateway
	redirect RedirectGateway
	interval time.Duration
	timeout  time.Duration
	events   SessionEvents
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session

	now func() time.Time
}

// NewPaymentService creates new PaymentService instance
func NewPaymentService(orders OrderStore, push PushGateway, redirect RedirectGateway, interval, timeout time.Duration, events SessionEvents, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		orders:   orders,
		push:     push,
		redirect: redirect,
		interval: interval,
		timeout:  timeout,
		events:   events,
		logger:   logger,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Initiate creates a pending order from draft and triggers payment
// collection on the given channel. The order persists even when payment
// never completes. For the manual channel no gateway is called and no
// session starts; the operator records the receipt later.
func (ps *PaymentService) Initiate(ctx context.Context, draft models.OrderDraft, channel, phone string) (*InitiateResult, error) {
	if draft.TotalAmount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	switch channel {
	case models.ChannelPush:
		normalized, ok := normalizePhone(phone)
		if !ok {
			return nil, models.ErrInvalidPhoneNumber
		}
		phone = normalized
	case models.ChannelRedirect, models.ChannelManual:
	default:
		return nil, models.ErrInvalidChannel
	}

	order, err := ps.orders.CreateOrder(ctx, draft)
	if err != nil {
		return nil, err
	}

	if channel == models.ChannelManual {
		return &InitiateResult{Order: order}, nil
	}

	return ps.startSession(ctx, order, channel, phone)
}

// Prompt re-triggers payment collection for an existing unpaid order,
// cancelling any session still waiting on it first so at most one
// session per order is ever awaiting payment.
func (ps *PaymentService) Prompt(ctx context.Context, orderID, channel, phone string) (*InitiateResult, error) {
	switch channel {
	case models.ChannelPush:
		normalized, ok := normalizePhone(phone)
		if !ok {
			return nil, models.ErrInvalidPhoneNumber
		}
		phone = normalized
	case models.ChannelRedirect:
	default:
		return nil, models.ErrInvalidChannel
	}

	order, err := ps.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, models.ErrConflictData
	}

	ps.Cancel(orderID)

	return ps.startSession(ctx, order, channel, phone)
}

func (ps *PaymentService) startSession(ctx context.Context, order *models.Order, channel, phone string) (*InitiateResult, error) {
	now := ps.now()
	sess := &session{
		orderID:   order.ID,
		channel:   channel,
		state:     models.SessionCreated,
		startedAt: now,
		deadline:  now.Add(ps.timeout),
	}

	// reserve the order's session slot before the gateway call. The
	// created placeholder keeps a competing initiation from starting a
	// second live session for the same order; Cancel can terminate it
	// while the gateway call is still in flight.
	ps.mu.Lock()
	if cur, ok := ps.sessions[order.ID]; ok &&
		(cur.state == models.SessionCreated || cur.state == models.SessionAwaitingPayment) {
		ps.mu.Unlock()
		return nil, models.ErrSessionActive
	}
	ps.sessions[order.ID] = sess
	ps.mu.Unlock()

	var (
		reference   string
		redirectURL string
		sources     []recon.StatusSource
		err         error
	)

	switch channel {
	case models.ChannelPush:
		reference, err = ps.push.InitiatePush(ctx, order.ID, order.TotalAmount, phone)
		if err == nil {
			sources = []recon.StatusSource{
				recon.NewReferenceSource(ps.push, reference),
				recon.NewOrderSnapshotSource(ps.orders, order.ID),
				recon.NewOrderLookupSource(ps.push, order.ID),
			}
		}
	case models.ChannelRedirect:
		reference, redirectURL, err = ps.redirect.InitiateCheckout(ctx, order.ID, order.TotalAmount)
		if err == nil {
			sources = []recon.StatusSource{
				recon.NewOrderLookupSource(ps.redirect, order.ID),
			}
		}
	}

	ps.mu.Lock()
	if sess.state != models.SessionCreated {
		// cancelled while the gateway call was in flight
		ps.mu.Unlock()
		return nil, models.ErrPaymentCancelled
	}

	if err != nil {
		// order stays unpaid and the caller may retry via Prompt
		sess.state = models.SessionFailed
		sess.reason = err.Error()
		ps.mu.Unlock()
		ps.logger.Info("payment initiation failed",
			zap.String("order", order.ID), zap.String("channel", channel), zap.Error(err))
		return nil, err
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	sess.reference = reference
	sess.state = models.SessionAwaitingPayment
	sess.cancel = cancel
	sess.poller = recon.NewPoller(sources, ps.interval, sess.deadline, ps.logger)
	view := sess.view()
	ps.mu.Unlock()

	ps.logger.Info("payment session started",
		zap.String("order", order.ID),
		zap.String("channel", channel),
		zap.String("reference", reference))

	go ps.watch(pollCtx, sess)

	return &InitiateResult{Order: order, Session: view, RedirectURL: redirectURL}, nil
}

// watch waits for the poller's outcome and applies it
func (ps *PaymentService) watch(ctx context.Context, sess *session) {
	sig, err := sess.poller.Run(ctx)
	switch {
	case err == nil:
		ps.finalize(sess, sig)
	case errors.Is(err, models.ErrPaymentTimeout):
		ps.finalizeTimeout(sess)
	default:
		// cancelled via Cancel, state already set there
	}
}

// finalize applies a definitive round signal. It is a no-op unless the
// session is still awaiting payment, which makes a duplicate call racing
// a cancellation harmless.
func (ps *PaymentService) finalize(sess *session, sig models.Signal) {
	ps.mu.Lock()
	if sess.state != models.SessionAwaitingPayment {
		ps.mu.Unlock()
		return
	}
	sess.cancel()

	switch sig.Verdict {
	case models.VerdictSuccess:
		sess.state = models.SessionReconciled
		sess.receipt = sig.Receipt
	case models.VerdictFailure:
		sess.state = models.SessionFailed
		sess.reason = sig.Reason
	}
	ps.mu.Unlock()

	if sig.Verdict == models.VerdictFailure {
		ps.logger.Info("payment failed",
			zap.String("order", sess.orderID),
			zap.String("source", sig.Source),
			zap.String("reason", sig.Reason))
		if ps.events.OnFailed != nil {
			ps.events.OnFailed(sess.orderID, sig.Reason)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := ps.orders.MarkPaid(ctx, sess.orderID, sig.Receipt)
	if err != nil {
		// the payment is confirmed but the order could not be patched:
		// fail the session loudly so the operator re-records the receipt
		ps.logger.Error("marking order paid failed",
			zap.String("order", sess.orderID), zap.Error(err))
		ps.mu.Lock()
		sess.state = models.SessionFailed
		sess.reason = errUpdateAfterConfirm
		ps.mu.Unlock()
		if ps.events.OnFailed != nil {
			ps.events.OnFailed(sess.orderID, errUpdateAfterConfirm)
		}
		return
	}

	// the stored code wins over the round's receipt when both exist
	ps.mu.Lock()
	sess.receipt = order.TransactionCode
	ps.mu.Unlock()

	ps.logger.Info("payment reconciled",
		zap.String("order", sess.orderID),
		zap.String("source", sig.Source),
		zap.String("receipt", order.TransactionCode))

	if ps.events.OnReconciled != nil {
		ps.events.OnReconciled(order)
	}
}

func (ps *PaymentService) finalizeTimeout(sess *session) {
	ps.mu.Lock()
	if sess.state != models.SessionAwaitingPayment {
		ps.mu.Unlock()
		return
	}
	sess.cancel()
	sess.state = models.SessionTimedOut
	sess.reason = models.ErrPaymentTimeout.Error()
	ps.mu.Unlock()

	ps.logger.Info("payment session timed out", zap.String("order", sess.orderID))

	if ps.events.OnTimedOut != nil {
		ps.events.OnTimedOut(sess.orderID)
	}
}

// Cancel stops a waiting or still-initiating session without touching
// the order's payment fields. It is a no-op when no session is live for
// the order.
func (ps *PaymentService) Cancel(orderID string) {
	ps.mu.Lock()
	sess, ok := ps.sessions[orderID]
	if !ok || (sess.state != models.SessionCreated && sess.state != models.SessionAwaitingPayment) {
		ps.mu.Unlock()
		return
	}
	if sess.cancel != nil {
		sess.cancel()
	}
	sess.state = models.SessionFailed
	sess.reason = models.ErrPaymentCancelled.Error()
	ps.mu.Unlock()

	ps.logger.Info("payment session cancelled", zap.String("order", orderID))

	if ps.events.OnFailed != nil {
		ps.events.OnFailed(orderID, sess.reason)
	}
}

// Session returns the current session snapshot for an order
func (ps *PaymentService) Session(orderID string) (*models.SessionView, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	sess, ok := ps.sessions[orderID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return sess.view(), nil
}

// NotifyWindowClosed reports that the hosted payment window was closed.
// The session re-checks immediately instead of waiting for the next tick;
// a still-pending answer resumes normal polling.
func (ps *PaymentService) NotifyWindowClosed(orderID string) error {
	ps.mu.Lock()
	sess, ok := ps.sessions[orderID]
	if !ok {
		ps.mu.Unlock()
		return models.ErrSessionNotFound
	}
	if sess.channel != models.ChannelRedirect || sess.state != models.SessionAwaitingPayment {
		ps.mu.Unlock()
		return models.ErrSessionTerminal
	}
	poller := sess.poller
	ps.mu.Unlock()

	poller.Nudge()
	return nil
}

// RecordManualPayment records a receipt confirmed outside this system,
// e.g. a card terminal printout. It bypasses polling entirely and obeys
// the same write-once rule for the transaction code.
func (ps *PaymentService) RecordManualPayment(ctx context.Context, orderID, receipt string, amount float64) (*models.Order, error) {
	if receipt == "" {
		return nil, models.ErrInvalidReceipt
	}

	order, err := ps.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if amount != order.TotalAmount {
		return nil, models.ErrAmountMismatch
	}

	// a session still waiting on this order is settled by the manual entry
	ps.mu.Lock()
	sess, ok := ps.sessions[orderID]
	settled := ok && sess.state == models.SessionAwaitingPayment
	if settled {
		sess.cancel()
		sess.state = models.SessionReconciled
	}
	ps.mu.Unlock()

	order, err = ps.orders.MarkPaid(ctx, orderID, receipt)
	if err != nil {
		if settled {
			ps.mu.Lock()
			sess.state = models.SessionFailed
			sess.reason = errUpdateAfterConfirm
			ps.mu.Unlock()
		}
		return nil, err
	}

	// the session mirrors the stored code, which may be an earlier one
	if settled {
		ps.mu.Lock()
		sess.receipt = order.TransactionCode
		ps.mu.Unlock()
	}

	ps.logger.Info("manual payment recorded",
		zap.String("order", orderID),
		zap.String("receipt", order.TransactionCode))

	if ps.events.OnReconciled != nil {
		ps.events.OnReconciled(order)
	}

	return order, nil
}

// normalizePhone converts a Safaricom number into 2547XXXXXXXX form
func normalizePhone(phone string) (string, bool) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()

	switch {
	case strings.HasPrefix(cleaned, "07") && len(cleaned) == 10:
		cleaned = "254" + cleaned[1:]
	case strings.HasPrefix(cleaned, "7") && len(cleaned) == 9:
		cleaned = "254" + cleaned
	}

	if !strings.HasPrefix(cleaned, "2547") || len(cleaned) != 12 {
		return "", false
	}
	return cleaned, true
}
