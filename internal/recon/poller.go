package recon

import (
	"context"
	"errors"
	"time"

	"github.com/dialadrink/payrecon/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Poller runs the reconciliation loop for one session: every interval it
// queries all sources concurrently, reduces their signals and stops at
// the first definitive round or at the deadline.
type Poller struct {
	sources  []StatusSource
	interval time.Duration
	deadline time.Time
	logger   *zap.Logger

	nudge chan struct{}
	now   func() time.Time
}

// NewPoller creates a poller over sources given in priority order
func NewPoller(sources []StatusSource, interval time.Duration, deadline time.Time, logger *zap.Logger) *Poller {
	return &Poller{
		sources:  sources,
		interval: interval,
		deadline: deadline,
		logger:   logger,
		nudge:    make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Nudge requests an immediate extra round, used when the redirect payment
// window is reported closed. Safe to call from any goroutine; redundant
// nudges collapse into one.
func (p *Poller) Nudge() {
	select {
	case p.nudge <- struct{}{}:
	default:
	}
}

// Run polls until a definitive signal, the deadline or ctx cancellation.
// It returns the deciding signal, models.ErrPaymentTimeout past the
// deadline, or ctx.Err(). The deadline is checked before each round so a
// session cannot poll past it even when every query is slow.
func (p *Poller) Run(ctx context.Context) (models.Signal, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var backoffUntil time.Time

	for {
		select {
		case <-ctx.Done():
			return models.Signal{}, ctx.Err()
		case <-ticker.C:
		case <-p.nudge:
			p.logger.Debug("payment window reported closed, re-checking now")
		}

		if !p.now().Before(p.deadline) {
			return models.Signal{}, models.ErrPaymentTimeout
		}

		if p.now().Before(backoffUntil) {
			continue
		}

		round, retryAfter := p.round(ctx)
		if retryAfter > 0 {
			backoffUntil = p.now().Add(retryAfter)
		}

		if round.Verdict != models.VerdictPending {
			return round, nil
		}
	}
}

// round queries every source concurrently and reduces the results. A
// query error is absorbed as pending so a transient failure never aborts
// reconciliation. A rate-limited source asks the whole loop to back off.
func (p *Poller) round(ctx context.Context) (models.Signal, time.Duration) {
	signals := make([]models.Signal, len(p.sources))
	delays := make([]time.Duration, len(p.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range p.sources {
		g.Go(func() error {
			sig, err := src.Check(gctx)
			if err != nil {
				var tooMany models.TooManyRequestsError
				if errors.As(err, &tooMany) {
					delays[i] = tooMany.RetryAfter
				}
				p.logger.Debug("status check failed, treating as pending",
					zap.String("source", src.Name()), zap.Error(err))
				signals[i] = models.Signal{Source: src.Name(), Verdict: models.VerdictPending}
				return nil
			}
			signals[i] = *sig
			return nil
		})
	}
	g.Wait()

	var retryAfter time.Duration
	for _, d := range delays {
		if d > retryAfter {
			retryAfter = d
		}
	}

	return Reduce(signals), retryAfter
}
