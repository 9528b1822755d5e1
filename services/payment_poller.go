package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fadhlanhapp/manpower-backend/logger"
	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

const paymentMethodPesapal = "Pesapal"

// StatusChecker reports the gateway status of an order
type StatusChecker interface {
	PaymentStatus(ctx context.Context, orderTrackingID string) (models.GatewayStatus, error)
}

// ContributionRecorder stores the contribution a settled payment paid for
type ContributionRecorder interface {
	CreateContribution(ctx context.Context, req *models.ContributionRequest) (*models.Contribution, error)
}

// SessionStore persists payment session progress. Transition only succeeds
// from INITIATED and reports whether this call made the change.
type SessionStore interface {
	GetByTrackingID(ctx context.Context, orderTrackingID string) (*models.PaymentSession, error)
	RecordAttempt(ctx context.Context, id string, attempts int) error
	Transition(ctx context.Context, id string, to models.PaymentStatus, attempts int, lastError string) (bool, error)
	SetContributionID(ctx context.Context, id, contributionID string) error
}

// PollerConfig controls how often and how long a session is polled
type PollerConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollerConfig polls every 5 seconds, 20 times
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:    utils.DefaultPollIntervalSeconds * time.Second,
		MaxAttempts: utils.DefaultPollMaxAttempts,
	}
}

// PaymentPoller drives a payment session from INITIATED to a terminal status
type PaymentPoller struct {
	checker  StatusChecker
	recorder ContributionRecorder
	store    SessionStore
	config   PollerConfig
	now      func() time.Time
}

// NewPaymentPoller creates a new payment poller
func NewPaymentPoller(checker StatusChecker, recorder ContributionRecorder, store SessionStore, config PollerConfig) *PaymentPoller {
	defaults := DefaultPollerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	return &PaymentPoller{
		checker:  checker,
		recorder: recorder,
		store:    store,
		config:   config,
		now:      time.Now,
	}
}

// Config returns the polling settings in use
func (p *PaymentPoller) Config() PollerConfig {
	return p.config
}

// Tick performs one status check. A terminal session is left untouched.
// The returned error is utils.ErrPaymentFailed or utils.ErrPaymentTimedOut
// when the session ends unsuccessfully, or a store/recorder error.
func (p *PaymentPoller) Tick(ctx context.Context, session *models.PaymentSession) error {
	if session.Status.IsTerminal() {
		return nil
	}

	session.Attempts++

	status, err := p.checker.PaymentStatus(ctx, session.OrderTrackingID)
	if err != nil {
		failure := fmt.Errorf("%w: status check for %s: %w", utils.ErrPaymentFailed, session.OrderTrackingID, err)
		return p.finish(ctx, session, models.PaymentFailed, failure)
	}

	switch status {
	case models.GatewayCompleted:
		return p.complete(ctx, session)
	case models.GatewayFailed:
		failure := fmt.Errorf("%w: gateway declined order %s", utils.ErrPaymentFailed, session.OrderTrackingID)
		return p.finish(ctx, session, models.PaymentFailed, failure)
	}

	if session.Attempts >= p.config.MaxAttempts {
		failure := fmt.Errorf("%w: order %s not settled after %d checks", utils.ErrPaymentTimedOut, session.OrderTrackingID, session.Attempts)
		return p.finish(ctx, session, models.PaymentTimedOut, failure)
	}

	if err := p.store.RecordAttempt(ctx, session.ID, session.Attempts); err != nil {
		logger.Warn("failed to record poll attempt",
			zap.String("orderTrackingId", session.OrderTrackingID), zap.Error(err))
	}
	return nil
}

// Run ticks on the configured interval until the session is terminal or ctx
// is cancelled. It returns the error of the final tick.
func (p *PaymentPoller) Run(ctx context.Context, session *models.PaymentSession) error {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		err := p.Tick(ctx, session)
		if session.Status.IsTerminal() {
			return err
		}
		if err != nil {
			logger.Warn("payment poll tick failed",
				zap.String("orderTrackingId", session.OrderTrackingID),
				zap.Int("attempts", session.Attempts),
				zap.Error(err))
			if session.Attempts >= p.config.MaxAttempts {
				return err
			}
		}
	}
}

func (p *PaymentPoller) complete(ctx context.Context, session *models.PaymentSession) error {
	won, err := p.store.Transition(ctx, session.ID, models.PaymentCompleted, session.Attempts, "")
	if err != nil {
		return fmt.Errorf("mark session %s completed: %w", session.OrderTrackingID, err)
	}
	if !won {
		return p.refresh(ctx, session)
	}
	session.Status = models.PaymentCompleted

	contribution, err := p.recorder.CreateContribution(ctx, p.contributionFor(session))
	if err != nil {
		logger.Error("payment settled but contribution was not recorded",
			zap.String("orderTrackingId", session.OrderTrackingID),
			zap.String("memberId", session.MemberID),
			zap.Error(err))
		session.LastError = err.Error()
		return fmt.Errorf("record contribution for %s: %w", session.OrderTrackingID, err)
	}

	session.ContributionID = contribution.ID
	if err := p.store.SetContributionID(ctx, session.ID, contribution.ID); err != nil {
		logger.Warn("failed to link contribution to session",
			zap.String("orderTrackingId", session.OrderTrackingID), zap.Error(err))
	}

	logger.Info("payment settled",
		zap.String("orderTrackingId", session.OrderTrackingID),
		zap.String("contributionId", contribution.ID),
		zap.Int("attempts", session.Attempts))
	return nil
}

func (p *PaymentPoller) finish(ctx context.Context, session *models.PaymentSession, to models.PaymentStatus, failure error) error {
	won, err := p.store.Transition(ctx, session.ID, to, session.Attempts, failure.Error())
	if err != nil {
		session.Status = to
		session.LastError = failure.Error()
		return errors.Join(failure, err)
	}
	if !won {
		return p.refresh(ctx, session)
	}

	session.Status = to
	session.LastError = failure.Error()
	logger.Info("payment session closed",
		zap.String("orderTrackingId", session.OrderTrackingID),
		zap.String("status", string(to)),
		zap.Int("attempts", session.Attempts),
		zap.String("reason", session.LastError))
	return failure
}

// refresh reloads a session another writer already closed and reports its
// outcome without acting on it again.
func (p *PaymentPoller) refresh(ctx context.Context, session *models.PaymentSession) error {
	stored, err := p.store.GetByTrackingID(ctx, session.OrderTrackingID)
	if err != nil {
		return fmt.Errorf("reload session %s: %w", session.OrderTrackingID, err)
	}
	*session = *stored
	return outcomeError(session)
}

func (p *PaymentPoller) contributionFor(session *models.PaymentSession) *models.ContributionRequest {
	description := session.Description
	if description == "" {
		description = "Contribution via Pesapal"
	}
	return &models.ContributionRequest{
		MemberID:        session.MemberID,
		Member:          models.Ref{ID: session.MemberID},
		Group:           models.Ref{ID: session.GroupID},
		Amount:          session.Amount,
		TransactionType: models.TransactionContribution,
		Status:          models.StatusCompleted,
		TransactionDate: models.DateOf(p.now()),
		PaymentMethod:   paymentMethodPesapal,
		Description:     description,
		CreatedBy:       session.MemberID,
	}
}

// outcomeError maps a session's terminal status to its error
func outcomeError(session *models.PaymentSession) error {
	switch session.Status {
	case models.PaymentFailed:
		return fmt.Errorf("%w: %s", utils.ErrPaymentFailed, session.LastError)
	case models.PaymentTimedOut:
		return fmt.Errorf("%w: %s", utils.ErrPaymentTimedOut, session.LastError)
	}
	return nil
}
