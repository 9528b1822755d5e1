package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fadhlanhapp/manpower-backend/logger"
	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/repository"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

// PaymentGateway opens gateway orders through the backend
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req *models.GatewayInitiateRequest) (*models.GatewayInitiateResponse, error)
}

// PaymentSessionStore is the full persistence surface the payment service needs
type PaymentSessionStore interface {
	SessionStore
	CreateSession(ctx context.Context, session *models.PaymentSession) error
	ListByMember(ctx context.Context, memberID string) ([]models.PaymentSession, error)
}

// PaymentService handles payment initiation and owns one poller goroutine per
// open session
type PaymentService struct {
	gateway PaymentGateway
	store   PaymentSessionStore
	poller  *PaymentPoller

	baseCtx context.Context
	stop    context.CancelFunc
	mu      sync.Mutex
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewPaymentService creates a new payment service
func NewPaymentService(gateway PaymentGateway, store PaymentSessionStore, poller *PaymentPoller) *PaymentService {
	ctx, cancel := context.WithCancel(context.Background())
	return &PaymentService{
		gateway: gateway,
		store:   store,
		poller:  poller,
		baseCtx: ctx,
		stop:    cancel,
		running: make(map[string]context.CancelFunc),
	}
}

// Initiate opens a gateway order, persists the session and starts polling it
func (s *PaymentService) Initiate(ctx context.Context, req *models.InitiatePaymentRequest) (*models.PaymentSession, error) {
	if err := validateInitiateRequest(req); err != nil {
		return nil, err
	}

	transactionType := req.TransactionType
	if transactionType == "" {
		transactionType = models.TransactionContribution
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Contribution via Pesapal"
	}

	resp, err := s.gateway.InitiatePayment(ctx, &models.GatewayInitiateRequest{
		MemberID:        req.MemberID,
		GroupID:         req.GroupID,
		Amount:          req.Amount,
		TransactionType: transactionType,
		Description:     description,
		MansoftTenantID: req.MansoftTenantID,
		PhoneNumber:     req.PhoneNumber,
		CreatedBy:       req.MemberID,
	})
	if err != nil {
		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	now := time.Now().UTC()
	session := &models.PaymentSession{
		ID:              uuid.New().String(),
		OrderTrackingID: resp.OrderTrackingID,
		MemberID:        req.MemberID,
		GroupID:         req.GroupID,
		Amount:          req.Amount,
		PhoneNumber:     req.PhoneNumber,
		Description:     description,
		Status:          models.PaymentInitiated,
		RedirectURL:     resp.RedirectURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		// the gateway order is already open; without this record it cannot be reconciled
		logger.Error("failed to store payment session",
			zap.String("orderTrackingId", session.OrderTrackingID),
			zap.String("memberId", session.MemberID),
			zap.String("amount", session.Amount.String()),
			zap.Error(err))
		return nil, utils.NewInternalError(fmt.Sprintf("%s for order %s", utils.ErrFailedToStore, session.OrderTrackingID))
	}

	s.track(*session)

	logger.Info("payment initiated",
		zap.String("orderTrackingId", session.OrderTrackingID),
		zap.String("memberId", session.MemberID),
		zap.String("amount", session.Amount.String()))

	return session, nil
}

// Get returns the stored state of a session
func (s *PaymentService) Get(ctx context.Context, orderTrackingID string) (*models.PaymentSession, error) {
	if err := utils.ValidateRequired(orderTrackingID, "order tracking ID"); err != nil {
		return nil, err
	}

	session, err := s.store.GetByTrackingID(ctx, orderTrackingID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, utils.NewNotFoundError(utils.ErrSessionNotFound)
		}
		return nil, utils.NewInternalError(utils.ErrFailedToRetrieve)
	}
	return session, nil
}

// ListForMember returns a member's payment sessions, newest first
func (s *PaymentService) ListForMember(ctx context.Context, memberID string) ([]models.PaymentSession, error) {
	if err := utils.ValidateRequired(memberID, "member ID"); err != nil {
		return nil, err
	}

	sessions, err := s.store.ListByMember(ctx, memberID)
	if err != nil {
		return nil, utils.NewInternalError(utils.ErrFailedToRetrieve)
	}
	if sessions == nil {
		sessions = []models.PaymentSession{}
	}
	return sessions, nil
}

// Cancel stops polling a session without changing its status. The stale
// session sweep times it out later if it never settles.
func (s *PaymentService) Cancel(ctx context.Context, orderTrackingID string) (*models.PaymentSession, error) {
	session, err := s.Get(ctx, orderTrackingID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	cancel, ok := s.running[orderTrackingID]
	delete(s.running, orderTrackingID)
	s.mu.Unlock()

	if ok {
		cancel()
		logger.Info("payment polling cancelled", zap.String("orderTrackingId", orderTrackingID))
	}
	return session, nil
}

// IsPolling reports whether a poller is running for the order
func (s *PaymentService) IsPolling(orderTrackingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[orderTrackingID]
	return ok
}

// ActivePollers returns the number of sessions still being polled
func (s *PaymentService) ActivePollers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.running)
}

// StopAll cancels every running poller and waits for them to return
func (s *PaymentService) StopAll() {
	s.stop()
	s.wg.Wait()
}

func (s *PaymentService) track(session models.PaymentSession) {
	ctx, cancel := context.WithCancel(s.baseCtx)

	s.mu.Lock()
	s.running[session.OrderTrackingID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.untrack(session.OrderTrackingID)
		defer cancel()

		err := s.poller.Run(ctx, &session)
		switch {
		case errors.Is(err, context.Canceled):
			logger.Debug("payment poller stopped", zap.String("orderTrackingId", session.OrderTrackingID))
		case err != nil:
			logger.Warn("payment did not settle",
				zap.String("orderTrackingId", session.OrderTrackingID),
				zap.String("status", string(session.Status)),
				zap.Error(err))
		}
	}()
}

func (s *PaymentService) untrack(orderTrackingID string) {
	s.mu.Lock()
	delete(s.running, orderTrackingID)
	s.mu.Unlock()
}

func validateInitiateRequest(req *models.InitiatePaymentRequest) error {
	if err := utils.ValidateRequired(req.MemberID, "member ID"); err != nil {
		return err
	}
	if err := utils.ValidateRequired(req.GroupID, "group ID"); err != nil {
		return err
	}
	if err := utils.ValidatePositive(req.Amount, "amount"); err != nil {
		return err
	}
	return utils.ValidatePhoneNumber(req.PhoneNumber)
}
