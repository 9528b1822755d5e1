package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/repository"
)

// scriptedGateway answers status checks from a script; the last entry repeats
type scriptedGateway struct {
	mu       sync.Mutex
	statuses []models.GatewayStatus
	errs     map[int]error
	calls    int

	initiateResp *models.GatewayInitiateResponse
	initiateErr  error
	initiated    []*models.GatewayInitiateRequest
}

func (g *scriptedGateway) PaymentStatus(ctx context.Context, orderTrackingID string) (models.GatewayStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	if err, ok := g.errs[g.calls]; ok {
		return "", err
	}
	if len(g.statuses) == 0 {
		return models.GatewayInitiated, nil
	}
	i := g.calls - 1
	if i >= len(g.statuses) {
		i = len(g.statuses) - 1
	}
	return g.statuses[i], nil
}

func (g *scriptedGateway) InitiatePayment(ctx context.Context, req *models.GatewayInitiateRequest) (*models.GatewayInitiateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.initiated = append(g.initiated, req)
	return g.initiateResp, g.initiateErr
}

func (g *scriptedGateway) statusCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type recordingRecorder struct {
	mu       sync.Mutex
	requests []*models.ContributionRequest
	err      error
}

func (r *recordingRecorder) CreateContribution(ctx context.Context, req *models.ContributionRequest) (*models.Contribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &models.Contribution{ID: fmt.Sprintf("contrib-%d", len(r.requests)), Amount: req.Amount}, nil
}

func (r *recordingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// memoryStore keeps sessions in memory with the same conditional
// transition rule as the Postgres repository
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.PaymentSession
	failOn   string
}

func newMemoryStore(sessions ...models.PaymentSession) *memoryStore {
	s := &memoryStore{sessions: make(map[string]*models.PaymentSession)}
	for i := range sessions {
		session := sessions[i]
		s.sessions[session.ID] = &session
	}
	return s
}

func (s *memoryStore) CreateSession(ctx context.Context, session *models.PaymentSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failOn == "create" {
		return fmt.Errorf("insert failed")
	}
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *memoryStore) GetByTrackingID(ctx context.Context, orderTrackingID string) (*models.PaymentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		if session.OrderTrackingID == orderTrackingID {
			found := *session
			return &found, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (s *memoryStore) ListByMember(ctx context.Context, memberID string) ([]models.PaymentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.PaymentSession
	for _, session := range s.sessions {
		if session.MemberID == memberID {
			out = append(out, *session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) RecordAttempt(ctx context.Context, id string, attempts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok && session.Status == models.PaymentInitiated {
		session.Attempts = attempts
	}
	return nil
}

func (s *memoryStore) Transition(ctx context.Context, id string, to models.PaymentStatus, attempts int, lastError string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failOn == "transition" {
		return false, fmt.Errorf("update failed")
	}
	session, ok := s.sessions[id]
	if !ok || session.Status != models.PaymentInitiated {
		return false, nil
	}
	session.Status = to
	session.Attempts = attempts
	session.LastError = lastError
	return true, nil
}

func (s *memoryStore) SetContributionID(ctx context.Context, id, contributionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.ContributionID = contributionID
	}
	return nil
}

func (s *memoryStore) get(id string) models.PaymentSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.sessions[id]
}
