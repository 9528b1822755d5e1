package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fadhlanhapp/manpower-backend/logger"
	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

func initiateRequest() *models.InitiatePaymentRequest {
	return &models.InitiatePaymentRequest{
		MemberID:        "m-1",
		GroupID:         "g-1",
		Amount:          dec("1500"),
		PhoneNumber:     "+254712345678",
		MansoftTenantID: "tenant-1",
	}
}

func newTestPaymentService(gateway *scriptedGateway, store *memoryStore, interval time.Duration) (*PaymentService, *recordingRecorder) {
	recorder := &recordingRecorder{}
	poller := NewPaymentPoller(gateway, recorder, store, PollerConfig{Interval: interval, MaxAttempts: 5})
	return NewPaymentService(gateway, store, poller), recorder
}

func appErrorCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestPaymentService_InitiatePollsUntilSettled(t *testing.T) {
	gateway := &scriptedGateway{
		statuses:     []models.GatewayStatus{models.GatewayInitiated, models.GatewayCompleted},
		initiateResp: &models.GatewayInitiateResponse{OrderTrackingID: "order-9", RedirectURL: "https://pay.example/order-9"},
	}
	store := newMemoryStore()
	service, recorder := newTestPaymentService(gateway, store, time.Millisecond)
	defer service.StopAll()

	session, err := service.Initiate(context.Background(), initiateRequest())
	require.NoError(t, err)

	_, err = uuid.Parse(session.ID)
	assert.NoError(t, err)
	assert.Equal(t, "order-9", session.OrderTrackingID)
	assert.Equal(t, "https://pay.example/order-9", session.RedirectURL)
	assert.Equal(t, models.PaymentInitiated, session.Status)

	require.Len(t, gateway.initiated, 1)
	forwarded := gateway.initiated[0]
	assert.Equal(t, models.TransactionContribution, forwarded.TransactionType)
	assert.Equal(t, "Contribution via Pesapal", forwarded.Description)
	assert.Equal(t, "tenant-1", forwarded.MansoftTenantID)
	assert.Equal(t, "m-1", forwarded.CreatedBy)

	assert.Eventually(t, func() bool {
		return store.get(session.ID).Status == models.PaymentCompleted && service.ActivePollers() == 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, recorder.count())
	assert.Equal(t, "contrib-1", store.get(session.ID).ContributionID)
}

func TestPaymentService_InitiateValidation(t *testing.T) {
	gateway := &scriptedGateway{initiateResp: &models.GatewayInitiateResponse{OrderTrackingID: "order-1"}}
	service, _ := newTestPaymentService(gateway, newMemoryStore(), time.Hour)
	defer service.StopAll()

	cases := map[string]func(*models.InitiatePaymentRequest){
		"missing member": func(r *models.InitiatePaymentRequest) { r.MemberID = "" },
		"missing group":  func(r *models.InitiatePaymentRequest) { r.GroupID = " " },
		"zero amount":    func(r *models.InitiatePaymentRequest) { r.Amount = dec("0") },
		"bad phone":      func(r *models.InitiatePaymentRequest) { r.PhoneNumber = "07x" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := initiateRequest()
			mutate(req)
			_, err := service.Initiate(context.Background(), req)
			assert.Equal(t, http.StatusBadRequest, appErrorCode(t, err))
		})
	}
	assert.Empty(t, gateway.initiated)
}

func TestPaymentService_InitiateGatewayError(t *testing.T) {
	gateway := &scriptedGateway{initiateErr: errors.New("gateway unavailable")}
	store := newMemoryStore()
	service, _ := newTestPaymentService(gateway, store, time.Hour)
	defer service.StopAll()

	_, err := service.Initiate(context.Background(), initiateRequest())

	assert.ErrorContains(t, err, "gateway unavailable")
	assert.Empty(t, store.sessions)
	assert.Equal(t, 0, service.ActivePollers())
}

func TestPaymentService_InitiateStoreError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	defer logger.Replace(zap.New(core))()

	gateway := &scriptedGateway{initiateResp: &models.GatewayInitiateResponse{OrderTrackingID: "order-1"}}
	store := newMemoryStore()
	store.failOn = "create"
	service, _ := newTestPaymentService(gateway, store, time.Hour)
	defer service.StopAll()

	_, err := service.Initiate(context.Background(), initiateRequest())

	assert.Equal(t, http.StatusInternalServerError, appErrorCode(t, err))
	assert.Contains(t, err.Error(), "order-1")
	assert.Equal(t, 0, service.ActivePollers())

	entries := logs.FilterMessage("failed to store payment session").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "order-1", fields["orderTrackingId"])
	assert.Equal(t, "m-1", fields["memberId"])
	assert.Equal(t, "insert failed", fields["error"])
}

func TestPaymentService_CancelStopsPolling(t *testing.T) {
	gateway := &scriptedGateway{initiateResp: &models.GatewayInitiateResponse{OrderTrackingID: "order-2"}}
	store := newMemoryStore()
	service, _ := newTestPaymentService(gateway, store, time.Hour)
	defer service.StopAll()

	_, err := service.Initiate(context.Background(), initiateRequest())
	require.NoError(t, err)
	assert.True(t, service.IsPolling("order-2"))

	session, err := service.Cancel(context.Background(), "order-2")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentInitiated, session.Status)
	assert.False(t, service.IsPolling("order-2"))
	assert.Equal(t, 0, gateway.statusCalls())

	_, err = service.Cancel(context.Background(), "unknown")
	assert.Equal(t, http.StatusNotFound, appErrorCode(t, err))
}

func TestPaymentService_StopAllWaitsForPollers(t *testing.T) {
	gateway := &scriptedGateway{initiateResp: &models.GatewayInitiateResponse{OrderTrackingID: "order-3"}}
	service, _ := newTestPaymentService(gateway, newMemoryStore(), time.Hour)

	_, err := service.Initiate(context.Background(), initiateRequest())
	require.NoError(t, err)

	service.StopAll()
	assert.Equal(t, 0, service.ActivePollers())
}

func TestPaymentService_GetAndList(t *testing.T) {
	older := openSession()
	older.CreatedAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := openSession()
	newer.ID, newer.OrderTrackingID = "sess-2", "order-2"
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	other := openSession()
	other.ID, other.OrderTrackingID, other.MemberID = "sess-3", "order-3", "m-2"

	service, _ := newTestPaymentService(&scriptedGateway{}, newMemoryStore(older, newer, other), time.Hour)
	defer service.StopAll()

	session, err := service.Get(context.Background(), "order-2")
	require.NoError(t, err)
	assert.Equal(t, "sess-2", session.ID)

	_, err = service.Get(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, appErrorCode(t, err))

	sessions, err := service.ListForMember(context.Background(), "m-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "sess-2", sessions[0].ID)

	none, err := service.ListForMember(context.Background(), "m-9")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
