package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

type fakeLoanBackend struct {
	member    *models.Member
	loans     []models.Loan
	loansErr  error
	createErr error
	created   []*models.LoanRequest
}

func (f *fakeLoanBackend) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	if f.member == nil {
		return nil, errors.New("member not found")
	}
	return f.member, nil
}

func (f *fakeLoanBackend) GetMemberLoans(ctx context.Context, memberID string) ([]models.Loan, error) {
	return f.loans, f.loansErr
}

func (f *fakeLoanBackend) CreateLoan(ctx context.Context, req *models.LoanRequest) (*models.Loan, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &models.Loan{
		ID:                 "loan-42",
		Member:             &req.Member,
		Group:              &req.Group,
		Amount:             req.Amount,
		InterestRate:       req.InterestRate,
		StartDate:          req.StartDate,
		DueDate:            req.DueDate,
		Status:             req.Status,
		OutstandingBalance: req.OutstandingBalance,
	}, nil
}

func newTestLoanService(contributed string, backend *fakeLoanBackend) *LoanService {
	contributions := &stubContributions{}
	if contributed != "" {
		contributions.records = []models.Contribution{contribution(contributed)}
	}
	eligibility := NewEligibilityService(DefaultEligibilityPolicy(), contributions)
	service := NewLoanService(backend, eligibility, DefaultLoanDefaults())
	service.now = func() time.Time { return time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC) }
	return service
}

func loanRequest(amount string) *models.SubmitLoanRequest {
	return &models.SubmitLoanRequest{
		MemberID: "m-1",
		Amount:   dec(amount),
		Reason:   "School fees",
	}
}

func memberInGroup() *models.Member {
	return &models.Member{
		ID:              "m-1",
		FirstName:       "amina",
		LastName:        "otieno",
		Group:           &models.Group{ID: "g-7"},
		MansoftTenantID: "tenant-3",
	}
}

func TestSubmitLoanRequest_Submits(t *testing.T) {
	backend := &fakeLoanBackend{member: memberInGroup()}
	service := newTestLoanService("6000", backend)

	resp, err := service.SubmitLoanRequest(context.Background(), loanRequest("18000"))
	require.NoError(t, err)

	assert.True(t, resp.Submitted)
	assert.Nil(t, resp.Decision)
	assert.Equal(t, "loan-42", resp.Loan.ID)

	require.Len(t, backend.created, 1)
	req := backend.created[0]
	assert.Equal(t, "m-1", req.Member.ID)
	assert.Equal(t, "g-7", req.Group.ID)
	assert.Equal(t, "m-1", req.ApprovedBy.ID)
	assert.Equal(t, "tenant-3", req.MansoftTenantID)
	assert.Equal(t, models.LoanPending, req.Status)
	assert.True(t, req.InterestRate.Equal(dec("10")))
	assert.True(t, req.OutstandingBalance.Equal(dec("18000")))
	assert.Equal(t, "2025-01-31", req.StartDate.String())
	assert.Equal(t, "2025-07-31", req.DueDate.String())
	assert.Equal(t, "School fees", req.Reason)
}

func TestSubmitLoanRequest_RequestGroupWins(t *testing.T) {
	backend := &fakeLoanBackend{member: memberInGroup()}
	service := newTestLoanService("6000", backend)

	req := loanRequest("1000")
	req.GroupID = "g-override"
	_, err := service.SubmitLoanRequest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "g-override", backend.created[0].Group.ID)
}

func TestSubmitLoanRequest_Decisions(t *testing.T) {
	tests := []struct {
		name        string
		contributed string
		amount      string
		loans       []models.Loan
		code        string
		wantErr     error
	}{
		{"no contributions", "", "1000", nil, models.DecisionIneligible, utils.ErrIneligibleForLoan},
		{"below minimum", "4999.99", "1000", nil, models.DecisionIneligible, utils.ErrIneligibleForLoan},
		{"over limit", "5000", "15000.01", nil, models.DecisionLoanLimitExceeded, utils.ErrIneligibleForLoan},
		{"live loan", "5000", "15000", []models.Loan{{
			Status:             models.LoanActive,
			OutstandingBalance: dec("200"),
		}}, models.DecisionExistingLiveLoan, utils.ErrExistingLiveLoan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeLoanBackend{member: memberInGroup(), loans: tt.loans}
			service := newTestLoanService(tt.contributed, backend)

			resp, err := service.SubmitLoanRequest(context.Background(), loanRequest(tt.amount))
			require.NoError(t, err)

			assert.False(t, resp.Submitted)
			require.NotNil(t, resp.Decision)
			assert.Equal(t, tt.code, resp.Decision.Code)
			assert.NotEmpty(t, resp.Decision.Message)
			assert.True(t, errors.Is(resp.Decision.Err(), tt.wantErr))
			assert.Equal(t, http.StatusUnprocessableEntity, utils.StatusFor(resp.Decision.Err()))
			assert.Empty(t, backend.created)
		})
	}
}

func TestSubmitLoanRequest_PaidLoanDoesNotBlock(t *testing.T) {
	backend := &fakeLoanBackend{member: memberInGroup(), loans: []models.Loan{{
		Status:             models.LoanPaid,
		OutstandingBalance: dec("0"),
	}}}
	service := newTestLoanService("5000", backend)

	resp, err := service.SubmitLoanRequest(context.Background(), loanRequest("15000"))
	require.NoError(t, err)
	assert.True(t, resp.Submitted)
}

func TestSubmitLoanRequest_Validation(t *testing.T) {
	service := newTestLoanService("6000", &fakeLoanBackend{member: memberInGroup()})

	noReason := loanRequest("1000")
	noReason.Reason = "  "
	_, err := service.SubmitLoanRequest(context.Background(), noReason)
	assert.Equal(t, http.StatusBadRequest, appErrorCode(t, err))

	_, err = service.SubmitLoanRequest(context.Background(), loanRequest("0"))
	assert.Equal(t, http.StatusBadRequest, appErrorCode(t, err))
}

func TestSubmitLoanRequest_MemberWithoutGroup(t *testing.T) {
	member := memberInGroup()
	member.Group = nil
	service := newTestLoanService("6000", &fakeLoanBackend{member: member})

	_, err := service.SubmitLoanRequest(context.Background(), loanRequest("1000"))
	assert.Equal(t, http.StatusBadRequest, appErrorCode(t, err))
}

func TestSubmitLoanRequest_BackendErrorsPropagate(t *testing.T) {
	backend := &fakeLoanBackend{member: memberInGroup(), loansErr: errors.New("loans unavailable")}
	service := newTestLoanService("6000", backend)

	_, err := service.SubmitLoanRequest(context.Background(), loanRequest("1000"))
	assert.ErrorContains(t, err, "loans unavailable")

	backend.loansErr = nil
	backend.createErr = errors.New("create rejected")
	_, err = service.SubmitLoanRequest(context.Background(), loanRequest("1000"))
	assert.ErrorContains(t, err, "create rejected")
}
