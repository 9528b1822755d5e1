package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fadhlanhapp/manpower-backend/logger"
	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

// LoanBackend is the part of the backend the loan service talks to
type LoanBackend interface {
	GetMember(ctx context.Context, memberID string) (*models.Member, error)
	GetMemberLoans(ctx context.Context, memberID string) ([]models.Loan, error)
	CreateLoan(ctx context.Context, req *models.LoanRequest) (*models.Loan, error)
}

// LoanDefaults are applied to every new loan request
type LoanDefaults struct {
	InterestRatePercent decimal.Decimal
	RepaymentMonths     int
}

// DefaultLoanDefaults is 10% a year over 6 months
func DefaultLoanDefaults() LoanDefaults {
	return LoanDefaults{
		InterestRatePercent: decimal.NewFromInt(utils.DefaultInterestRatePercent),
		RepaymentMonths:     utils.DefaultRepaymentMonths,
	}
}

// LoanService gates and submits member loan requests
type LoanService struct {
	backend     LoanBackend
	eligibility *EligibilityService
	defaults    LoanDefaults
	now         func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(backend LoanBackend, eligibility *EligibilityService, defaults LoanDefaults) *LoanService {
	if defaults.RepaymentMonths < 1 {
		defaults.RepaymentMonths = utils.DefaultRepaymentMonths
	}
	return &LoanService{
		backend:     backend,
		eligibility: eligibility,
		defaults:    defaults,
		now:         time.Now,
	}
}

// SubmitLoanRequest checks eligibility, the loan limit and existing loans,
// then posts the request to the backend. A business-rule rejection comes back
// as a decision in the response, not as an error.
func (s *LoanService) SubmitLoanRequest(ctx context.Context, req *models.SubmitLoanRequest) (*models.SubmitLoanResponse, error) {
	if err := validateLoanRequest(req); err != nil {
		return nil, err
	}

	eligibility, err := s.eligibility.ForMember(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	if !eligibility.IsEligible {
		return rejected(models.DecisionIneligible, fmt.Sprintf(
			"You need at least %s in completed contributions to request a loan. You have contributed %s.",
			utils.FormatMoney(s.eligibility.Policy().MinContributionForLoan),
			utils.FormatMoney(eligibility.TotalContributed)), decimal.Zero), nil
	}

	if req.Amount.GreaterThan(eligibility.MaxLoanAmount) {
		return rejected(models.DecisionLoanLimitExceeded, fmt.Sprintf(
			"The requested amount exceeds your limit of %s.",
			utils.FormatMoney(eligibility.MaxLoanAmount)), eligibility.MaxLoanAmount), nil
	}

	loans, err := s.backend.GetMemberLoans(ctx, req.MemberID)
	if err != nil {
		return nil, fmt.Errorf("fetch loans for member %s: %w", req.MemberID, err)
	}
	if HasLiveLoan(loans) {
		return rejected(models.DecisionExistingLiveLoan,
			"You already have a loan that is pending or being repaid.", eligibility.MaxLoanAmount), nil
	}

	member, err := s.backend.GetMember(ctx, req.MemberID)
	if err != nil {
		return nil, fmt.Errorf("fetch member %s: %w", req.MemberID, err)
	}

	groupID := strings.TrimSpace(req.GroupID)
	if groupID == "" && member.Group != nil {
		groupID = member.Group.ID
	}
	if groupID == "" {
		return nil, utils.NewValidationError("member does not belong to a group")
	}

	start := models.DateOf(s.now())
	loan, err := s.backend.CreateLoan(ctx, &models.LoanRequest{
		Member:             models.Ref{ID: member.ID},
		Group:              models.Ref{ID: groupID},
		Amount:             req.Amount,
		InterestRate:       s.defaults.InterestRatePercent,
		StartDate:          start,
		DueDate:            models.DateOf(utils.AddMonths(start.Time, s.defaults.RepaymentMonths)),
		Status:             models.LoanPending,
		OutstandingBalance: req.Amount,
		Reason:             strings.TrimSpace(req.Reason),
		ApprovedBy:         models.Ref{ID: member.ID},
		MansoftTenantID:    member.MansoftTenantID,
	})
	if err != nil {
		return nil, fmt.Errorf("submit loan for member %s: %w", req.MemberID, err)
	}

	logger.Info("loan request submitted",
		zap.String("memberId", req.MemberID),
		zap.String("member", utils.FullName(member.FirstName, member.LastName)),
		zap.String("loanId", loan.ID),
		zap.String("amount", req.Amount.String()))

	return &models.SubmitLoanResponse{Submitted: true, Loan: loan}, nil
}

func rejected(code, message string, maxLoanAmount decimal.Decimal) *models.SubmitLoanResponse {
	return &models.SubmitLoanResponse{
		Decision: &models.LoanDecision{
			Code:          code,
			Message:       message,
			MaxLoanAmount: maxLoanAmount,
		},
	}
}

func validateLoanRequest(req *models.SubmitLoanRequest) error {
	if err := utils.ValidateRequired(req.MemberID, "member ID"); err != nil {
		return err
	}
	if err := utils.ValidatePositive(req.Amount, "loan amount"); err != nil {
		return err
	}
	return utils.ValidateRequired(req.Reason, "reason")
}
