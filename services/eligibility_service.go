package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fadhlanhapp/manpower-backend/logger"
	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

// EligibilityPolicy holds the loan eligibility rule
type EligibilityPolicy struct {
	MinContributionForLoan decimal.Decimal
	MaxLoanFactor          decimal.Decimal
}

// DefaultEligibilityPolicy is 5000 minimum contributed, up to 3x as a loan
func DefaultEligibilityPolicy() EligibilityPolicy {
	return EligibilityPolicy{
		MinContributionForLoan: decimal.NewFromInt(utils.DefaultMinContributionForLoan),
		MaxLoanFactor:          decimal.NewFromInt(utils.DefaultMaxLoanFactor),
	}
}

// ContributionSource fetches a member's contribution history
type ContributionSource interface {
	GetMemberContributions(ctx context.Context, memberID string) ([]models.Contribution, error)
}

// EligibilityService evaluates whether a member may borrow
type EligibilityService struct {
	policy        EligibilityPolicy
	contributions ContributionSource
}

// NewEligibilityService creates a new eligibility service
func NewEligibilityService(policy EligibilityPolicy, contributions ContributionSource) *EligibilityService {
	return &EligibilityService{
		policy:        policy,
		contributions: contributions,
	}
}

// Policy returns the rule the service applies
func (s *EligibilityService) Policy() EligibilityPolicy {
	return s.policy
}

// Evaluate sums the completed contributions and applies the policy. Records
// with a non-positive amount are skipped and reported as warnings.
func (s *EligibilityService) Evaluate(contributions []models.Contribution) *models.EligibilityResult {
	total := decimal.Zero
	counted := 0
	var warnings []string

	for _, c := range contributions {
		if c.TransactionType != models.TransactionContribution || c.Status != models.StatusCompleted {
			continue
		}
		if !c.Amount.IsPositive() {
			warnings = append(warnings, fmt.Sprintf("contribution %s has non-positive amount %s and was ignored",
				recordLabel(c), c.Amount.String()))
			continue
		}
		total = total.Add(c.Amount)
		counted++
	}

	result := &models.EligibilityResult{
		TotalContributed:  total,
		IsEligible:        total.GreaterThanOrEqual(s.policy.MinContributionForLoan),
		MaxLoanAmount:     decimal.Zero,
		ContributionCount: counted,
		Warnings:          warnings,
	}
	if result.IsEligible {
		result.MaxLoanAmount = total.Mul(s.policy.MaxLoanFactor)
	}

	return result
}

// ForMember fetches a member's contributions and evaluates them
func (s *EligibilityService) ForMember(ctx context.Context, memberID string) (*models.EligibilityResult, error) {
	if err := utils.ValidateRequired(memberID, "member ID"); err != nil {
		return nil, err
	}

	contributions, err := s.contributions.GetMemberContributions(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("fetch contributions for member %s: %w", memberID, err)
	}

	result := s.Evaluate(contributions)
	result.MemberID = memberID

	for _, w := range result.Warnings {
		logger.Warn("contribution data integrity", zap.String("memberId", memberID), zap.String("warning", w))
	}

	return result, nil
}

// HasLiveLoan reports whether any loan is still pending or being repaid
func HasLiveLoan(loans []models.Loan) bool {
	for _, loan := range loans {
		if loan.Status.IsLive() && loan.OutstandingBalance.IsPositive() {
			return true
		}
	}
	return false
}

func recordLabel(c models.Contribution) string {
	if c.ID != "" {
		return c.ID
	}
	return "dated " + c.TransactionDate.String()
}
