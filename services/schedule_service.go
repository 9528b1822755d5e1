package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

const monthlyRatePlaces = 6

var (
	hundred        = decimal.NewFromInt(100)
	monthsPerYear  = decimal.NewFromInt(12)
	monthlyDivisor = hundred.Mul(monthsPerYear)
)

// LoanSource fetches a single loan
type LoanSource interface {
	GetLoan(ctx context.Context, loanID string) (*models.Loan, error)
}

// ScheduleService builds equal-principal repayment schedules
type ScheduleService struct {
	loans         LoanSource
	defaultMonths int
}

// NewScheduleService creates a new schedule service. defaultMonths is the
// term used for loans whose dates do not span a whole month.
func NewScheduleService(loans LoanSource, defaultMonths int) *ScheduleService {
	if defaultMonths < 1 {
		defaultMonths = utils.DefaultRepaymentMonths
	}
	return &ScheduleService{
		loans:         loans,
		defaultMonths: defaultMonths,
	}
}

// GenerateSchedule produces termMonths+1 rows: a zero-payment grace row for
// the disbursement month, then one row per repayment month. It is a pure
// function of terms.
func GenerateSchedule(terms models.LoanTerms) ([]models.ScheduleRow, error) {
	if err := validateTerms(terms); err != nil {
		return nil, err
	}

	principalPayment := terms.Principal.Div(decimal.NewFromInt(int64(terms.TermMonths)))
	balance := terms.Principal

	rows := make([]models.ScheduleRow, 0, terms.TermMonths+1)
	rows = append(rows, models.ScheduleRow{
		Period:           1,
		MonthLabel:       terms.StartDate.Format(utils.MonthLabelLayout),
		PrincipalPortion: decimal.Zero,
		InterestPortion:  decimal.Zero,
		TotalPayment:     decimal.Zero,
		ClosingBalance:   balance,
	})

	for i := 1; i <= terms.TermMonths; i++ {
		// balance * rate / 1200 keeps exact cases exact (60000 @ 10% -> 500)
		interest := balance.Mul(terms.AnnualInterestRatePercent).Div(monthlyDivisor)
		closing := balance.Sub(principalPayment)
		if i == terms.TermMonths || closing.IsNegative() {
			// principal/termMonths is not always exact; the last payment clears the loan
			closing = decimal.Zero
		}

		rows = append(rows, models.ScheduleRow{
			Period:           i + 1,
			MonthLabel:       utils.AddMonths(terms.StartDate.Time, i).Format(utils.MonthLabelLayout),
			PrincipalPortion: principalPayment,
			InterestPortion:  interest,
			TotalPayment:     principalPayment.Add(interest),
			ClosingBalance:   closing,
		})

		balance = closing
	}

	return rows, nil
}

// FlatInterest is the interest the backend books on a new loan: principal x
// monthly rate x months, rounded to cents. The backend rounds the rate to 6
// places at each division (60000 @ 10% over 6 months is 2999.88, not 3000).
func FlatInterest(terms models.LoanTerms) decimal.Decimal {
	monthlyRate := terms.AnnualInterestRatePercent.
		DivRound(hundred, monthlyRatePlaces).
		DivRound(monthsPerYear, monthlyRatePlaces)
	return utils.RoundMoney(terms.Principal.
		Mul(monthlyRate).
		Mul(decimal.NewFromInt(int64(terms.TermMonths))))
}

// BuildSchedule generates the rows and their totals
func (s *ScheduleService) BuildSchedule(terms models.LoanTerms) (*models.Schedule, error) {
	rows, err := GenerateSchedule(terms)
	if err != nil {
		return nil, err
	}

	totalInterest := decimal.Zero
	for _, row := range rows {
		totalInterest = totalInterest.Add(row.InterestPortion)
	}

	return &models.Schedule{
		Terms:          terms,
		Rows:           rows,
		TotalInterest:  totalInterest,
		TotalRepayable: terms.Principal.Add(totalInterest),
		FlatInterest:   FlatInterest(terms),
	}, nil
}

// TermsForLoan derives schedule inputs from a backend loan: the term is the
// number of whole months between start and due date, falling back to the
// default term when the dates are missing or closer than a month.
func (s *ScheduleService) TermsForLoan(loan *models.Loan) models.LoanTerms {
	months := 0
	if !loan.StartDate.IsZero() && !loan.DueDate.IsZero() {
		months = utils.MonthsBetween(loan.StartDate.Time, loan.DueDate.Time)
	}
	if months < 1 {
		months = s.defaultMonths
	}

	return models.LoanTerms{
		Principal:                 loan.Amount,
		AnnualInterestRatePercent: loan.InterestRate,
		TermMonths:                months,
		StartDate:                 loan.StartDate,
	}
}

// ScheduleForLoan fetches a loan and builds its schedule
func (s *ScheduleService) ScheduleForLoan(ctx context.Context, loanID string) (*models.Schedule, error) {
	if err := utils.ValidateRequired(loanID, "loan ID"); err != nil {
		return nil, err
	}

	loan, err := s.loans.GetLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("fetch loan %s: %w", loanID, err)
	}

	return s.BuildSchedule(s.TermsForLoan(loan))
}

func validateTerms(terms models.LoanTerms) error {
	if !terms.Principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive, got %s", utils.ErrInvalidLoanTerms, terms.Principal)
	}
	if terms.TermMonths < 1 {
		return fmt.Errorf("%w: term must be at least 1 month, got %d", utils.ErrInvalidLoanTerms, terms.TermMonths)
	}
	if terms.TermMonths > utils.MaxRepaymentMonths {
		return fmt.Errorf("%w: term cannot exceed %d months, got %d", utils.ErrInvalidLoanTerms, utils.MaxRepaymentMonths, terms.TermMonths)
	}
	if terms.AnnualInterestRatePercent.IsNegative() {
		return fmt.Errorf("%w: interest rate cannot be negative, got %s", utils.ErrInvalidLoanTerms, terms.AnnualInterestRatePercent)
	}
	if terms.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", utils.ErrInvalidLoanTerms)
	}
	return nil
}
