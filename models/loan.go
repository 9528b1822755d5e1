package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/manpower-backend/utils"
)

// LoanStatus is the lifecycle state of a loan in the backend
type LoanStatus string

const (
	LoanPending  LoanStatus = "PENDING"
	LoanApproved LoanStatus = "APPROVED"
	LoanRejected LoanStatus = "REJECTED"
	LoanActive   LoanStatus = "ACTIVE"
	LoanPaid     LoanStatus = "PAID"
	LoanOverdue  LoanStatus = "OVERDUE"
)

// IsLive reports whether a loan in this status still counts against the member
func (s LoanStatus) IsLive() bool {
	switch s {
	case LoanPending, LoanApproved, LoanActive, LoanOverdue:
		return true
	}
	return false
}

// Loan is a loan as returned by the backend
type Loan struct {
	ID                 string          `json:"id"`
	Member             *Ref            `json:"member,omitempty"`
	Group              *Ref            `json:"group,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	InterestRate       decimal.Decimal `json:"interestRate"`
	StartDate          Date            `json:"startDate"`
	DueDate            Date            `json:"dueDate"`
	Status             LoanStatus      `json:"status"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	Reason             string          `json:"reason,omitempty"`
}

// BelongsTo reports whether the loan was taken by the given member
func (l *Loan) BelongsTo(memberID string) bool {
	return l.Member != nil && l.Member.ID == memberID
}

// LoanRequest is the body posted to the backend to create a loan
type LoanRequest struct {
	Member             Ref             `json:"member"`
	Group              Ref             `json:"group"`
	Amount             decimal.Decimal `json:"amount"`
	InterestRate       decimal.Decimal `json:"interestRate"`
	StartDate          Date            `json:"startDate"`
	DueDate            Date            `json:"dueDate"`
	Status             LoanStatus      `json:"status"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	Reason             string          `json:"reason"`
	ApprovedBy         Ref             `json:"approvedBy"`
	MansoftTenantID    string          `json:"mansoftTenantId,omitempty"`
}

// SubmitLoanRequest is the body accepted from the app
type SubmitLoanRequest struct {
	MemberID string          `json:"memberId" binding:"required"`
	GroupID  string          `json:"groupId"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason" binding:"required"`
}

// Decision codes returned when a loan request is turned down by a business rule
const (
	DecisionIneligible        = "INELIGIBLE_FOR_LOAN"
	DecisionLoanLimitExceeded = "LOAN_LIMIT_EXCEEDED"
	DecisionExistingLiveLoan  = "EXISTING_LIVE_LOAN"
)

// LoanDecision explains why a loan request was not submitted
type LoanDecision struct {
	Code          string          `json:"code"`
	Message       string          `json:"message"`
	MaxLoanAmount decimal.Decimal `json:"maxLoanAmount"`
}

// SubmitLoanResponse carries either the created loan or the decision that blocked it
type SubmitLoanResponse struct {
	Submitted bool          `json:"submitted"`
	Loan      *Loan         `json:"loan,omitempty"`
	Decision  *LoanDecision `json:"decision,omitempty"`
}

// Err maps the decision to its error kind
func (d *LoanDecision) Err() error {
	if d.Code == DecisionExistingLiveLoan {
		return fmt.Errorf("%w: %s", utils.ErrExistingLiveLoan, d.Message)
	}
	return fmt.Errorf("%w: %s", utils.ErrIneligibleForLoan, d.Message)
}
