package models

import (
	"github.com/shopspring/decimal"
)

// TransactionType classifies a contribution record
type TransactionType string

const (
	TransactionContribution TransactionType = "Contribution"
	TransactionExpense      TransactionType = "Expense"
	TransactionLoanPayment  TransactionType = "LoanPayment"
)

// TransactionStatus tells whether the money actually moved
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "Completed"
	StatusPending   TransactionStatus = "Pending"
)

// Contribution is a member's money movement as stored by the backend
type Contribution struct {
	ID              string            `json:"id,omitempty"`
	Amount          decimal.Decimal   `json:"amount"`
	TransactionType TransactionType   `json:"transactionType"`
	Status          TransactionStatus `json:"status"`
	TransactionDate Date              `json:"transactionDate"`
	PaymentMethod   string            `json:"paymentMethod,omitempty"`
	Description     string            `json:"description,omitempty"`
}

// ContributionRequest is the body posted to the backend once a payment settles
type ContributionRequest struct {
	MemberID        string            `json:"memberId"`
	Member          Ref               `json:"member"`
	Group           Ref               `json:"group"`
	Amount          decimal.Decimal   `json:"amount"`
	TransactionType TransactionType   `json:"transactionType"`
	Status          TransactionStatus `json:"status"`
	TransactionDate Date              `json:"transactionDate"`
	PaymentMethod   string            `json:"paymentMethod"`
	Description     string            `json:"description"`
	MansoftTenantID string            `json:"mansoftTenantId,omitempty"`
	CreatedBy       string            `json:"createdBy,omitempty"`
	ModifiedBy      string            `json:"modifiedBy,omitempty"`
}

// EligibilityResult is derived from a member's completed contributions
type EligibilityResult struct {
	MemberID          string          `json:"memberId,omitempty"`
	TotalContributed  decimal.Decimal `json:"totalContributed"`
	IsEligible        bool            `json:"isEligible"`
	MaxLoanAmount     decimal.Decimal `json:"maxLoanAmount"`
	ContributionCount int             `json:"contributionCount"`
	Warnings          []string        `json:"warnings,omitempty"`
}
