package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the local state of a payment session
type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "INITIATED"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentTimedOut  PaymentStatus = "TIMED_OUT"
)

// IsTerminal reports whether no further transitions are allowed
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCompleted || s == PaymentFailed || s == PaymentTimedOut
}

// GatewayStatus is what the backend reports for an order
type GatewayStatus string

const (
	GatewayInitiated GatewayStatus = "INITIATED"
	GatewayCompleted GatewayStatus = "COMPLETED"
	GatewayFailed    GatewayStatus = "FAILED"
)

// PaymentSession tracks one initiated payment until it settles
type PaymentSession struct {
	ID              string          `json:"id" db:"id"`
	OrderTrackingID string          `json:"orderTrackingId" db:"order_tracking_id"`
	MemberID        string          `json:"memberId" db:"member_id"`
	GroupID         string          `json:"groupId" db:"group_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	PhoneNumber     string          `json:"phoneNumber" db:"phone_number"`
	Description     string          `json:"description" db:"description"`
	Status          PaymentStatus   `json:"status" db:"status"`
	Attempts        int             `json:"attempts" db:"attempts"`
	ContributionID  string          `json:"contributionId,omitempty" db:"contribution_id"`
	LastError       string          `json:"lastError,omitempty" db:"last_error"`
	RedirectURL     string          `json:"redirectUrl,omitempty" db:"redirect_url"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// InitiatePaymentRequest is the body accepted from the app
type InitiatePaymentRequest struct {
	MemberID        string          `json:"memberId" binding:"required"`
	GroupID         string          `json:"groupId" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	PhoneNumber     string          `json:"phoneNumber" binding:"required"`
	TransactionType TransactionType `json:"transactionType"`
	Description     string          `json:"description"`
	MansoftTenantID string          `json:"mansoftTenantId"`
}

// GatewayInitiateRequest is the body forwarded to the backend's payment endpoint
type GatewayInitiateRequest struct {
	MemberID        string          `json:"memberId"`
	GroupID         string          `json:"groupId"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType TransactionType `json:"transactionType"`
	Description     string          `json:"description"`
	MansoftTenantID string          `json:"mansoftTenantId"`
	PhoneNumber     string          `json:"phoneNumber"`
	CreatedBy       string          `json:"createdBy"`
}

// GatewayInitiateResponse is the backend's answer to an initiation
type GatewayInitiateResponse struct {
	OrderTrackingID string `json:"orderTrackingId"`
	RedirectURL     string `json:"redirectUrl"`
}
