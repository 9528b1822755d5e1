package utils

const (
	// Eligibility defaults
	DefaultMinContributionForLoan = 5000
	DefaultMaxLoanFactor          = 3

	// Loan request defaults
	DefaultInterestRatePercent = 10
	DefaultRepaymentMonths     = 6
	MaxRepaymentMonths         = 360

	// Payment polling defaults
	DefaultPollIntervalSeconds = 5
	DefaultPollMaxAttempts     = 20

	// Month label format used in repayment schedules
	MonthLabelLayout = "Jan 2006"
	DateLayout       = "2006-01-02"

	// HTTP status messages
	ErrInvalidRequest    = "Invalid request"
	ErrMemberIDRequired  = "Member ID is required"
	ErrLoanIDRequired    = "Loan ID is required"
	ErrTrackingRequired  = "Order tracking ID is required"
	ErrSessionNotFound   = "Payment session"
	ErrFailedToStore     = "Failed to store data"
	ErrFailedToRetrieve  = "Failed to retrieve data"
	ErrFailedToExport    = "Failed to export schedule"

	// Precision for monetary presentation
	MoneyPlaces = 2
)
