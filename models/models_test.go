package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/manpower-backend/utils"
)

func TestDate_JSON(t *testing.T) {
	var holder struct {
		Start Date `json:"start"`
		Due   Date `json:"due"`
		Empty Date `json:"empty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2025-01-31","due":"2025-07-31T08:15:00Z","empty":null}`), &holder))

	assert.Equal(t, NewDate(2025, time.January, 31), holder.Start)
	assert.Equal(t, "2025-07-31", holder.Due.String())
	assert.True(t, holder.Empty.IsZero())

	out, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-01-31","due":"2025-07-31","empty":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"start":"31/01/2025"}`), &holder))
	assert.Error(t, json.Unmarshal([]byte(`{"start":20250131}`), &holder))
}

func TestLoanStatus_IsLive(t *testing.T) {
	for _, s := range []LoanStatus{LoanPending, LoanApproved, LoanActive, LoanOverdue} {
		assert.True(t, s.IsLive(), s)
	}
	for _, s := range []LoanStatus{LoanPaid, LoanRejected, LoanStatus("")} {
		assert.False(t, s.IsLive(), s)
	}
}

func TestLoanDecision_Err(t *testing.T) {
	live := &LoanDecision{Code: DecisionExistingLiveLoan, Message: "busy"}
	assert.True(t, errors.Is(live.Err(), utils.ErrExistingLiveLoan))

	limit := &LoanDecision{Code: DecisionLoanLimitExceeded}
	assert.True(t, errors.Is(limit.Err(), utils.ErrIneligibleForLoan))
}

func TestPaymentStatus_IsTerminal(t *testing.T) {
	assert.False(t, PaymentInitiated.IsTerminal())
	assert.True(t, PaymentCompleted.IsTerminal())
	assert.True(t, PaymentFailed.IsTerminal())
	assert.True(t, PaymentTimedOut.IsTerminal())
}

func TestSchedule_Rounded(t *testing.T) {
	schedule := &Schedule{
		Rows: []ScheduleRow{{
			Period:          2,
			InterestPortion: decimal.RequireFromString("416.6666666666666667"),
			TotalPayment:    decimal.RequireFromString("10416.6666666666666667"),
		}},
		TotalInterest: decimal.RequireFromString("1750.0000000000000001"),
	}

	rounded := schedule.Rounded()

	assert.Equal(t, "416.67", rounded.Rows[0].InterestPortion.String())
	assert.Equal(t, "10416.67", rounded.Rows[0].TotalPayment.String())
	assert.Equal(t, "1750", rounded.TotalInterest.String())
	assert.Equal(t, "416.6666666666666667", schedule.Rows[0].InterestPortion.String())
}
