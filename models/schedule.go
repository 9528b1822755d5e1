package models

import (
	"github.com/shopspring/decimal"

	"github.com/fadhlanhapp/manpower-backend/utils"
)

// LoanTerms are the read-only inputs of a repayment schedule
type LoanTerms struct {
	Principal                 decimal.Decimal `json:"principal"`
	AnnualInterestRatePercent decimal.Decimal `json:"annualInterestRatePercent"`
	TermMonths                int             `json:"termMonths"`
	StartDate                 Date            `json:"startDate"`
}

// ScheduleRow is one period of an equal-principal repayment table.
// Amounts are unrounded; presentation rounds them.
type ScheduleRow struct {
	Period           int             `json:"period"`
	MonthLabel       string          `json:"monthLabel"`
	PrincipalPortion decimal.Decimal `json:"principalPortion"`
	InterestPortion  decimal.Decimal `json:"interestPortion"`
	TotalPayment     decimal.Decimal `json:"totalPayment"`
	ClosingBalance   decimal.Decimal `json:"closingBalance"`
}

// Schedule is a generated repayment table with its totals
type Schedule struct {
	Terms          LoanTerms       `json:"terms"`
	Rows           []ScheduleRow   `json:"rows"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	TotalRepayable decimal.Decimal `json:"totalRepayable"`
	FlatInterest   decimal.Decimal `json:"flatInterest"`
}

// Rounded returns a copy with every amount rounded to money precision. Rounding
// does not pad: 46.30 is held, and marshalled, as 46.3.
func (s *Schedule) Rounded() *Schedule {
	out := &Schedule{
		Terms:          s.Terms,
		Rows:           make([]ScheduleRow, len(s.Rows)),
		TotalInterest:  utils.RoundMoney(s.TotalInterest),
		TotalRepayable: utils.RoundMoney(s.TotalRepayable),
		FlatInterest:   utils.RoundMoney(s.FlatInterest),
	}
	for i, row := range s.Rows {
		out.Rows[i] = ScheduleRow{
			Period:           row.Period,
			MonthLabel:       row.MonthLabel,
			PrincipalPortion: utils.RoundMoney(row.PrincipalPortion),
			InterestPortion:  utils.RoundMoney(row.InterestPortion),
			TotalPayment:     utils.RoundMoney(row.TotalPayment),
			ClosingBalance:   utils.RoundMoney(row.ClosingBalance),
		}
	}
	return out
}
