package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/services"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

func newScheduleCommand() *cobra.Command {
	var principal string
	var rate string
	var months int
	var start string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print an equal-principal repayment schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			terms, err := parseTerms(principal, rate, months, start)
			if err != nil {
				return err
			}

			schedule, err := services.NewScheduleService(nil, months).BuildSchedule(terms)
			if err != nil {
				return err
			}

			return printSchedule(cmd.OutOrStdout(), schedule.Rounded())
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "loan principal (required)")
	_ = cmd.MarkFlagRequired("principal")
	cmd.Flags().StringVar(&rate, "rate", fmt.Sprint(utils.DefaultInterestRatePercent), "annual interest rate in percent")
	cmd.Flags().IntVar(&months, "months", utils.DefaultRepaymentMonths, "repayment term in months")
	cmd.Flags().StringVar(&start, "start", "", "disbursement date, YYYY-MM-DD (default today)")

	return cmd
}

func parseTerms(principal, rate string, months int, start string) (models.LoanTerms, error) {
	p, err := decimal.NewFromString(principal)
	if err != nil {
		return models.LoanTerms{}, fmt.Errorf("parsing principal: %w", err)
	}
	r, err := decimal.NewFromString(rate)
	if err != nil {
		return models.LoanTerms{}, fmt.Errorf("parsing rate: %w", err)
	}

	startDate := models.DateOf(time.Now())
	if start != "" {
		startDate, err = models.ParseDate(start)
		if err != nil {
			return models.LoanTerms{}, fmt.Errorf("parsing start: %w", err)
		}
	}

	return models.LoanTerms{
		Principal:                 p,
		AnnualInterestRatePercent: r,
		TermMonths:                months,
		StartDate:                 startDate,
	}, nil
}

func printSchedule(out io.Writer, schedule *models.Schedule) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Period\tMonth\tPrincipal\tInterest\tPayment\tBalance\t")
	for _, row := range schedule.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			row.Period,
			row.MonthLabel,
			row.PrincipalPortion.StringFixed(utils.MoneyPlaces),
			row.InterestPortion.StringFixed(utils.MoneyPlaces),
			row.TotalPayment.StringFixed(utils.MoneyPlaces),
			row.ClosingBalance.StringFixed(utils.MoneyPlaces))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotal interest:   %s\n", utils.FormatMoney(schedule.TotalInterest))
	fmt.Fprintf(out, "Total repayable:  %s\n", utils.FormatMoney(schedule.TotalRepayable))
	fmt.Fprintf(out, "Flat interest:    %s\n", utils.FormatMoney(schedule.FlatInterest))
	return nil
}
