package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

const (
	scheduleSheet = "Schedule"
	summarySheet  = "Summary"
	moneyFormat   = "#,##0.00"
)

// ExcelService handles Excel export functionality
type ExcelService struct{}

// NewExcelService creates a new Excel service
func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// ExportSchedule renders a repayment schedule as a workbook with a
// "Schedule" sheet and a "Summary" sheet. label names the loan in the file name.
func (s *ExcelService) ExportSchedule(schedule *models.Schedule, label string) (*excelize.File, string, error) {
	rounded := schedule.Rounded()

	f := excelize.NewFile()

	if err := s.createScheduleSheet(f, rounded); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create schedule sheet: %w", err)
	}

	if err := s.createSummarySheet(f, rounded); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create summary sheet: %w", err)
	}

	// Delete the default sheet
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if label == "" {
		label = "Loan"
	}
	filename := fmt.Sprintf("%s_Schedule_%s.xlsx",
		utils.CleanFileName(label),
		rounded.Terms.StartDate.Format(utils.DateLayout))

	return f, filename, nil
}

// createScheduleSheet creates the per-period repayment table
func (s *ExcelService) createScheduleSheet(f *excelize.File, schedule *models.Schedule) error {
	index, err := f.NewSheet(scheduleSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headers := []string{"Period", "Month", "Principal", "Interest", "Total Payment", "Balance"}
	if err := f.SetSheetRow(scheduleSheet, "A1", &headers); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(scheduleSheet, "A1", "F1", headerStyle); err != nil {
		return err
	}

	for i, row := range schedule.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.Period,
			row.MonthLabel,
			row.PrincipalPortion.InexactFloat64(),
			row.InterestPortion.InexactFloat64(),
			row.TotalPayment.InexactFloat64(),
			row.ClosingBalance.InexactFloat64(),
		}
		if err := f.SetSheetRow(scheduleSheet, cell, &values); err != nil {
			return err
		}
	}

	numFmt := moneyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}
	if len(schedule.Rows) > 0 {
		if err := f.SetCellStyle(scheduleSheet, "C2", fmt.Sprintf("F%d", len(schedule.Rows)+1), moneyStyle); err != nil {
			return err
		}
	}

	return f.SetColWidth(scheduleSheet, "A", "F", 15)
}

// createSummarySheet creates the loan terms and totals sheet
func (s *ExcelService) createSummarySheet(f *excelize.File, schedule *models.Schedule) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Principal", schedule.Terms.Principal.InexactFloat64()},
		{"Annual Interest Rate (%)", schedule.Terms.AnnualInterestRatePercent.InexactFloat64()},
		{"Term (months)", schedule.Terms.TermMonths},
		{"Start Date", schedule.Terms.StartDate.String()},
		{"Total Interest", schedule.TotalInterest.InexactFloat64()},
		{"Total Repayable", schedule.TotalRepayable.InexactFloat64()},
		{"Flat Interest Estimate", schedule.FlatInterest.InexactFloat64()},
	}
	for i := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &rows[i]); err != nil {
			return err
		}
	}

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(rows)), labelStyle); err != nil {
		return err
	}

	return f.SetColWidth(summarySheet, "A", "B", 25)
}
