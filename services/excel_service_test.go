package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelService_ExportSchedule(t *testing.T) {
	schedule, err := NewScheduleService(nil, 6).BuildSchedule(terms("60000", "10", 6))
	require.NoError(t, err)

	workbook, filename, err := NewExcelService().ExportSchedule(schedule, "Loan 7/A")
	require.NoError(t, err)
	defer workbook.Close()

	assert.Equal(t, "Loan_7_A_Schedule_2025-01-01.xlsx", filename)
	assert.Equal(t, []string{"Schedule", "Summary"}, workbook.GetSheetList())

	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf))

	reopened, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.GetRows("Schedule")
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"Period", "Month", "Principal", "Interest", "Total Payment", "Balance"}, rows[0])
	assert.Equal(t, "Jan 2025", rows[1][1])
	assert.Equal(t, "Feb 2025", rows[2][1])

	raw, err := reopened.GetCellValue("Schedule", "D3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "500", raw)

	balance, err := reopened.GetCellValue("Schedule", "F8", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "0", balance)

	summary, err := reopened.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 7)
	assert.Equal(t, "Term (months)", summary[2][0])
	assert.Equal(t, "6", summary[2][1])
	assert.Equal(t, "2025-01-01", summary[3][1])
}

func TestExcelService_DefaultLabel(t *testing.T) {
	schedule, err := NewScheduleService(nil, 6).BuildSchedule(terms("1000", "5", 2))
	require.NoError(t, err)

	workbook, filename, err := NewExcelService().ExportSchedule(schedule, "")
	require.NoError(t, err)
	defer workbook.Close()

	assert.Equal(t, "Loan_Schedule_2025-01-01.xlsx", filename)
}
