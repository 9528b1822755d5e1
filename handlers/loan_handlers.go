package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/services"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

// LoanHandler handles eligibility, schedule and loan request endpoints
type LoanHandler struct {
	eligibility *services.EligibilityService
	schedules   *services.ScheduleService
	loans       *services.LoanService
	excel       *services.ExcelService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(eligibility *services.EligibilityService, schedules *services.ScheduleService, loans *services.LoanService, excel *services.ExcelService) *LoanHandler {
	return &LoanHandler{
		eligibility: eligibility,
		schedules:   schedules,
		loans:       loans,
		excel:       excel,
	}
}

// GetEligibility handles GET /members/:memberId/eligibility
func (h *LoanHandler) GetEligibility(c *gin.Context) {
	memberID := utils.NormalizeID(c.Param("memberId"))
	if memberID == "" {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrMemberIDRequired))
		return
	}

	result, err := h.eligibility.ForMember(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.HandleSuccess(c, result)
}

// PreviewSchedule handles POST /loans/schedule
func (h *LoanHandler) PreviewSchedule(c *gin.Context) {
	schedule, ok := h.bindSchedule(c)
	if !ok {
		return
	}

	utils.HandleSuccess(c, schedule.Rounded())
}

// ExportSchedule handles POST /loans/schedule/export
func (h *LoanHandler) ExportSchedule(c *gin.Context) {
	schedule, ok := h.bindSchedule(c)
	if !ok {
		return
	}

	h.writeWorkbook(c, schedule, "Loan")
}

// GetLoanSchedule handles GET /loans/:loanId/schedule
func (h *LoanHandler) GetLoanSchedule(c *gin.Context) {
	loanID := utils.NormalizeID(c.Param("loanId"))
	if loanID == "" {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrLoanIDRequired))
		return
	}

	schedule, err := h.schedules.ScheduleForLoan(c.Request.Context(), loanID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.HandleSuccess(c, schedule.Rounded())
}

// ExportLoanSchedule handles GET /loans/:loanId/schedule/export
func (h *LoanHandler) ExportLoanSchedule(c *gin.Context) {
	loanID := utils.NormalizeID(c.Param("loanId"))
	if loanID == "" {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrLoanIDRequired))
		return
	}

	schedule, err := h.schedules.ScheduleForLoan(c.Request.Context(), loanID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.writeWorkbook(c, schedule, "Loan_"+loanID)
}

// SubmitLoanRequest handles POST /loans/request
func (h *LoanHandler) SubmitLoanRequest(c *gin.Context) {
	var req models.SubmitLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	resp, err := h.loans.SubmitLoanRequest(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if !resp.Submitted {
		c.JSON(utils.StatusFor(resp.Decision.Err()), resp.Decision)
		return
	}

	c.JSON(http.StatusCreated, resp.Loan)
}

func (h *LoanHandler) bindSchedule(c *gin.Context) (*models.Schedule, bool) {
	var terms models.LoanTerms
	if err := c.ShouldBindJSON(&terms); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return nil, false
	}
	if terms.StartDate.IsZero() {
		terms.StartDate = models.DateOf(time.Now())
	}

	schedule, err := h.schedules.BuildSchedule(terms)
	if err != nil {
		utils.HandleError(c, err)
		return nil, false
	}
	return schedule, true
}

func (h *LoanHandler) writeWorkbook(c *gin.Context, schedule *models.Schedule, label string) {
	workbook, filename, err := h.excel.ExportSchedule(schedule, label)
	if err != nil {
		utils.HandleError(c, utils.NewInternalError(utils.ErrFailedToExport))
		return
	}
	defer workbook.Close()

	// Set headers for file download
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	if err := workbook.Write(c.Writer); err != nil {
		utils.HandleError(c, utils.NewInternalError(utils.ErrFailedToExport))
		return
	}
}
