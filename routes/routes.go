package routes

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/manpower-backend/handlers"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes
type Handlers struct {
	Loans    *handlers.LoanHandler
	Payments *handlers.PaymentHandler
	DB       *sql.DB
}

// SetupRoutes configures all API routes for the application
func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", healthCheck(h.DB))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Member endpoints
		v1.GET("/members/:memberId/eligibility", h.Loans.GetEligibility)
		v1.GET("/members/:memberId/payments", h.Payments.ListMemberPayments)

		// Loan endpoints
		v1.POST("/loans/schedule", h.Loans.PreviewSchedule)
		v1.POST("/loans/schedule/export", h.Loans.ExportSchedule)
		v1.GET("/loans/:loanId/schedule", h.Loans.GetLoanSchedule)
		v1.GET("/loans/:loanId/schedule/export", h.Loans.ExportLoanSchedule)
		v1.POST("/loans/request", h.Loans.SubmitLoanRequest)

		// Payment endpoints
		v1.POST("/payments/initiate", h.Payments.InitiatePayment)
		v1.GET("/payments/:orderTrackingId", h.Payments.GetPayment)
		v1.POST("/payments/:orderTrackingId/cancel", h.Payments.CancelPayment)
	}
}

func healthCheck(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
