package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/manpower-backend/models"
	"github.com/fadhlanhapp/manpower-backend/services"
	"github.com/fadhlanhapp/manpower-backend/utils"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// InitiatePayment handles POST /payments/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req models.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	session, err := h.paymentService.Initiate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetPayment handles GET /payments/:orderTrackingId
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	trackingID := utils.NormalizeID(c.Param("orderTrackingId"))
	if trackingID == "" {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrTrackingRequired))
		return
	}

	session, err := h.paymentService.Get(c.Request.Context(), trackingID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, session)
}

// CancelPayment handles POST /payments/:orderTrackingId/cancel
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	trackingID := utils.NormalizeID(c.Param("orderTrackingId"))
	if trackingID == "" {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrTrackingRequired))
		return
	}

	session, err := h.paymentService.Cancel(c.Request.Context(), trackingID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, session)
}

// ListMemberPayments handles GET /members/:memberId/payments
func (h *PaymentHandler) ListMemberPayments(c *gin.Context) {
	memberID := utils.NormalizeID(c.Param("memberId"))
	if memberID == "" {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrMemberIDRequired))
		return
	}

	sessions, err := h.paymentService.ListForMember(c.Request.Context(), memberID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, sessions)
}
