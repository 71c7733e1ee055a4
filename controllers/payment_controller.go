package controllers

import (
	"net/http"

	"aarambha-backend/middleware"
	"aarambha-backend/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentController serves the user's cross-domain payment history.
type PaymentController struct {
	payments repository.PaymentRepository
	logger   *zap.Logger
}

func NewPaymentController(payments repository.PaymentRepository, logger *zap.Logger) *PaymentController {
	return &PaymentController{payments: payments, logger: logger}
}

// MyPayments handles GET /api/payments/mine.
func (pc *PaymentController) MyPayments(ctx *gin.Context) {
	userID := middleware.GetUserID(ctx)
	payments, err := pc.payments.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		pc.logger.Error("Failed to list payments", zap.Uint("user_id", userID), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payments"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"payments": payments})
}
