package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"aarambha-backend/middleware"
	"aarambha-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SponsorshipController handles HTTP requests for child sponsorships and
// their installment payments.
type SponsorshipController struct {
	sponsorshipService services.SponsorshipService
	siteURL            string
	logger             *zap.Logger
}

func NewSponsorshipController(svc services.SponsorshipService, siteURL string, logger *zap.Logger) *SponsorshipController {
	return &SponsorshipController{sponsorshipService: svc, siteURL: siteURL, logger: logger}
}

type submitSponsorshipRequest struct {
	FullName        string  `json:"full_name" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Phone           string  `json:"phone" binding:"required"`
	Country         string  `json:"country"`
	City            string  `json:"city"`
	SponsorshipType string  `json:"sponsorship_type" binding:"required"`
	PaymentAmount   float64 `json:"payment_amount"`
	PaymentMethod   string  `json:"payment_method"`
	Message         string  `json:"message"`
}

// Submit handles POST /api/sponsorships.
func (sc *SponsorshipController) Submit(ctx *gin.Context) {
	var req submitSponsorshipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	sponsorship, svcErr := sc.sponsorshipService.Submit(ctx.Request.Context(), services.SponsorshipSubmitInput{
		UserID:          middleware.GetUserID(ctx),
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		Country:         req.Country,
		City:            req.City,
		SponsorshipType: req.SponsorshipType,
		PaymentAmount:   req.PaymentAmount,
		PaymentMethod:   req.PaymentMethod,
		Message:         req.Message,
	})
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"sponsorship": sponsorship})
}

// MySponsorships handles GET /api/sponsorships/mine.
func (sc *SponsorshipController) MySponsorships(ctx *gin.Context) {
	sponsorships, svcErr := sc.sponsorshipService.MySponsorships(ctx.Request.Context(), middleware.GetUserID(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"sponsorships": sponsorships})
}

// InitiateInstallment handles POST /api/sponsorships/children/:id/pay.
func (sc *SponsorshipController) InitiateInstallment(ctx *gin.Context) {
	childID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child id"})
		return
	}

	result, svcErr := sc.sponsorshipService.InitiateInstallment(ctx.Request.Context(), middleware.GetUserID(ctx), uint(childID))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "details": svcErr.Details})
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// Verify handles POST /api/sponsorships/verify.
func (sc *SponsorshipController) Verify(ctx *gin.Context) {
	var req struct {
		Pidx string `json:"pidx" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "pidx is required"})
		return
	}

	result, svcErr := sc.sponsorshipService.Verify(ctx.Request.Context(), req.Pidx)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "details": svcErr.Details})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// Callback handles GET /api/sponsorships/callback.
func (sc *SponsorshipController) Callback(ctx *gin.Context) {
	pidx := ctx.Query("pidx")
	if pidx != "" {
		if _, svcErr := sc.sponsorshipService.Verify(ctx.Request.Context(), pidx); svcErr != nil {
			sc.logger.Warn("Callback verification failed",
				zap.String("pidx", pidx), zap.String("reason", svcErr.Message))
		}
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("%s/payment/status?pidx=%s", sc.siteURL, pidx))
}

// ListChildPayments handles GET /api/sponsorships/children/:id/payments.
func (sc *SponsorshipController) ListChildPayments(ctx *gin.Context) {
	childID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child id"})
		return
	}

	installments, svcErr := sc.sponsorshipService.ListChildPayments(ctx.Request.Context(), middleware.GetUserID(ctx), uint(childID))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"installments": installments})
}
