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

// DonationController handles HTTP requests for donations.
type DonationController struct {
	donationService services.DonationService
	siteURL         string
	logger          *zap.Logger
}

func NewDonationController(svc services.DonationService, siteURL string, logger *zap.Logger) *DonationController {
	return &DonationController{donationService: svc, siteURL: siteURL, logger: logger}
}

type initiateDonationRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    string  `json:"phone" binding:"required"`
	Amount   float64 `json:"amount" binding:"required"`
}

// Initiate handles POST /api/donations/initiate. Donations are open to
// guests; a logged-in caller's id is attached when present.
func (dc *DonationController) Initiate(ctx *gin.Context) {
	var req initiateDonationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	input := services.DonationInitiateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Amount:   req.Amount,
	}
	if userID, ok := middleware.OptionalUserID(ctx); ok {
		input.UserID = &userID
	}

	result, svcErr := dc.donationService.Initiate(ctx.Request.Context(), input)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "details": svcErr.Details})
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// Verify handles POST /api/donations/verify.
func (dc *DonationController) Verify(ctx *gin.Context) {
	var req struct {
		Pidx string `json:"pidx" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "pidx is required"})
		return
	}

	result, svcErr := dc.donationService.Verify(ctx.Request.Context(), req.Pidx)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "details": svcErr.Details})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// Callback handles GET /api/donations/callback, the gateway's browser
// return. Verification runs best-effort; the redirect to the status page
// always happens so the payer never lands on an error page here.
func (dc *DonationController) Callback(ctx *gin.Context) {
	pidx := ctx.Query("pidx")
	if pidx != "" {
		if _, svcErr := dc.donationService.Verify(ctx.Request.Context(), pidx); svcErr != nil {
			dc.logger.Warn("Callback verification failed",
				zap.String("pidx", pidx), zap.String("reason", svcErr.Message))
		}
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("%s/payment/status?pidx=%s", dc.siteURL, pidx))
}

// List handles GET /api/donations (admin). Supports status filtering and
// pagination.
func (dc *DonationController) List(ctx *gin.Context) {
	status := ctx.Query("status")
	page, pageSize := parsePaginationParams(ctx)

	donations, total, svcErr := dc.donationService.List(ctx.Request.Context(), status, page, pageSize)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"donations": donations,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// parsePaginationParams extracts and validates page/page_size query params.
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const maxPageSize = 100
	page, pageSize := 1, 10
	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(ctx.DefaultQuery("page_size", "10")); err == nil && s > 0 {
		if s > maxPageSize {
			s = maxPageSize
		}
		pageSize = s
	}
	return page, pageSize
}
