package controllers

import (
	"fmt"
	"net/http"

	"aarambha-backend/middleware"
	"aarambha-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CampaignController handles HTTP requests for the One Rupee Campaign.
type CampaignController struct {
	campaignService services.CampaignService
	siteURL         string
	logger          *zap.Logger
}

func NewCampaignController(svc services.CampaignService, siteURL string, logger *zap.Logger) *CampaignController {
	return &CampaignController{campaignService: svc, siteURL: siteURL, logger: logger}
}

type enrollCampaignRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
}

// Enroll handles POST /api/campaign/enroll.
func (cc *CampaignController) Enroll(ctx *gin.Context) {
	var req enrollCampaignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	campaign, svcErr := cc.campaignService.Enroll(ctx.Request.Context(), services.CampaignEnrollInput{
		UserID:   middleware.GetUserID(ctx),
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"campaign": campaign})
}

// MyCampaign handles GET /api/campaign/mine.
func (cc *CampaignController) MyCampaign(ctx *gin.Context) {
	campaign, payments, svcErr := cc.campaignService.MyCampaign(ctx.Request.Context(), middleware.GetUserID(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"campaign": campaign, "payments": payments})
}

// InitiatePayment handles POST /api/campaign/pay.
func (cc *CampaignController) InitiatePayment(ctx *gin.Context) {
	var req struct {
		Year int `json:"year"`
	}
	// Body is optional; an empty body means pay for the current year.
	if err := ctx.ShouldBindJSON(&req); err != nil && ctx.Request.ContentLength > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	result, svcErr := cc.campaignService.InitiatePayment(ctx.Request.Context(), middleware.GetUserID(ctx), req.Year)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "details": svcErr.Details})
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// Verify handles POST /api/campaign/verify.
func (cc *CampaignController) Verify(ctx *gin.Context) {
	var req struct {
		Pidx string `json:"pidx" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "pidx is required"})
		return
	}

	result, svcErr := cc.campaignService.Verify(ctx.Request.Context(), req.Pidx)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "details": svcErr.Details})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// Callback handles GET /api/campaign/callback.
func (cc *CampaignController) Callback(ctx *gin.Context) {
	pidx := ctx.Query("pidx")
	if pidx != "" {
		if _, svcErr := cc.campaignService.Verify(ctx.Request.Context(), pidx); svcErr != nil {
			cc.logger.Warn("Callback verification failed",
				zap.String("pidx", pidx), zap.String("reason", svcErr.Message))
		}
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("%s/payment/status?pidx=%s", cc.siteURL, pidx))
}
