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

// ApplicationController handles HTTP requests for membership and volunteer
// applications.
type ApplicationController struct {
	applicationService services.ApplicationService
	siteURL            string
	logger             *zap.Logger
}

func NewApplicationController(svc services.ApplicationService, siteURL string, logger *zap.Logger) *ApplicationController {
	return &ApplicationController{applicationService: svc, siteURL: siteURL, logger: logger}
}

type submitApplicationRequest struct {
	FullName         string `json:"full_name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone" binding:"required"`
	DateOfBirth      string `json:"date_of_birth"`
	Country          string `json:"country"`
	District         string `json:"district"`
	PermanentAddress string `json:"permanent_address"`
	Profession       string `json:"profession"`
	WhyJoin          string `json:"why_join"`
	ApplicationType  string `json:"application_type" binding:"required"`
}

// Submit handles POST /api/applications.
func (ac *ApplicationController) Submit(ctx *gin.Context) {
	var req submitApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	app, svcErr := ac.applicationService.Submit(ctx.Request.Context(), services.ApplicationSubmitInput{
		UserID:           middleware.GetUserID(ctx),
		FullName:         req.FullName,
		Email:            req.Email,
		Phone:            req.Phone,
		DateOfBirth:      req.DateOfBirth,
		Country:          req.Country,
		District:         req.District,
		PermanentAddress: req.PermanentAddress,
		Profession:       req.Profession,
		WhyJoin:          req.WhyJoin,
		ApplicationType:  req.ApplicationType,
	})
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"application": app})
}

// MyApplications handles GET /api/applications/mine.
func (ac *ApplicationController) MyApplications(ctx *gin.Context) {
	apps, svcErr := ac.applicationService.MyApplications(ctx.Request.Context(), middleware.GetUserID(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"applications": apps})
}

// InitiatePayment handles POST /api/applications/:id/pay.
func (ac *ApplicationController) InitiatePayment(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application id"})
		return
	}

	result, svcErr := ac.applicationService.InitiatePayment(ctx.Request.Context(), middleware.GetUserID(ctx), uint(id))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "details": svcErr.Details})
		return
	}

	ctx.JSON(http.StatusCreated, result)
}

// Verify handles POST /api/applications/verify.
func (ac *ApplicationController) Verify(ctx *gin.Context) {
	var req struct {
		Pidx string `json:"pidx" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "pidx is required"})
		return
	}

	result, svcErr := ac.applicationService.Verify(ctx.Request.Context(), req.Pidx)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "details": svcErr.Details})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// Callback handles GET /api/applications/callback.
func (ac *ApplicationController) Callback(ctx *gin.Context) {
	pidx := ctx.Query("pidx")
	if pidx != "" {
		if _, svcErr := ac.applicationService.Verify(ctx.Request.Context(), pidx); svcErr != nil {
			ac.logger.Warn("Callback verification failed",
				zap.String("pidx", pidx), zap.String("reason", svcErr.Message))
		}
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("%s/payment/status?pidx=%s", ac.siteURL, pidx))
}
