package routes

import (
	"net/http"

	"aarambha-backend/controllers"
	"aarambha-backend/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers bundles everything the router needs.
type Controllers struct {
	Applications  *controllers.ApplicationController
	Donations     *controllers.DonationController
	Sponsorships  *controllers.SponsorshipController
	Campaign      *controllers.CampaignController
	Payments      *controllers.PaymentController
	Notifications *controllers.NotificationController
}

// Register sets up all API routes. Callbacks and donation initiation are
// public (the gateway and guests hit them); everything else requires a
// bearer token.
func Register(r *gin.Engine, c Controllers, jwtSecret string) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	auth := middleware.RequireAuth(jwtSecret)
	limited := middleware.RateLimitMiddleware()

	applications := api.Group("/applications")
	{
		applications.GET("/callback", c.Applications.Callback)
		applications.POST("", auth, c.Applications.Submit)
		applications.GET("/mine", auth, c.Applications.MyApplications)
		applications.POST("/:id/pay", auth, c.Applications.InitiatePayment)
		applications.POST("/verify", auth, c.Applications.Verify)
	}

	donations := api.Group("/donations")
	{
		donations.GET("/callback", c.Donations.Callback)
		donations.POST("/initiate", limited, middleware.OptionalAuth(jwtSecret), c.Donations.Initiate)
		donations.POST("/verify", limited, c.Donations.Verify)
		donations.GET("", auth, c.Donations.List)
	}

	sponsorships := api.Group("/sponsorships")
	{
		sponsorships.GET("/callback", c.Sponsorships.Callback)
		sponsorships.POST("", auth, c.Sponsorships.Submit)
		sponsorships.GET("/mine", auth, c.Sponsorships.MySponsorships)
		sponsorships.POST("/children/:id/pay", auth, c.Sponsorships.InitiateInstallment)
		sponsorships.GET("/children/:id/payments", auth, c.Sponsorships.ListChildPayments)
		sponsorships.POST("/verify", auth, c.Sponsorships.Verify)
	}

	campaign := api.Group("/campaign")
	{
		campaign.GET("/callback", c.Campaign.Callback)
		campaign.POST("/enroll", auth, c.Campaign.Enroll)
		campaign.GET("/mine", auth, c.Campaign.MyCampaign)
		campaign.POST("/pay", auth, c.Campaign.InitiatePayment)
		campaign.POST("/verify", auth, c.Campaign.Verify)
	}

	api.GET("/payments/mine", auth, c.Payments.MyPayments)

	notifications := api.Group("/notifications", auth)
	{
		notifications.GET("", c.Notifications.List)
		notifications.POST("/:id/read", c.Notifications.MarkRead)
	}
}
