package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"aarambha-backend/models"
	"aarambha-backend/providers"
	"aarambha-backend/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CampaignEnrollInput is the One Rupee Campaign enrollment form.
type CampaignEnrollInput struct {
	UserID   uint
	FullName string
	Email    string
	Phone    string
}

type CampaignService interface {
	Enroll(ctx context.Context, input CampaignEnrollInput) (*models.Campaign, *ServiceError)
	MyCampaign(ctx context.Context, userID uint) (*models.Campaign, []models.CampaignPayment, *ServiceError)
	InitiatePayment(ctx context.Context, userID uint, year int) (*InitiationResult, *ServiceError)
	Verify(ctx context.Context, pidx string) (*VerificationResult, *ServiceError)
}

type campaignService struct {
	repo      repository.CampaignRepository
	gateway   providers.PaymentGateway
	receipts  *ReceiptService
	returnURL string
	siteURL   string
	logger    *zap.Logger
}

func NewCampaignService(
	repo repository.CampaignRepository,
	gateway providers.PaymentGateway,
	receipts *ReceiptService,
	returnURL, siteURL string,
	logger *zap.Logger,
) CampaignService {
	return &campaignService{
		repo:      repo,
		gateway:   gateway,
		receipts:  receipts,
		returnURL: returnURL,
		siteURL:   siteURL,
		logger:    logger,
	}
}

// Enroll registers the user in the campaign. One enrollment per user; a
// second attempt returns a conflict.
func (s *campaignService) Enroll(ctx context.Context, input CampaignEnrollInput) (*models.Campaign, *ServiceError) {
	if _, err := s.repo.FindCampaignByUser(ctx, input.UserID); err == nil {
		return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "You are already enrolled in the campaign"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to check enrollment", zap.Uint("user_id", input.UserID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to enroll"}
	}

	campaign := &models.Campaign{
		UserID:   input.UserID,
		FullName: input.FullName,
		Email:    input.Email,
		Phone:    input.Phone,
		IsActive: true,
	}
	if err := s.repo.CreateCampaign(ctx, campaign); err != nil {
		s.logger.Error("Failed to create enrollment", zap.Uint("user_id", input.UserID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to enroll"}
	}
	return campaign, nil
}

func (s *campaignService) MyCampaign(ctx context.Context, userID uint) (*models.Campaign, []models.CampaignPayment, *ServiceError) {
	campaign, err := s.repo.FindCampaignByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "You are not enrolled in the campaign"}
		}
		s.logger.Error("Failed to load enrollment", zap.Uint("user_id", userID), zap.Error(err))
		return nil, nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load campaign"}
	}

	payments, err := s.repo.ListPaymentsByCampaign(ctx, campaign.ID)
	if err != nil {
		s.logger.Error("Failed to list campaign payments", zap.Uint("campaign_id", campaign.ID), zap.Error(err))
		return nil, nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load campaign"}
	}
	return campaign, payments, nil
}

// InitiatePayment starts the yearly settlement for the caller's enrollment.
// Defaults to the current year when none is given, and rejects a year that
// has already been settled.
func (s *campaignService) InitiatePayment(ctx context.Context, userID uint, year int) (*InitiationResult, *ServiceError) {
	campaign, err := s.repo.FindCampaignByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "You are not enrolled in the campaign"}
		}
		s.logger.Error("Failed to load enrollment", zap.Uint("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load campaign"}
	}
	if !campaign.IsActive {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Your enrollment is no longer active"}
	}

	if year == 0 {
		year = time.Now().Year()
	}

	existing, err := s.repo.ListPaymentsByCampaign(ctx, campaign.ID)
	if err != nil {
		s.logger.Error("Failed to list campaign payments", zap.Uint("campaign_id", campaign.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load campaign"}
	}
	for _, p := range existing {
		if p.PaymentYear == year && p.PaymentStatus == models.PaymentStatusCompleted {
			return nil, &ServiceError{StatusCode: http.StatusBadRequest,
				Message: fmt.Sprintf("Payment for %d has already been completed", year)}
		}
	}

	payment := &models.CampaignPayment{
		CampaignID:    campaign.ID,
		PaymentYear:   year,
		Amount:        models.CampaignYearlyAmount,
		PaymentStatus: models.PaymentStatusInitiated,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		s.logger.Error("Failed to create campaign payment", zap.Uint("campaign_id", campaign.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create payment"}
	}

	orderID := newPurchaseOrderID("ORC", payment.ID)
	resp, err := s.gateway.InitiatePayment(ctx, providers.InitiateRequest{
		Amount:            payment.Amount,
		PurchaseOrderID:   orderID,
		PurchaseOrderName: fmt.Sprintf("One Rupee Campaign %d - %s", year, campaign.FullName),
		ReturnURL:         s.returnURL + "/api/campaign/callback",
		WebsiteURL:        s.siteURL,
		CustomerName:      campaign.FullName,
		CustomerEmail:     campaign.Email,
		CustomerPhone:     campaign.Phone,
	})
	if err != nil {
		s.logger.Error("Khalti initiate failed", zap.Uint("payment_id", payment.ID), zap.Error(err))
		if dbErr := s.repo.SetPaymentStatus(ctx, payment.ID, models.PaymentStatusFailed); dbErr != nil {
			s.logger.Error("Failed to mark campaign payment failed", zap.Uint("payment_id", payment.ID), zap.Error(dbErr))
		}
		return nil, gatewayServiceError(err)
	}

	if err := s.repo.SetPaymentGatewayRef(ctx, payment.ID, resp.Pidx); err != nil {
		s.logger.Error("Failed to store gateway ref", zap.Uint("payment_id", payment.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create payment"}
	}

	return &InitiationResult{
		RecordID:        payment.ID,
		PurchaseOrderID: orderID,
		Pidx:            resp.Pidx,
		PaymentURL:      resp.PaymentURL,
		ExpiresAt:       resp.ExpiresAt,
	}, nil
}

func (s *campaignService) Verify(ctx context.Context, pidx string) (*VerificationResult, *ServiceError) {
	if pidx == "" {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "pidx is required"}
	}

	payment, err := s.repo.FindPaymentByPidx(ctx, pidx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Campaign payment not found"}
		}
		s.logger.Error("Failed to load campaign payment", zap.String("pidx", pidx), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load payment"}
	}

	if payment.PaymentStatus == models.PaymentStatusCompleted && payment.CompletedAt != nil {
		return &VerificationResult{
			Success:       true,
			Status:        payment.PaymentStatus,
			TransactionID: payment.TransactionID,
			Amount:        payment.Amount,
			Fee:           payment.Fee,
			Refunded:      payment.Refunded,
		}, nil
	}

	lookup, err := s.gateway.LookupPayment(ctx, pidx)
	if err != nil {
		s.logger.Error("Khalti lookup failed", zap.String("pidx", pidx), zap.Error(err))
		return nil, gatewayServiceError(err)
	}

	status := providers.MapStatus(lookup.Status)
	if err := s.repo.RecordVerification(ctx, payment.ID, lookup.TransactionID, lookup.Fee, lookup.Refunded); err != nil {
		s.logger.Error("Failed to record verification", zap.Uint("payment_id", payment.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update payment"}
	}

	if status == models.PaymentStatusCompleted {
		won, err := s.repo.MarkCompleted(ctx, payment.ID, lookup.TransactionID, time.Now())
		if err != nil {
			s.logger.Error("Failed to mark campaign payment completed", zap.Uint("payment_id", payment.ID), zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update payment"}
		}
		if won {
			receipt := Receipt{
				NotificationType: models.NotificationPaymentCompleted,
				Title:            fmt.Sprintf("Campaign Payment %d Completed", payment.PaymentYear),
				Message: fmt.Sprintf("Your One Rupee Campaign payment of Rs. %.2f for %d has been completed. Transaction ID: %s",
					payment.Amount, payment.PaymentYear, lookup.TransactionID),
				EmailSubject:  "One Rupee Campaign Receipt - Aarambha Foundation",
				EmailType:     models.EmailTypePaymentReceipt,
				RelatedID:     payment.ID,
				Amount:        payment.Amount,
				TransactionID: lookup.TransactionID,
			}
			if campaign, err := s.repo.FindCampaignByID(ctx, payment.CampaignID); err == nil {
				userID := campaign.UserID
				receipt.UserID = &userID
				receipt.Email = campaign.Email
				receipt.EmailBody = fmt.Sprintf("Dear %s,\n\nYour One Rupee Campaign payment of Rs. %.2f for %d has been completed successfully.\n\nTransaction ID: %s\n\nThank you for your daily commitment to Aarambha Foundation!\n\nBest regards,\nAarambha Foundation Team",
					campaign.FullName, payment.Amount, payment.PaymentYear, lookup.TransactionID)
			} else {
				s.logger.Warn("No enrollment record for receipt",
					zap.Uint("campaign_id", payment.CampaignID), zap.Error(err))
			}
			s.receipts.Deliver(ctx, receipt)
		}
	} else {
		if err := s.repo.SetPaymentStatus(ctx, payment.ID, status); err != nil {
			s.logger.Error("Failed to update payment status", zap.Uint("payment_id", payment.ID), zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update payment"}
		}
	}

	return &VerificationResult{
		Success:       true,
		Status:        status,
		TransactionID: lookup.TransactionID,
		Amount:        payment.Amount,
		Fee:           lookup.Fee,
		Refunded:      lookup.Refunded,
	}, nil
}
