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

// DonationInitiateInput is the validated payer identity and amount.
type DonationInitiateInput struct {
	UserID   *uint
	FullName string
	Email    string
	Phone    string
	Amount   float64
}

type DonationService interface {
	Initiate(ctx context.Context, input DonationInitiateInput) (*InitiationResult, *ServiceError)
	Verify(ctx context.Context, pidx string) (*VerificationResult, *ServiceError)
	List(ctx context.Context, status string, page, pageSize int) ([]models.Donation, int64, *ServiceError)
}

type donationService struct {
	repo      repository.DonationRepository
	gateway   providers.PaymentGateway
	receipts  *ReceiptService
	returnURL string
	siteURL   string
	logger    *zap.Logger
}

func NewDonationService(
	repo repository.DonationRepository,
	gateway providers.PaymentGateway,
	receipts *ReceiptService,
	returnURL, siteURL string,
	logger *zap.Logger,
) DonationService {
	return &donationService{
		repo:      repo,
		gateway:   gateway,
		receipts:  receipts,
		returnURL: returnURL,
		siteURL:   siteURL,
		logger:    logger,
	}
}

// Initiate persists the donation in initiated status before the gateway is
// ever contacted, so a gateway failure still leaves an audit row behind.
func (s *donationService) Initiate(ctx context.Context, input DonationInitiateInput) (*InitiationResult, *ServiceError) {
	if input.Amount < models.MinDonationAmount {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("Minimum donation amount is Rs. %.0f", models.MinDonationAmount),
		}
	}

	donation := &models.Donation{
		UserID:          input.UserID,
		FullName:        input.FullName,
		Email:           input.Email,
		Phone:           input.Phone,
		Amount:          input.Amount,
		PurchaseOrderID: newPurchaseOrderID("DON", 0),
		PaymentStatus:   models.PaymentStatusInitiated,
	}
	if err := s.repo.Create(ctx, donation); err != nil {
		s.logger.Error("Failed to create donation record", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save donation"}
	}

	resp, err := s.gateway.InitiatePayment(ctx, providers.InitiateRequest{
		Amount:            donation.Amount,
		PurchaseOrderID:   donation.PurchaseOrderID,
		PurchaseOrderName: fmt.Sprintf("Donation - %s", donation.FullName),
		ReturnURL:         s.returnURL + "/api/donations/callback",
		WebsiteURL:        s.siteURL,
		CustomerName:      donation.FullName,
		CustomerEmail:     donation.Email,
		CustomerPhone:     donation.Phone,
	})
	if err != nil {
		s.logger.Error("Khalti initiate failed", zap.Uint("donation_id", donation.ID), zap.Error(err))
		if dbErr := s.repo.SetStatus(ctx, donation.ID, models.PaymentStatusFailed); dbErr != nil {
			s.logger.Error("Failed to mark donation failed", zap.Uint("donation_id", donation.ID), zap.Error(dbErr))
		}
		return nil, gatewayServiceError(err)
	}

	if err := s.repo.SetGatewayRef(ctx, donation.ID, resp.Pidx, resp.PaymentURL); err != nil {
		s.logger.Error("Failed to store gateway ref", zap.Uint("donation_id", donation.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save donation"}
	}

	return &InitiationResult{
		RecordID:        donation.ID,
		PurchaseOrderID: donation.PurchaseOrderID,
		Pidx:            resp.Pidx,
		PaymentURL:      resp.PaymentURL,
		ExpiresAt:       resp.ExpiresAt,
	}, nil
}

// Verify is the single convergence point for the frontend's polling call
// and the gateway's browser callback. The completed transition is an atomic
// conditional update; only the winner delivers the receipt.
func (s *donationService) Verify(ctx context.Context, pidx string) (*VerificationResult, *ServiceError) {
	if pidx == "" {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "pidx is required"}
	}

	donation, err := s.repo.FindByPidx(ctx, pidx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Donation not found"}
		}
		s.logger.Error("Failed to load donation", zap.String("pidx", pidx), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load donation"}
	}

	// Already completed: return the stored state without touching the
	// gateway again.
	if donation.PaymentStatus == models.PaymentStatusCompleted && donation.CompletedAt != nil {
		return &VerificationResult{
			Success:       true,
			Status:        donation.PaymentStatus,
			TransactionID: donation.TransactionID,
			Amount:        donation.Amount,
			Fee:           donation.Fee,
			Refunded:      donation.Refunded,
		}, nil
	}

	lookup, err := s.gateway.LookupPayment(ctx, pidx)
	if err != nil {
		// Local state stays untouched; the caller can retry.
		s.logger.Error("Khalti lookup failed", zap.String("pidx", pidx), zap.Error(err))
		return nil, gatewayServiceError(err)
	}

	status := providers.MapStatus(lookup.Status)
	if err := s.repo.RecordVerification(ctx, donation.ID, lookup.TransactionID, lookup.Fee, lookup.Refunded); err != nil {
		s.logger.Error("Failed to record verification", zap.Uint("donation_id", donation.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update donation"}
	}

	if status == models.PaymentStatusCompleted {
		won, err := s.repo.MarkCompleted(ctx, donation.ID, lookup.TransactionID, time.Now())
		if err != nil {
			s.logger.Error("Failed to mark donation completed", zap.Uint("donation_id", donation.ID), zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update donation"}
		}
		if won {
			s.receipts.Deliver(ctx, Receipt{
				UserID:           donation.UserID,
				Email:            donation.Email,
				NotificationType: models.NotificationPaymentCompleted,
				Title:            "Donation Received. Thank You!",
				Message: fmt.Sprintf("Your donation of Rs. %.2f has been completed successfully. Transaction ID: %s",
					donation.Amount, lookup.TransactionID),
				EmailSubject: "Donation Receipt - Aarambha Foundation",
				EmailBody: fmt.Sprintf("Dear %s,\n\nYour donation of Rs. %.2f has been completed successfully.\n\nTransaction ID: %s\n\nThank you for supporting Aarambha Foundation!\n\nBest regards,\nAarambha Foundation Team",
					donation.FullName, donation.Amount, lookup.TransactionID),
				EmailType:     models.EmailTypePaymentReceipt,
				RelatedID:     donation.ID,
				Amount:        donation.Amount,
				TransactionID: lookup.TransactionID,
			})
		}
	} else {
		if err := s.repo.SetStatus(ctx, donation.ID, status); err != nil {
			s.logger.Error("Failed to update donation status", zap.Uint("donation_id", donation.ID), zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update donation"}
		}
	}

	return &VerificationResult{
		Success:       true,
		Status:        status,
		TransactionID: lookup.TransactionID,
		Amount:        donation.Amount,
		Fee:           lookup.Fee,
		Refunded:      lookup.Refunded,
	}, nil
}

func (s *donationService) List(ctx context.Context, status string, page, pageSize int) ([]models.Donation, int64, *ServiceError) {
	donations, total, err := s.repo.List(ctx, status, page, pageSize)
	if err != nil {
		s.logger.Error("Failed to list donations", zap.Error(err))
		return nil, 0, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list donations"}
	}
	return donations, total, nil
}

// gatewayServiceError surfaces the gateway's own payload for diagnostics
// when one is available.
func gatewayServiceError(err error) *ServiceError {
	var gwErr *providers.GatewayError
	if errors.As(err, &gwErr) {
		return &ServiceError{
			StatusCode: http.StatusBadGateway,
			Message:    "Payment gateway error",
			Details:    gwErr.RawBody,
		}
	}
	return &ServiceError{StatusCode: http.StatusBadGateway, Message: "Payment gateway unreachable"}
}
