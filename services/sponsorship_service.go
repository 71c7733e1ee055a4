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

// SponsorshipSubmitInput is the sponsor's application form.
type SponsorshipSubmitInput struct {
	UserID          uint
	FullName        string
	Email           string
	Phone           string
	Country         string
	City            string
	SponsorshipType string
	PaymentAmount   float64
	PaymentMethod   string
	Message         string
}

type SponsorshipService interface {
	Submit(ctx context.Context, input SponsorshipSubmitInput) (*models.ChildSponsorship, *ServiceError)
	MySponsorships(ctx context.Context, userID uint) ([]models.ChildSponsorship, *ServiceError)
	InitiateInstallment(ctx context.Context, userID, childID uint) (*InitiationResult, *ServiceError)
	Verify(ctx context.Context, pidx string) (*VerificationResult, *ServiceError)
	ListChildPayments(ctx context.Context, userID, childID uint) ([]models.PaymentInstallment, *ServiceError)
}

type sponsorshipService struct {
	repo      repository.SponsorshipRepository
	gateway   providers.PaymentGateway
	receipts  *ReceiptService
	returnURL string
	siteURL   string
	logger    *zap.Logger
}

func NewSponsorshipService(
	repo repository.SponsorshipRepository,
	gateway providers.PaymentGateway,
	receipts *ReceiptService,
	returnURL, siteURL string,
	logger *zap.Logger,
) SponsorshipService {
	return &sponsorshipService{
		repo:      repo,
		gateway:   gateway,
		receipts:  receipts,
		returnURL: returnURL,
		siteURL:   siteURL,
		logger:    logger,
	}
}

func (s *sponsorshipService) Submit(ctx context.Context, input SponsorshipSubmitInput) (*models.ChildSponsorship, *ServiceError) {
	sponsorship := &models.ChildSponsorship{
		UserID:          input.UserID,
		FullName:        input.FullName,
		Email:           input.Email,
		Phone:           input.Phone,
		Country:         input.Country,
		City:            input.City,
		SponsorshipType: input.SponsorshipType,
		PaymentAmount:   input.PaymentAmount,
		PaymentMethod:   input.PaymentMethod,
		Message:         input.Message,
		Status:          models.SponsorshipStatusPending,
	}
	if err := s.repo.CreateSponsorship(ctx, sponsorship); err != nil {
		s.logger.Error("Failed to create sponsorship", zap.Uint("user_id", input.UserID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save sponsorship"}
	}
	return sponsorship, nil
}

func (s *sponsorshipService) MySponsorships(ctx context.Context, userID uint) ([]models.ChildSponsorship, *ServiceError) {
	sponsorships, err := s.repo.ListSponsorshipsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list sponsorships", zap.Uint("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list sponsorships"}
	}
	return sponsorships, nil
}

// InitiateInstallment starts the next monthly installment for a sponsored
// child. The amount always comes from the child record, never the caller.
func (s *sponsorshipService) InitiateInstallment(ctx context.Context, userID, childID uint) (*InitiationResult, *ServiceError) {
	child, err := s.repo.FindChildByID(ctx, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Sponsored child not found"}
		}
		s.logger.Error("Failed to load child", zap.Uint("child_id", childID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load child"}
	}
	if !child.IsActive {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "This child is no longer in the sponsorship program"}
	}

	sponsorship, err := s.repo.FindLatestSponsorshipByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Submit a sponsorship application before paying installments"}
		}
		s.logger.Error("Failed to load sponsorship", zap.Uint("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load sponsorship"}
	}

	number, err := s.repo.NextInstallmentNumber(ctx, childID, userID)
	if err != nil {
		s.logger.Error("Failed to number installment", zap.Uint("child_id", childID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create installment"}
	}

	inst := &models.PaymentInstallment{
		ChildID:           childID,
		SponsorID:         userID,
		InstallmentNumber: number,
		Amount:            child.MonthlyAmount,
		PaymentStatus:     models.PaymentStatusInitiated,
	}
	if err := s.repo.CreateInstallment(ctx, inst); err != nil {
		s.logger.Error("Failed to create installment", zap.Uint("child_id", childID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create installment"}
	}

	orderID := newPurchaseOrderID("SPO", inst.ID)
	resp, err := s.gateway.InitiatePayment(ctx, providers.InitiateRequest{
		Amount:            inst.Amount,
		PurchaseOrderID:   orderID,
		PurchaseOrderName: fmt.Sprintf("Sponsorship Installment #%d - %s", number, child.FullName),
		ReturnURL:         s.returnURL + "/api/sponsorships/callback",
		WebsiteURL:        s.siteURL,
		CustomerName:      sponsorship.FullName,
		CustomerEmail:     sponsorship.Email,
		CustomerPhone:     sponsorship.Phone,
	})
	if err != nil {
		s.logger.Error("Khalti initiate failed", zap.Uint("installment_id", inst.ID), zap.Error(err))
		if dbErr := s.repo.SetInstallmentStatus(ctx, inst.ID, models.PaymentStatusFailed); dbErr != nil {
			s.logger.Error("Failed to mark installment failed", zap.Uint("installment_id", inst.ID), zap.Error(dbErr))
		}
		return nil, gatewayServiceError(err)
	}

	if err := s.repo.SetInstallmentGatewayRef(ctx, inst.ID, resp.Pidx); err != nil {
		s.logger.Error("Failed to store gateway ref", zap.Uint("installment_id", inst.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create installment"}
	}

	return &InitiationResult{
		RecordID:        inst.ID,
		PurchaseOrderID: orderID,
		Pidx:            resp.Pidx,
		PaymentURL:      resp.PaymentURL,
		ExpiresAt:       resp.ExpiresAt,
	}, nil
}

func (s *sponsorshipService) Verify(ctx context.Context, pidx string) (*VerificationResult, *ServiceError) {
	if pidx == "" {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "pidx is required"}
	}

	inst, err := s.repo.FindInstallmentByPidx(ctx, pidx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Installment not found"}
		}
		s.logger.Error("Failed to load installment", zap.String("pidx", pidx), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load installment"}
	}

	if inst.PaymentStatus == models.PaymentStatusCompleted && inst.CompletedAt != nil {
		return &VerificationResult{
			Success:       true,
			Status:        inst.PaymentStatus,
			TransactionID: inst.TransactionID,
			Amount:        inst.Amount,
			Fee:           inst.Fee,
			Refunded:      inst.Refunded,
		}, nil
	}

	lookup, err := s.gateway.LookupPayment(ctx, pidx)
	if err != nil {
		s.logger.Error("Khalti lookup failed", zap.String("pidx", pidx), zap.Error(err))
		return nil, gatewayServiceError(err)
	}

	status := providers.MapStatus(lookup.Status)
	if err := s.repo.RecordVerification(ctx, inst.ID, lookup.TransactionID, lookup.Fee, lookup.Refunded); err != nil {
		s.logger.Error("Failed to record verification", zap.Uint("installment_id", inst.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update installment"}
	}

	if status == models.PaymentStatusCompleted {
		won, err := s.repo.MarkCompleted(ctx, inst.ID, lookup.TransactionID, time.Now())
		if err != nil {
			s.logger.Error("Failed to mark installment completed", zap.Uint("installment_id", inst.ID), zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update installment"}
		}
		if won {
			sponsorID := inst.SponsorID
			receipt := Receipt{
				UserID:           &sponsorID,
				NotificationType: models.NotificationPaymentCompleted,
				Title:            fmt.Sprintf("Installment #%d Paid", inst.InstallmentNumber),
				Message: fmt.Sprintf("Your sponsorship installment of Rs. %.2f has been completed. Transaction ID: %s",
					inst.Amount, lookup.TransactionID),
				EmailSubject:  "Sponsorship Installment Receipt - Aarambha Foundation",
				EmailType:     models.EmailTypePaymentReceipt,
				RelatedID:     inst.ID,
				Amount:        inst.Amount,
				TransactionID: lookup.TransactionID,
			}
			if sponsorship, err := s.repo.FindLatestSponsorshipByUser(ctx, inst.SponsorID); err == nil {
				receipt.Email = sponsorship.Email
				receipt.EmailBody = fmt.Sprintf("Dear %s,\n\nYour sponsorship installment #%d of Rs. %.2f has been completed successfully.\n\nTransaction ID: %s\n\nThank you for sponsoring a child with Aarambha Foundation!\n\nBest regards,\nAarambha Foundation Team",
					sponsorship.FullName, inst.InstallmentNumber, inst.Amount, lookup.TransactionID)
			} else {
				s.logger.Warn("No sponsorship record for receipt email",
					zap.Uint("sponsor_id", inst.SponsorID), zap.Error(err))
			}
			s.receipts.Deliver(ctx, receipt)
		}
	} else {
		if err := s.repo.SetInstallmentStatus(ctx, inst.ID, status); err != nil {
			s.logger.Error("Failed to update installment status", zap.Uint("installment_id", inst.ID), zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update installment"}
		}
	}

	return &VerificationResult{
		Success:       true,
		Status:        status,
		TransactionID: lookup.TransactionID,
		Amount:        inst.Amount,
		Fee:           lookup.Fee,
		Refunded:      lookup.Refunded,
	}, nil
}

func (s *sponsorshipService) ListChildPayments(ctx context.Context, userID, childID uint) ([]models.PaymentInstallment, *ServiceError) {
	installments, err := s.repo.ListInstallmentsByChild(ctx, childID, userID)
	if err != nil {
		s.logger.Error("Failed to list installments", zap.Uint("child_id", childID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list installments"}
	}
	return installments, nil
}
