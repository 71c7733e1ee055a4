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

// ApplicationSubmitInput is the applicant's form data.
type ApplicationSubmitInput struct {
	UserID           uint
	FullName         string
	Email            string
	Phone            string
	DateOfBirth      string
	Country          string
	District         string
	PermanentAddress string
	Profession       string
	WhyJoin          string
	ApplicationType  string
}

type ApplicationService interface {
	Submit(ctx context.Context, input ApplicationSubmitInput) (*models.Application, *ServiceError)
	MyApplications(ctx context.Context, userID uint) ([]models.Application, *ServiceError)
	InitiatePayment(ctx context.Context, userID, applicationID uint) (*InitiationResult, *ServiceError)
	Verify(ctx context.Context, pidx string) (*VerificationResult, *ServiceError)
}

type applicationService struct {
	repo      repository.ApplicationRepository
	gateway   providers.PaymentGateway
	receipts  *ReceiptService
	returnURL string
	siteURL   string
	logger    *zap.Logger
}

func NewApplicationService(
	repo repository.ApplicationRepository,
	gateway providers.PaymentGateway,
	receipts *ReceiptService,
	returnURL, siteURL string,
	logger *zap.Logger,
) ApplicationService {
	return &applicationService{
		repo:      repo,
		gateway:   gateway,
		receipts:  receipts,
		returnURL: returnURL,
		siteURL:   siteURL,
		logger:    logger,
	}
}

// Submit records a new application. Member applications carry the fixed
// membership fee and stay pending until it is paid; volunteer applications
// need no payment.
func (s *applicationService) Submit(ctx context.Context, input ApplicationSubmitInput) (*models.Application, *ServiceError) {
	if input.ApplicationType != models.ApplicationTypeMember && input.ApplicationType != models.ApplicationTypeVolunteer {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "application_type must be member or volunteer"}
	}

	app := &models.Application{
		UserID:           input.UserID,
		FullName:         input.FullName,
		Email:            input.Email,
		Phone:            input.Phone,
		DateOfBirth:      input.DateOfBirth,
		Country:          input.Country,
		District:         input.District,
		PermanentAddress: input.PermanentAddress,
		Profession:       input.Profession,
		WhyJoin:          input.WhyJoin,
		ApplicationType:  input.ApplicationType,
		Status:           models.ApplicationStatusPending,
	}
	if app.ApplicationType == models.ApplicationTypeMember {
		app.PaymentRequired = true
		app.PaymentAmount = models.MembershipFeeAmount
	}

	if err := s.repo.Create(ctx, app); err != nil {
		s.logger.Error("Failed to create application", zap.Uint("user_id", input.UserID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save application"}
	}
	return app, nil
}

func (s *applicationService) MyApplications(ctx context.Context, userID uint) ([]models.Application, *ServiceError) {
	apps, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list applications", zap.Uint("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to list applications"}
	}
	return apps, nil
}

// InitiatePayment starts the membership fee payment for the caller's own
// application.
func (s *applicationService) InitiatePayment(ctx context.Context, userID, applicationID uint) (*InitiationResult, *ServiceError) {
	app, err := s.repo.FindByIDForUser(ctx, applicationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Application not found"}
		}
		s.logger.Error("Failed to load application", zap.Uint("application_id", applicationID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load application"}
	}

	if !app.PaymentRequired {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "This application does not require a payment"}
	}
	if app.PaymentCompleted() {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Membership fee has already been paid"}
	}

	// A retry after a failed attempt starts from a clean initiated state,
	// before the gateway is contacted.
	if err := s.repo.SetPaymentStatus(ctx, app.ID, models.PaymentStatusInitiated); err != nil {
		s.logger.Error("Failed to reset payment status", zap.Uint("application_id", app.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save application"}
	}

	orderID := newPurchaseOrderID("AF", app.ID)
	resp, err := s.gateway.InitiatePayment(ctx, providers.InitiateRequest{
		Amount:            app.PaymentAmount,
		PurchaseOrderID:   orderID,
		PurchaseOrderName: fmt.Sprintf("Membership Fee - %s", app.FullName),
		ReturnURL:         s.returnURL + "/api/applications/callback",
		WebsiteURL:        s.siteURL,
		CustomerName:      app.FullName,
		CustomerEmail:     app.Email,
		CustomerPhone:     app.Phone,
	})
	if err != nil {
		s.logger.Error("Khalti initiate failed", zap.Uint("application_id", app.ID), zap.Error(err))
		if dbErr := s.repo.SetPaymentStatus(ctx, app.ID, models.PaymentStatusFailed); dbErr != nil {
			s.logger.Error("Failed to mark application payment failed", zap.Uint("application_id", app.ID), zap.Error(dbErr))
		}
		return nil, gatewayServiceError(err)
	}

	if err := s.repo.SetGatewayRef(ctx, app.ID, resp.Pidx); err != nil {
		s.logger.Error("Failed to store gateway ref", zap.Uint("application_id", app.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to save application"}
	}

	return &InitiationResult{
		RecordID:        app.ID,
		PurchaseOrderID: orderID,
		Pidx:            resp.Pidx,
		PaymentURL:      resp.PaymentURL,
		ExpiresAt:       resp.ExpiresAt,
	}, nil
}

func (s *applicationService) Verify(ctx context.Context, pidx string) (*VerificationResult, *ServiceError) {
	if pidx == "" {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "pidx is required"}
	}

	app, err := s.repo.FindByPidx(ctx, pidx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Application not found"}
		}
		s.logger.Error("Failed to load application", zap.String("pidx", pidx), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load application"}
	}

	if app.PaymentStatus == models.PaymentStatusCompleted && app.CompletedAt != nil {
		return &VerificationResult{
			Success:       true,
			Status:        app.PaymentStatus,
			TransactionID: app.TransactionID,
			Amount:        app.PaymentAmount,
			Fee:           app.Fee,
			Refunded:      app.Refunded,
		}, nil
	}

	lookup, err := s.gateway.LookupPayment(ctx, pidx)
	if err != nil {
		s.logger.Error("Khalti lookup failed", zap.String("pidx", pidx), zap.Error(err))
		return nil, gatewayServiceError(err)
	}

	status := providers.MapStatus(lookup.Status)
	if err := s.repo.RecordVerification(ctx, app.ID, lookup.TransactionID, lookup.Fee, lookup.Refunded); err != nil {
		s.logger.Error("Failed to record verification", zap.Uint("application_id", app.ID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update application"}
	}

	if status == models.PaymentStatusCompleted {
		won, err := s.repo.MarkCompleted(ctx, app.ID, lookup.TransactionID, time.Now())
		if err != nil {
			s.logger.Error("Failed to mark application completed", zap.Uint("application_id", app.ID), zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update application"}
		}
		if won {
			userID := app.UserID
			s.receipts.Deliver(ctx, Receipt{
				UserID:           &userID,
				Email:            app.Email,
				NotificationType: models.NotificationPaymentCompleted,
				Title:            "Membership Fee Paid",
				Message: fmt.Sprintf("Your membership fee of Rs. %.2f has been paid. Transaction ID: %s",
					app.PaymentAmount, lookup.TransactionID),
				EmailSubject: "Membership Fee Receipt - Aarambha Foundation",
				EmailBody: fmt.Sprintf("Dear %s,\n\nYour membership fee of Rs. %.2f has been paid successfully. Your application is now awaiting review.\n\nTransaction ID: %s\n\nBest regards,\nAarambha Foundation Team",
					app.FullName, app.PaymentAmount, lookup.TransactionID),
				EmailType:     models.EmailTypePaymentReceipt,
				RelatedID:     app.ID,
				Amount:        app.PaymentAmount,
				TransactionID: lookup.TransactionID,
			})
		}
	} else {
		if err := s.repo.SetPaymentStatus(ctx, app.ID, status); err != nil {
			s.logger.Error("Failed to update payment status", zap.Uint("application_id", app.ID), zap.Error(err))
			return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update application"}
		}
	}

	return &VerificationResult{
		Success:       true,
		Status:        status,
		TransactionID: lookup.TransactionID,
		Amount:        app.PaymentAmount,
		Fee:           lookup.Fee,
		Refunded:      lookup.Refunded,
	}, nil
}
