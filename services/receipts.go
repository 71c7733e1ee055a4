package services

import (
	"context"

	"aarambha-backend/models"
	"aarambha-backend/repository"

	"go.uber.org/zap"
)

// Receipt describes the one-time side effects of a completed payment: an
// in-app notification (when the payer has an account), a row in the user's
// payment history, and a receipt email.
type Receipt struct {
	UserID           *uint
	Email            string
	NotificationType string
	Title            string
	Message          string
	EmailSubject     string
	EmailBody        string
	EmailType        string
	RelatedID        uint
	Amount           float64
	TransactionID    string
}

// ReceiptService delivers completion side effects. Everything here is
// fire-and-forget: failures are logged and never propagate back into the
// payment status update.
type ReceiptService struct {
	notifications repository.NotificationRepository
	emails        repository.EmailRepository
	payments      repository.PaymentRepository
	logger        *zap.Logger
}

func NewReceiptService(
	notifications repository.NotificationRepository,
	emails repository.EmailRepository,
	payments repository.PaymentRepository,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		notifications: notifications,
		emails:        emails,
		payments:      payments,
		logger:        logger,
	}
}

// Deliver fires the side effects for a completed payment. Callers must only
// invoke it after winning the completed_at conditional update.
func (s *ReceiptService) Deliver(ctx context.Context, r Receipt) {
	if r.UserID != nil {
		notification := &models.UserNotification{
			UserID:           *r.UserID,
			NotificationType: r.NotificationType,
			Title:            r.Title,
			Message:          r.Message,
			RelatedID:        r.RelatedID,
		}
		if err := s.notifications.Create(ctx, notification); err != nil {
			s.logger.Error("Failed to create payment notification",
				zap.Uint("user_id", *r.UserID), zap.Error(err))
		}

		payment := &models.Payment{
			UserID:        *r.UserID,
			Amount:        r.Amount,
			PaymentMethod: models.PaymentMethodKhalti,
			TransactionID: r.TransactionID,
			IsVerified:    true,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			s.logger.Error("Failed to record payment history",
				zap.Uint("user_id", *r.UserID), zap.Error(err))
		}
	}

	if r.Email != "" {
		email := &models.EmailQueue{
			RecipientEmail: r.Email,
			Subject:        r.EmailSubject,
			Message:        r.EmailBody,
			EmailType:      r.EmailType,
			Status:         models.EmailStatusPending,
		}
		if r.UserID != nil {
			email.RecipientID = *r.UserID
		}
		if err := s.emails.Enqueue(ctx, email); err != nil {
			s.logger.Error("Failed to queue receipt email",
				zap.String("recipient", r.Email), zap.Error(err))
		}
	}
}
