package repository

import (
	"context"
	"time"

	"aarambha-backend/models"

	"gorm.io/gorm"
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id uint) (*models.Application, error)
	FindByIDForUser(ctx context.Context, id, userID uint) (*models.Application, error)
	FindByPidx(ctx context.Context, pidx string) (*models.Application, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Application, error)
	RequirePayment(ctx context.Context, id uint, amount float64) error
	SetGatewayRef(ctx context.Context, id uint, pidx string) error
	SetPaymentStatus(ctx context.Context, id uint, status string) error
	RecordVerification(ctx context.Context, id uint, transactionID string, fee float64, refunded bool) error
	MarkCompleted(ctx context.Context, id uint, transactionID string, completedAt time.Time) (bool, error)
}

type gormApplicationRepo struct {
	db *gorm.DB
}

func NewGormApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &gormApplicationRepo{db: db}
}

func (r *gormApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *gormApplicationRepo) FindByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *gormApplicationRepo) FindByIDForUser(ctx context.Context, id, userID uint) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *gormApplicationRepo) FindByPidx(ctx context.Context, pidx string) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).Where("pidx = ?", pidx).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *gormApplicationRepo) ListByUser(ctx context.Context, userID uint) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("applied_at DESC").Find(&apps).Error
	return apps, err
}

func (r *gormApplicationRepo) RequirePayment(ctx context.Context, id uint, amount float64) error {
	return r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(map[string]interface{}{
		"payment_required": true,
		"payment_amount":   amount,
	}).Error
}

func (r *gormApplicationRepo) SetGatewayRef(ctx context.Context, id uint, pidx string) error {
	return r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).
		Update("pidx", pidx).Error
}

// SetPaymentStatus writes a non-terminal status; a row with completed_at
// set never moves backwards, so this is a no-op there.
func (r *gormApplicationRepo) SetPaymentStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND completed_at IS NULL", id).
		Update("payment_status", status).Error
}

func (r *gormApplicationRepo) RecordVerification(ctx context.Context, id uint, transactionID string, fee float64, refunded bool) error {
	return r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(map[string]interface{}{
		"transaction_id": transactionID,
		"fee":            fee,
		"refunded":       refunded,
	}).Error
}

func (r *gormApplicationRepo) MarkCompleted(ctx context.Context, id uint, transactionID string, completedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusCompleted,
			"transaction_id": transactionID,
			"completed_at":   completedAt,
		})
	return res.RowsAffected > 0, res.Error
}
