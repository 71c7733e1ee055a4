package repository

import (
	"context"
	"time"

	"aarambha-backend/models"

	"gorm.io/gorm"
)

type CampaignRepository interface {
	CreateCampaign(ctx context.Context, c *models.Campaign) error
	FindCampaignByUser(ctx context.Context, userID uint) (*models.Campaign, error)
	FindCampaignByID(ctx context.Context, id uint) (*models.Campaign, error)
	CreatePayment(ctx context.Context, p *models.CampaignPayment) error
	FindPaymentByPidx(ctx context.Context, pidx string) (*models.CampaignPayment, error)
	SetPaymentGatewayRef(ctx context.Context, id uint, pidx string) error
	SetPaymentStatus(ctx context.Context, id uint, status string) error
	RecordVerification(ctx context.Context, id uint, transactionID string, fee float64, refunded bool) error
	MarkCompleted(ctx context.Context, id uint, transactionID string, completedAt time.Time) (bool, error)
	ListPaymentsByCampaign(ctx context.Context, campaignID uint) ([]models.CampaignPayment, error)
}

type gormCampaignRepo struct {
	db *gorm.DB
}

func NewGormCampaignRepo(db *gorm.DB) CampaignRepository {
	return &gormCampaignRepo{db: db}
}

func (r *gormCampaignRepo) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *gormCampaignRepo) FindCampaignByUser(ctx context.Context, userID uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *gormCampaignRepo) FindCampaignByID(ctx context.Context, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).First(&campaign, id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *gormCampaignRepo) CreatePayment(ctx context.Context, p *models.CampaignPayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormCampaignRepo) FindPaymentByPidx(ctx context.Context, pidx string) (*models.CampaignPayment, error) {
	var payment models.CampaignPayment
	if err := r.db.WithContext(ctx).Where("pidx = ?", pidx).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormCampaignRepo) SetPaymentGatewayRef(ctx context.Context, id uint, pidx string) error {
	return r.db.WithContext(ctx).Model(&models.CampaignPayment{}).Where("id = ?", id).
		Update("pidx", pidx).Error
}

// SetPaymentStatus writes a non-terminal status; a row with completed_at
// set never moves backwards, so this is a no-op there.
func (r *gormCampaignRepo) SetPaymentStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.CampaignPayment{}).
		Where("id = ? AND completed_at IS NULL", id).
		Update("payment_status", status).Error
}

func (r *gormCampaignRepo) RecordVerification(ctx context.Context, id uint, transactionID string, fee float64, refunded bool) error {
	return r.db.WithContext(ctx).Model(&models.CampaignPayment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"transaction_id": transactionID,
		"fee":            fee,
		"refunded":       refunded,
	}).Error
}

func (r *gormCampaignRepo) MarkCompleted(ctx context.Context, id uint, transactionID string, completedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.CampaignPayment{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusCompleted,
			"transaction_id": transactionID,
			"completed_at":   completedAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *gormCampaignRepo) ListPaymentsByCampaign(ctx context.Context, campaignID uint) ([]models.CampaignPayment, error) {
	var payments []models.CampaignPayment
	err := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID).
		Order("payment_year DESC").Find(&payments).Error
	return payments, err
}
