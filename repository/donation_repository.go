package repository

import (
	"context"
	"time"

	"aarambha-backend/models"

	"gorm.io/gorm"
)

type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	FindByID(ctx context.Context, id uint) (*models.Donation, error)
	FindByPidx(ctx context.Context, pidx string) (*models.Donation, error)
	SetGatewayRef(ctx context.Context, id uint, pidx, paymentURL string) error
	SetStatus(ctx context.Context, id uint, status string) error
	RecordVerification(ctx context.Context, id uint, transactionID string, fee float64, refunded bool) error
	MarkCompleted(ctx context.Context, id uint, transactionID string, completedAt time.Time) (bool, error)
	List(ctx context.Context, status string, page, pageSize int) ([]models.Donation, int64, error)
}

type gormDonationRepo struct {
	db *gorm.DB
}

func NewGormDonationRepo(db *gorm.DB) DonationRepository {
	return &gormDonationRepo{db: db}
}

func (r *gormDonationRepo) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *gormDonationRepo) FindByID(ctx context.Context, id uint) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).First(&donation, id).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *gormDonationRepo) FindByPidx(ctx context.Context, pidx string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).Where("pidx = ?", pidx).First(&donation).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *gormDonationRepo) SetGatewayRef(ctx context.Context, id uint, pidx, paymentURL string) error {
	return r.db.WithContext(ctx).Model(&models.Donation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"pidx":        pidx,
		"payment_url": paymentURL,
	}).Error
}

// SetStatus writes a non-terminal status. The completed_at guard keeps a
// slow verifier holding a stale gateway reply from dragging a completed
// row backwards; on a completed row this is a no-op.
func (r *gormDonationRepo) SetStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND completed_at IS NULL", id).
		Update("payment_status", status).Error
}

// RecordVerification persists the lookup result fields. Status transitions
// are written separately: non-terminal ones through SetStatus, the completed
// transition through MarkCompleted so side effects fire exactly once.
func (r *gormDonationRepo) RecordVerification(ctx context.Context, id uint, transactionID string, fee float64, refunded bool) error {
	return r.db.WithContext(ctx).Model(&models.Donation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"transaction_id": transactionID,
		"fee":            fee,
		"refunded":       refunded,
	}).Error
}

// MarkCompleted is a conditional update: only one caller ever observes
// rows-affected > 0 for a given record, no matter how many verification
// calls race on it.
func (r *gormDonationRepo) MarkCompleted(ctx context.Context, id uint, transactionID string, completedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusCompleted,
			"transaction_id": transactionID,
			"completed_at":   completedAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *gormDonationRepo) List(ctx context.Context, status string, page, pageSize int) ([]models.Donation, int64, error) {
	var donations []models.Donation
	var total int64

	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if page < 1 {
		page = 1
	}

	query := r.db.WithContext(ctx).Model(&models.Donation{})
	if status != "" {
		query = query.Where("payment_status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&donations).Error

	return donations, total, err
}
