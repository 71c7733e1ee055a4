package repository

import (
	"context"
	"time"

	"aarambha-backend/models"

	"gorm.io/gorm"
)

type SponsorshipRepository interface {
	CreateSponsorship(ctx context.Context, s *models.ChildSponsorship) error
	ListSponsorshipsByUser(ctx context.Context, userID uint) ([]models.ChildSponsorship, error)
	FindLatestSponsorshipByUser(ctx context.Context, userID uint) (*models.ChildSponsorship, error)
	FindChildByID(ctx context.Context, id uint) (*models.SponsoredChild, error)
	CreateInstallment(ctx context.Context, inst *models.PaymentInstallment) error
	FindInstallmentByPidx(ctx context.Context, pidx string) (*models.PaymentInstallment, error)
	NextInstallmentNumber(ctx context.Context, childID, sponsorID uint) (int, error)
	SetInstallmentGatewayRef(ctx context.Context, id uint, pidx string) error
	SetInstallmentStatus(ctx context.Context, id uint, status string) error
	RecordVerification(ctx context.Context, id uint, transactionID string, fee float64, refunded bool) error
	MarkCompleted(ctx context.Context, id uint, transactionID string, completedAt time.Time) (bool, error)
	ListInstallmentsByChild(ctx context.Context, childID, sponsorID uint) ([]models.PaymentInstallment, error)
}

type gormSponsorshipRepo struct {
	db *gorm.DB
}

func NewGormSponsorshipRepo(db *gorm.DB) SponsorshipRepository {
	return &gormSponsorshipRepo{db: db}
}

func (r *gormSponsorshipRepo) CreateSponsorship(ctx context.Context, s *models.ChildSponsorship) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *gormSponsorshipRepo) ListSponsorshipsByUser(ctx context.Context, userID uint) ([]models.ChildSponsorship, error) {
	var sponsorships []models.ChildSponsorship
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&sponsorships).Error
	return sponsorships, err
}

func (r *gormSponsorshipRepo) FindLatestSponsorshipByUser(ctx context.Context, userID uint) (*models.ChildSponsorship, error) {
	var sponsorship models.ChildSponsorship
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").First(&sponsorship).Error; err != nil {
		return nil, err
	}
	return &sponsorship, nil
}

func (r *gormSponsorshipRepo) FindChildByID(ctx context.Context, id uint) (*models.SponsoredChild, error) {
	var child models.SponsoredChild
	if err := r.db.WithContext(ctx).First(&child, id).Error; err != nil {
		return nil, err
	}
	return &child, nil
}

func (r *gormSponsorshipRepo) CreateInstallment(ctx context.Context, inst *models.PaymentInstallment) error {
	return r.db.WithContext(ctx).Create(inst).Error
}

func (r *gormSponsorshipRepo) FindInstallmentByPidx(ctx context.Context, pidx string) (*models.PaymentInstallment, error) {
	var inst models.PaymentInstallment
	if err := r.db.WithContext(ctx).Where("pidx = ?", pidx).First(&inst).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *gormSponsorshipRepo) NextInstallmentNumber(ctx context.Context, childID, sponsorID uint) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentInstallment{}).
		Where("child_id = ? AND sponsor_id = ?", childID, sponsorID).
		Count(&count).Error
	return int(count) + 1, err
}

func (r *gormSponsorshipRepo) SetInstallmentGatewayRef(ctx context.Context, id uint, pidx string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentInstallment{}).Where("id = ?", id).
		Update("pidx", pidx).Error
}

// SetInstallmentStatus writes a non-terminal status; a row with
// completed_at set never moves backwards, so this is a no-op there.
func (r *gormSponsorshipRepo) SetInstallmentStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentInstallment{}).
		Where("id = ? AND completed_at IS NULL", id).
		Update("payment_status", status).Error
}

func (r *gormSponsorshipRepo) RecordVerification(ctx context.Context, id uint, transactionID string, fee float64, refunded bool) error {
	return r.db.WithContext(ctx).Model(&models.PaymentInstallment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"transaction_id": transactionID,
		"fee":            fee,
		"refunded":       refunded,
	}).Error
}

func (r *gormSponsorshipRepo) MarkCompleted(ctx context.Context, id uint, transactionID string, completedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentInstallment{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusCompleted,
			"transaction_id": transactionID,
			"completed_at":   completedAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *gormSponsorshipRepo) ListInstallmentsByChild(ctx context.Context, childID, sponsorID uint) ([]models.PaymentInstallment, error) {
	var installments []models.PaymentInstallment
	err := r.db.WithContext(ctx).
		Where("child_id = ? AND sponsor_id = ?", childID, sponsorID).
		Order("installment_number ASC").
		Find(&installments).Error
	return installments, err
}
