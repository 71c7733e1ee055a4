package repository

import (
	"context"

	"aarambha-backend/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.UserNotification) error
	ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]models.UserNotification, int64, error)
	MarkRead(ctx context.Context, id, userID uint) error
}

type gormNotificationRepo struct {
	db *gorm.DB
}

func NewGormNotificationRepo(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepo{db: db}
}

func (r *gormNotificationRepo) Create(ctx context.Context, n *models.UserNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *gormNotificationRepo) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]models.UserNotification, int64, error) {
	var notifications []models.UserNotification
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

	query := r.db.WithContext(ctx).Model(&models.UserNotification{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *gormNotificationRepo) MarkRead(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).Model(&models.UserNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
