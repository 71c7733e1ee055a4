package repository

import (
	"context"
	"time"

	"aarambha-backend/models"

	"gorm.io/gorm"
)

type EmailRepository interface {
	Enqueue(ctx context.Context, email *models.EmailQueue) error
	FetchPending(ctx context.Context, limit int, staleBefore time.Time) ([]models.EmailQueue, error)
	MarkSending(ctx context.Context, id uint) error
	MarkSent(ctx context.Context, id uint, at time.Time) error
	RecordFailure(ctx context.Context, id uint, sendErr string, maxAttempts int) error
}

type gormEmailRepo struct {
	db *gorm.DB
}

func NewGormEmailRepo(db *gorm.DB) EmailRepository {
	return &gormEmailRepo{db: db}
}

func (r *gormEmailRepo) Enqueue(ctx context.Context, email *models.EmailQueue) error {
	return r.db.WithContext(ctx).Create(email).Error
}

// FetchPending returns the next batch to send. Besides pending rows it
// reclaims sending rows whose claim is older than staleBefore: a worker
// that died between MarkSending and the outcome write left them behind,
// and without this they would be stuck in sending forever.
func (r *gormEmailRepo) FetchPending(ctx context.Context, limit int, staleBefore time.Time) ([]models.EmailQueue, error) {
	var emails []models.EmailQueue
	err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND updated_at < ?)",
			models.EmailStatusPending, models.EmailStatusSending, staleBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&emails).Error
	return emails, err
}

func (r *gormEmailRepo) MarkSending(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.EmailQueue{}).Where("id = ?", id).
		Update("status", models.EmailStatusSending).Error
}

func (r *gormEmailRepo) MarkSent(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.EmailQueue{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":  models.EmailStatusSent,
		"sent_at": at,
	}).Error
}

// RecordFailure bumps the attempt counter in one statement; the row goes
// back to pending until it has burned maxAttempts, then lands in dead and
// is never picked up again.
func (r *gormEmailRepo) RecordFailure(ctx context.Context, id uint, sendErr string, maxAttempts int) error {
	return r.db.WithContext(ctx).Model(&models.EmailQueue{}).Where("id = ?", id).Updates(map[string]interface{}{
		"attempts":      gorm.Expr("attempts + 1"),
		"error_message": sendErr,
		"status": gorm.Expr(
			"CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END",
			maxAttempts, models.EmailStatusDead, models.EmailStatusPending,
		),
	}).Error
}
