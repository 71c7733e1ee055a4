package models

import "time"

// Notification types.
const (
	NotificationPaymentCompleted = "payment_completed"
	NotificationApplication      = "application_update"
	NotificationSponsorship      = "sponsorship_update"
	NotificationCampaign         = "campaign_update"
)

// UserNotification is an in-app notification shown on the user's dashboard.
type UserNotification struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           uint      `json:"user_id" gorm:"index;not null"`
	NotificationType string    `json:"notification_type" gorm:"type:varchar(30);not null"`
	Title            string    `json:"title" gorm:"type:varchar(200);not null"`
	Message          string    `json:"message" gorm:"type:text"`
	RelatedID        uint      `json:"related_id"`
	IsRead           bool      `json:"is_read" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}
