package models

import "time"

// Email queue statuses. A row cycles pending -> sending -> sent, falls back
// to pending on a failed attempt, and lands in dead once it has exhausted
// its attempts.
const (
	EmailStatusPending = "pending"
	EmailStatusSending = "sending"
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusDead    = "dead"
)

// Email types.
const (
	EmailTypePaymentReceipt = "payment_receipt"
	EmailTypeApplication    = "application_update"
	EmailTypeSponsorship    = "sponsorship_update"
	EmailTypeCampaign       = "campaign_update"
)

// EmailQueue is the outbound email table, drained by a single background
// worker. At-least-once: a crash between send and the sent update means the
// email may go out twice.
type EmailQueue struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	RecipientID    uint       `json:"recipient_id" gorm:"index"`
	RecipientEmail string     `json:"recipient_email" gorm:"type:varchar(254);not null"`
	Subject        string     `json:"subject" gorm:"type:varchar(255);not null"`
	Message        string     `json:"message" gorm:"type:text;not null"`
	EmailType      string     `json:"email_type" gorm:"type:varchar(50);not null"`
	Status         string     `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	Attempts       int        `json:"attempts" gorm:"default:0"`
	ErrorMessage   string     `json:"error_message" gorm:"type:text"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	SentAt         *time.Time `json:"sent_at"`
}
