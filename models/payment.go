package models

import "time"

// Local payment statuses. Khalti lookup statuses map onto these; anything
// unrecognized becomes failed.
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
	PaymentStatusCanceled  = "canceled"
	PaymentStatusRefunded  = "refunded"
)

const (
	PaymentMethodKhalti = "khalti"
	PaymentMethodManual = "manual"
)

// MinDonationAmount is the smallest accepted donation in rupees.
const MinDonationAmount = 10.0

// Payment is the cross-domain history row shown on a member's profile.
// One is appended whenever any payment flow completes.
type Payment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"index;not null"`
	Amount        float64   `json:"amount" gorm:"type:numeric(10,2);not null"`
	PaymentMethod string    `json:"payment_method" gorm:"type:varchar(20);not null"`
	TransactionID string    `json:"transaction_id" gorm:"type:varchar(200)"`
	IsVerified    bool      `json:"is_verified" gorm:"default:false"`
	PaidAt        time.Time `json:"paid_at" gorm:"autoCreateTime"`
}
