package models

import "time"

// CampaignYearlyAmount is the yearly settlement for a one-rupee-per-day
// pledge.
const CampaignYearlyAmount = 365.0

// Campaign is a One Rupee Campaign enrollment: a member pledges one rupee
// per day, settled as a yearly payment.
type Campaign struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	FullName   string    `json:"full_name" gorm:"type:varchar(200);not null"`
	Email      string    `json:"email" gorm:"type:varchar(254);not null"`
	Phone      string    `json:"phone" gorm:"type:varchar(20)"`
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	EnrolledAt time.Time `json:"enrolled_at" gorm:"autoCreateTime"`
}

// CampaignPayment is one year's payment for a campaign enrollment.
type CampaignPayment struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	CampaignID  uint    `json:"campaign_id" gorm:"index;not null"`
	PaymentYear int     `json:"payment_year" gorm:"not null"`
	Amount      float64 `json:"amount" gorm:"type:numeric(10,2);not null"`

	Pidx          string  `json:"pidx" gorm:"type:varchar(100);uniqueIndex"`
	TransactionID string  `json:"transaction_id" gorm:"type:varchar(200)"`
	PaymentStatus string  `json:"payment_status" gorm:"type:varchar(20);not null;default:initiated"`
	Fee           float64 `json:"fee" gorm:"type:numeric(10,2);default:0"`
	Refunded      bool    `json:"refunded" gorm:"default:false"`

	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Campaign *Campaign `json:"campaign,omitempty" gorm:"foreignKey:CampaignID"`
}
