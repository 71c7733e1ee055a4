package models

import "time"

// Sponsorship statuses.
const (
	SponsorshipStatusPending  = "pending"
	SponsorshipStatusApproved = "approved"
	SponsorshipStatusActive   = "active"
	SponsorshipStatusRejected = "rejected"
)

// ChildSponsorship is a sponsor's application to support a child. Approval
// and child assignment are handled by the admin side; this service owns the
// submission and the installment payments that follow.
type ChildSponsorship struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	UserID          uint    `json:"user_id" gorm:"index;not null"`
	FullName        string  `json:"full_name" gorm:"type:varchar(200);not null"`
	Email           string  `json:"email" gorm:"type:varchar(254);not null"`
	Phone           string  `json:"phone" gorm:"type:varchar(20);not null"`
	Country         string  `json:"country" gorm:"type:varchar(100);default:Nepal"`
	City            string  `json:"city" gorm:"type:varchar(100)"`
	SponsorshipType string  `json:"sponsorship_type" gorm:"type:varchar(50);not null"`
	PaymentAmount   float64 `json:"payment_amount" gorm:"type:numeric(10,2)"`
	PaymentMethod   string  `json:"payment_method" gorm:"type:varchar(20)"`
	Message         string  `json:"message" gorm:"type:text"`
	Status          string  `json:"status" gorm:"type:varchar(20);not null;default:pending"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// SponsoredChild is a child in the sponsorship program.
type SponsoredChild struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	FullName      string    `json:"full_name" gorm:"type:varchar(200);not null"`
	Gender        string    `json:"gender" gorm:"type:varchar(10)"`
	Age           int       `json:"age"`
	District      string    `json:"district" gorm:"type:varchar(100)"`
	MonthlyAmount float64   `json:"monthly_amount" gorm:"type:numeric(10,2)"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// PaymentInstallment is one sponsorship payment for one child. A sponsor
// pays these through Khalti; each installment is its own payment record.
type PaymentInstallment struct {
	ID                uint    `json:"id" gorm:"primaryKey"`
	ChildID           uint    `json:"child_id" gorm:"index;not null"`
	SponsorID         uint    `json:"sponsor_id" gorm:"index;not null"`
	InstallmentNumber int     `json:"installment_number" gorm:"not null"`
	Amount            float64 `json:"amount" gorm:"type:numeric(10,2);not null"`

	Pidx          string  `json:"pidx" gorm:"type:varchar(100);uniqueIndex"`
	TransactionID string  `json:"transaction_id" gorm:"type:varchar(200)"`
	PaymentStatus string  `json:"payment_status" gorm:"type:varchar(20);not null;default:initiated"`
	Fee           float64 `json:"fee" gorm:"type:numeric(10,2);default:0"`
	Refunded      bool    `json:"refunded" gorm:"default:false"`

	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	Child *SponsoredChild `json:"child,omitempty" gorm:"foreignKey:ChildID"`
}
