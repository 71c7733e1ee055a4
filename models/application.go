package models

import "time"

// Membership application statuses.
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

const (
	ApplicationTypeMember    = "member"
	ApplicationTypeVolunteer = "volunteer"
)

// MembershipFeeAmount is the fixed fee for member applications in rupees.
const MembershipFeeAmount = 1000.0

// Application is a membership or volunteer application. Member applications
// carry a mandatory fee paid through Khalti before approval.
type Application struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	UserID           uint   `json:"user_id" gorm:"index;not null"`
	FullName         string `json:"full_name" gorm:"type:varchar(200);not null"`
	Email            string `json:"email" gorm:"type:varchar(254);not null"`
	Phone            string `json:"phone" gorm:"type:varchar(15);not null"`
	DateOfBirth      string `json:"date_of_birth" gorm:"type:varchar(10)"`
	Country          string `json:"country" gorm:"type:varchar(100);default:Nepal"`
	District         string `json:"district" gorm:"type:varchar(100)"`
	PermanentAddress string `json:"permanent_address" gorm:"type:text"`
	Profession       string `json:"profession" gorm:"type:text"`
	WhyJoin          string `json:"why_join" gorm:"type:text"`

	ApplicationType string `json:"application_type" gorm:"type:varchar(10);not null"`
	Status          string `json:"status" gorm:"type:varchar(20);not null;default:pending"`

	PaymentRequired bool    `json:"payment_required" gorm:"default:false"`
	PaymentAmount   float64 `json:"payment_amount" gorm:"type:numeric(10,2);default:0"`
	Pidx            string  `json:"pidx" gorm:"type:varchar(100);index"`
	TransactionID   string  `json:"transaction_id" gorm:"type:varchar(200)"`
	PaymentStatus   string  `json:"payment_status" gorm:"type:varchar(20);default:initiated"`
	Fee             float64 `json:"fee" gorm:"type:numeric(10,2);default:0"`
	Refunded        bool    `json:"refunded" gorm:"default:false"`

	CompletedAt *time.Time `json:"completed_at"`
	AppliedAt   time.Time  `json:"applied_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// PaymentCompleted reports whether the membership fee has been settled.
func (a *Application) PaymentCompleted() bool {
	return a.CompletedAt != nil
}
