package models

import "time"

// Donation is a one-off gift collected through Khalti. It is the audit
// trail for the money: rows are never deleted, only moved forward through
// the payment statuses.
type Donation struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	UserID          *uint   `json:"user_id" gorm:"index"` // nil for guest donors
	FullName        string  `json:"full_name" gorm:"type:varchar(200);not null"`
	Email           string  `json:"email" gorm:"type:varchar(254);not null"`
	Phone           string  `json:"phone" gorm:"type:varchar(20)"`
	Amount          float64 `json:"amount" gorm:"type:numeric(10,2);not null"`
	PurchaseOrderID string  `json:"purchase_order_id" gorm:"type:varchar(100);uniqueIndex"`

	// Gateway correlation. Pidx is assigned by Khalti at initiation and is
	// the only key the callback carries.
	Pidx          string `json:"pidx" gorm:"type:varchar(100);uniqueIndex"`
	TransactionID string `json:"transaction_id" gorm:"type:varchar(200)"`
	PaymentURL    string `json:"payment_url" gorm:"type:varchar(1024)"`

	PaymentStatus string  `json:"payment_status" gorm:"type:varchar(20);not null;default:initiated"`
	Fee           float64 `json:"fee" gorm:"type:numeric(10,2);default:0"`
	Refunded      bool    `json:"refunded" gorm:"default:false"`

	// Set exactly once, when the record first transitions to completed.
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}
