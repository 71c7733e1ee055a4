package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ServiceError is a typed error with an HTTP status code. Details carries
// the gateway's raw error payload when one is available.
type ServiceError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *ServiceError) Error() string { return e.Message }

// InitiationResult is returned to the frontend so it can redirect the
// payer to the gateway's hosted payment page.
type InitiationResult struct {
	RecordID        uint   `json:"record_id"`
	PurchaseOrderID string `json:"purchase_order_id"`
	Pidx            string `json:"pidx"`
	PaymentURL      string `json:"payment_url"`
	ExpiresAt       string `json:"expires_at,omitempty"`
}

// VerificationResult is the common verification response shape shared by
// every payment flow.
type VerificationResult struct {
	Success       bool    `json:"success"`
	Status        string  `json:"status"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Fee           float64 `json:"fee"`
	Refunded      bool    `json:"refunded"`
}

// newPurchaseOrderID builds a locally unique order id with a random suffix,
// e.g. "AF-17-3F2A9B0C11D4". Uniqueness is probabilistic, not coordinated;
// the gateway's pidx is the real correlation key.
func newPurchaseOrderID(prefix string, recordID uint) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
	if recordID == 0 {
		return fmt.Sprintf("%s-%s", prefix, suffix)
	}
	return fmt.Sprintf("%s-%d-%s", prefix, recordID, suffix)
}
