package providers

import (
	"context"
	"fmt"
)

// InitiateRequest is the payment intent handed to the gateway. Amount is in
// rupees; the provider converts to paisa at the wire.
type InitiateRequest struct {
	Amount            float64
	PurchaseOrderID   string
	PurchaseOrderName string
	ReturnURL         string
	WebsiteURL        string
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
}

// InitiateResponse carries the correlation id and hosted payment page URL.
type InitiateResponse struct {
	Pidx       string
	PaymentURL string
	ExpiresAt  string
}

// LookupResponse is the gateway's authoritative view of a payment. Status is
// the raw gateway string; Fee has already been converted back to rupees.
type LookupResponse struct {
	Status        string
	TransactionID string
	Fee           float64
	Refunded      bool
}

// GatewayError is a non-2xx or malformed gateway reply. RawBody is kept so
// callers can surface the gateway's own diagnostics.
type GatewayError struct {
	StatusCode int
	RawBody    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.RawBody)
}

// PaymentGateway defines a common interface for payment providers.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	LookupPayment(ctx context.Context, pidx string) (*LookupResponse, error)
}
