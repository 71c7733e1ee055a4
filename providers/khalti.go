package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aarambha-backend/models"
)

// KhaltiConfig selects the environment. Sandbox and production differ only
// in BaseURL and SecretKey.
type KhaltiConfig struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// KhaltiProvider implements PaymentGateway against the Khalti ePayment API.
type KhaltiProvider struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewKhaltiProvider creates a new KhaltiProvider.
func NewKhaltiProvider(cfg KhaltiConfig) *KhaltiProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &KhaltiProvider{
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ---- Khalti API request/response structs ----

type khaltiCustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type khaltiInitiateRequest struct {
	ReturnURL         string             `json:"return_url"`
	WebsiteURL        string             `json:"website_url"`
	Amount            int64              `json:"amount"` // paisa
	PurchaseOrderID   string             `json:"purchase_order_id"`
	PurchaseOrderName string             `json:"purchase_order_name"`
	CustomerInfo      khaltiCustomerInfo `json:"customer_info"`
}

type khaltiInitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
}

type khaltiLookupRequest struct {
	Pidx string `json:"pidx"`
}

type khaltiLookupResponse struct {
	Pidx          string `json:"pidx"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Fee           int64  `json:"fee"` // paisa
	Refunded      bool   `json:"refunded"`
}

// ---- PaymentGateway implementation ----

// InitiatePayment registers a payment intent with Khalti and returns the
// pidx and hosted payment URL.
func (k *KhaltiProvider) InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	phone := req.CustomerPhone
	if phone == "" {
		phone = "9800000001"
	}
	body := khaltiInitiateRequest{
		ReturnURL:         req.ReturnURL,
		WebsiteURL:        req.WebsiteURL,
		Amount:            toPaisa(req.Amount),
		PurchaseOrderID:   req.PurchaseOrderID,
		PurchaseOrderName: req.PurchaseOrderName,
		CustomerInfo: khaltiCustomerInfo{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: phone,
		},
	}

	var resp khaltiInitiateResponse
	if err := k.post(ctx, "/epayment/initiate/", body, &resp); err != nil {
		return nil, err
	}
	if resp.Pidx == "" {
		return nil, &GatewayError{StatusCode: http.StatusOK, RawBody: "initiate response missing pidx"}
	}

	return &InitiateResponse{
		Pidx:       resp.Pidx,
		PaymentURL: resp.PaymentURL,
		ExpiresAt:  resp.ExpiresAt,
	}, nil
}

// LookupPayment asks Khalti for the authoritative status of a payment.
func (k *KhaltiProvider) LookupPayment(ctx context.Context, pidx string) (*LookupResponse, error) {
	var resp khaltiLookupResponse
	if err := k.post(ctx, "/epayment/lookup/", khaltiLookupRequest{Pidx: pidx}, &resp); err != nil {
		return nil, err
	}

	return &LookupResponse{
		Status:        resp.Status,
		TransactionID: resp.TransactionID,
		Fee:           fromPaisa(resp.Fee),
		Refunded:      resp.Refunded,
	}, nil
}

func (k *KhaltiProvider) post(ctx context.Context, path string, payload, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "key "+k.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("khalti request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &GatewayError{StatusCode: resp.StatusCode, RawBody: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &GatewayError{StatusCode: resp.StatusCode, RawBody: string(raw)}
	}
	return nil
}

// MapStatus translates a raw Khalti lookup status to the local enum.
// Anything unrecognized is failed.
func MapStatus(gatewayStatus string) string {
	switch strings.ToLower(gatewayStatus) {
	case "completed":
		return models.PaymentStatusCompleted
	case "pending":
		return models.PaymentStatusPending
	case "initiated":
		return models.PaymentStatusInitiated
	case "refunded":
		return models.PaymentStatusRefunded
	case "expired":
		return models.PaymentStatusExpired
	case "user canceled":
		return models.PaymentStatusCanceled
	default:
		return models.PaymentStatusFailed
	}
}

// Khalti speaks paisa; local records are in rupees.
func toPaisa(amount float64) int64 {
	return int64(amount*100 + 0.5)
}

func fromPaisa(amount int64) float64 {
	return float64(amount) / 100
}
