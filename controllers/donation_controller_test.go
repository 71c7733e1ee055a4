package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aarambha-backend/controllers"
	"aarambha-backend/models"
	"aarambha-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// ---- concrete mock implementing services.DonationService ----

type mockDonationService struct {
	initResult *services.InitiationResult
	initErr    *services.ServiceError
	lastInput  services.DonationInitiateInput

	verifyResult *services.VerificationResult
	verifyErr    *services.ServiceError
	verifiedPidx string
}

func (m *mockDonationService) Initiate(_ context.Context, input services.DonationInitiateInput) (*services.InitiationResult, *services.ServiceError) {
	m.lastInput = input
	return m.initResult, m.initErr
}

func (m *mockDonationService) Verify(_ context.Context, pidx string) (*services.VerificationResult, *services.ServiceError) {
	m.verifiedPidx = pidx
	return m.verifyResult, m.verifyErr
}

func (m *mockDonationService) List(_ context.Context, _ string, _, _ int) ([]models.Donation, int64, *services.ServiceError) {
	return nil, 0, nil
}

func setupRouter(svc services.DonationService) (*gin.Engine, *controllers.DonationController) {
	gin.SetMode(gin.TestMode)
	dc := controllers.NewDonationController(svc, "http://localhost:3000", zap.NewNop())
	r := gin.New()
	r.POST("/api/donations/initiate", dc.Initiate)
	r.POST("/api/donations/verify", dc.Verify)
	r.GET("/api/donations/callback", dc.Callback)
	return r, dc
}

func TestInitiateEndpoint_Success(t *testing.T) {
	svc := &mockDonationService{
		initResult: &services.InitiationResult{
			RecordID:   42,
			Pidx:       "pidx-1",
			PaymentURL: "https://test-pay.khalti.com/?pidx=pidx-1",
		},
	}
	r, _ := setupRouter(svc)

	body, _ := json.Marshal(gin.H{
		"full_name": "Sita Sharma",
		"email":     "sita@example.com",
		"phone":     "9841000000",
		"amount":    500,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donations/initiate", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp services.InitiationResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pidx-1", resp.Pidx)
	assert.Equal(t, 500.0, svc.lastInput.Amount)
	assert.Nil(t, svc.lastInput.UserID, "guest donation carries no user id")
}

func TestInitiateEndpoint_MissingFields(t *testing.T) {
	svc := &mockDonationService{}
	r, _ := setupRouter(svc)

	body, _ := json.Marshal(gin.H{"amount": 500})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donations/initiate", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitiateEndpoint_ServiceErrorPassedThrough(t *testing.T) {
	svc := &mockDonationService{
		initErr: &services.ServiceError{StatusCode: http.StatusBadRequest, Message: "Minimum donation amount is Rs. 10"},
	}
	r, _ := setupRouter(svc)

	body, _ := json.Marshal(gin.H{
		"full_name": "Sita Sharma",
		"email":     "sita@example.com",
		"phone":     "9841000000",
		"amount":    5,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donations/initiate", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Minimum donation amount")
}

func TestVerifyEndpoint_Success(t *testing.T) {
	svc := &mockDonationService{
		verifyResult: &services.VerificationResult{
			Success:       true,
			Status:        models.PaymentStatusCompleted,
			TransactionID: "txn-1",
			Amount:        500,
			Fee:           2.5,
		},
	}
	r, _ := setupRouter(svc)

	body, _ := json.Marshal(gin.H{"pidx": "pidx-1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donations/verify", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pidx-1", svc.verifiedPidx)
	var resp services.VerificationResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, models.PaymentStatusCompleted, resp.Status)
}

func TestVerifyEndpoint_UnknownPidx(t *testing.T) {
	svc := &mockDonationService{
		verifyErr: &services.ServiceError{StatusCode: http.StatusNotFound, Message: "Donation not found"},
	}
	r, _ := setupRouter(svc)

	body, _ := json.Marshal(gin.H{"pidx": "pidx-missing"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donations/verify", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCallback_RedirectsEvenWhenVerificationFails(t *testing.T) {
	svc := &mockDonationService{
		verifyErr: &services.ServiceError{StatusCode: http.StatusBadGateway, Message: "Payment gateway unreachable"},
	}
	r, _ := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/donations/callback?pidx=pidx-1&status=Completed", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3000/payment/status?pidx=pidx-1", w.Header().Get("Location"))
	assert.Equal(t, "pidx-1", svc.verifiedPidx)
}

func TestCallback_NoPidxStillRedirects(t *testing.T) {
	svc := &mockDonationService{}
	r, _ := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/donations/callback", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Empty(t, svc.verifiedPidx, "verification must not run without a pidx")
}
