package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"aarambha-backend/models"
	"aarambha-backend/providers"
	"aarambha-backend/services"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ---- mock donation repository ----

type mockDonationRepo struct {
	createErr    error
	createdCalls int
	created      *models.Donation

	findByPidx    *models.Donation
	findByPidxErr error

	gatewayRefCalls int
	setStatusCalls  []string

	verifyCalls int

	markCompletedWon   bool
	markCompletedCalls int
	markCompletedErr   error
}

func (m *mockDonationRepo) Create(_ context.Context, d *models.Donation) error {
	m.createdCalls++
	m.created = d
	d.ID = 42
	return m.createErr
}
func (m *mockDonationRepo) FindByID(_ context.Context, _ uint) (*models.Donation, error) {
	return m.findByPidx, m.findByPidxErr
}
func (m *mockDonationRepo) FindByPidx(_ context.Context, _ string) (*models.Donation, error) {
	return m.findByPidx, m.findByPidxErr
}
func (m *mockDonationRepo) SetGatewayRef(_ context.Context, _ uint, _, _ string) error {
	m.gatewayRefCalls++
	return nil
}
func (m *mockDonationRepo) SetStatus(_ context.Context, _ uint, status string) error {
	m.setStatusCalls = append(m.setStatusCalls, status)
	return nil
}
func (m *mockDonationRepo) RecordVerification(_ context.Context, _ uint, _ string, _ float64, _ bool) error {
	m.verifyCalls++
	return nil
}
func (m *mockDonationRepo) MarkCompleted(_ context.Context, _ uint, _ string, _ time.Time) (bool, error) {
	m.markCompletedCalls++
	return m.markCompletedWon, m.markCompletedErr
}
func (m *mockDonationRepo) List(_ context.Context, _ string, _, _ int) ([]models.Donation, int64, error) {
	return nil, 0, nil
}

// ---- mock gateway ----

type mockGateway struct {
	initResp      *providers.InitiateResponse
	initErr       error
	initCalls     int
	initSeenAfter bool

	lookupResp  *providers.LookupResponse
	lookupErr   error
	lookupCalls int

	repo *mockDonationRepo
}

func (m *mockGateway) InitiatePayment(_ context.Context, _ providers.InitiateRequest) (*providers.InitiateResponse, error) {
	m.initCalls++
	if m.repo != nil && m.repo.createdCalls > 0 {
		m.initSeenAfter = true
	}
	return m.initResp, m.initErr
}
func (m *mockGateway) LookupPayment(_ context.Context, _ string) (*providers.LookupResponse, error) {
	m.lookupCalls++
	return m.lookupResp, m.lookupErr
}

// ---- fire-and-forget side effect recorders ----

type mockNotificationRepo struct{ created int }

func (m *mockNotificationRepo) Create(_ context.Context, _ *models.UserNotification) error {
	m.created++
	return nil
}
func (m *mockNotificationRepo) ListByUser(_ context.Context, _ uint, _, _ int) ([]models.UserNotification, int64, error) {
	return nil, 0, nil
}
func (m *mockNotificationRepo) MarkRead(_ context.Context, _, _ uint) error { return nil }

type mockEmailRepo struct{ enqueued int }

func (m *mockEmailRepo) Enqueue(_ context.Context, _ *models.EmailQueue) error {
	m.enqueued++
	return nil
}
func (m *mockEmailRepo) FetchPending(_ context.Context, _ int, _ time.Time) ([]models.EmailQueue, error) {
	return nil, nil
}
func (m *mockEmailRepo) MarkSending(_ context.Context, _ uint) error             { return nil }
func (m *mockEmailRepo) MarkSent(_ context.Context, _ uint, _ time.Time) error   { return nil }
func (m *mockEmailRepo) RecordFailure(_ context.Context, _ uint, _ string, _ int) error {
	return nil
}

type mockPaymentRepo struct{ created int }

func (m *mockPaymentRepo) Create(_ context.Context, _ *models.Payment) error {
	m.created++
	return nil
}
func (m *mockPaymentRepo) ListByUser(_ context.Context, _ uint) ([]models.Payment, error) {
	return nil, nil
}

// ---- harness ----

type donationFixture struct {
	repo          *mockDonationRepo
	gateway       *mockGateway
	notifications *mockNotificationRepo
	emails        *mockEmailRepo
	payments      *mockPaymentRepo
	svc           services.DonationService
}

func newDonationFixture(repo *mockDonationRepo, gateway *mockGateway) *donationFixture {
	f := &donationFixture{
		repo:          repo,
		gateway:       gateway,
		notifications: &mockNotificationRepo{},
		emails:        &mockEmailRepo{},
		payments:      &mockPaymentRepo{},
	}
	receipts := services.NewReceiptService(f.notifications, f.emails, f.payments, zap.NewNop())
	f.svc = services.NewDonationService(repo, gateway, receipts,
		"http://localhost:8080", "http://localhost:3000", zap.NewNop())
	return f
}

func TestInitiate_RejectsBelowMinimum(t *testing.T) {
	repo := &mockDonationRepo{}
	f := newDonationFixture(repo, &mockGateway{repo: repo})

	result, svcErr := f.svc.Initiate(context.Background(), services.DonationInitiateInput{
		FullName: "Sita Sharma", Email: "sita@example.com", Phone: "9841000000", Amount: 5,
	})

	assert.Nil(t, result)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, 0, repo.createdCalls)
	assert.Equal(t, 0, f.gateway.initCalls)
}

func TestInitiate_PersistsBeforeGatewayCall(t *testing.T) {
	repo := &mockDonationRepo{}
	gateway := &mockGateway{
		repo:     repo,
		initResp: &providers.InitiateResponse{Pidx: "pidx-1", PaymentURL: "https://pay"},
	}
	f := newDonationFixture(repo, gateway)

	result, svcErr := f.svc.Initiate(context.Background(), services.DonationInitiateInput{
		FullName: "Sita Sharma", Email: "sita@example.com", Phone: "9841000000", Amount: 500,
	})

	assert.Nil(t, svcErr)
	assert.True(t, gateway.initSeenAfter, "record must exist before the gateway is called")
	assert.Equal(t, models.PaymentStatusInitiated, repo.created.PaymentStatus)
	assert.Equal(t, "pidx-1", result.Pidx)
	assert.Equal(t, "https://pay", result.PaymentURL)
	assert.Equal(t, 1, repo.gatewayRefCalls)
}

func TestInitiate_GatewayFailureMarksFailed(t *testing.T) {
	repo := &mockDonationRepo{}
	gateway := &mockGateway{
		repo:    repo,
		initErr: &providers.GatewayError{StatusCode: 400, RawBody: `{"detail":"bad amount"}`},
	}
	f := newDonationFixture(repo, gateway)

	result, svcErr := f.svc.Initiate(context.Background(), services.DonationInitiateInput{
		FullName: "Sita Sharma", Email: "sita@example.com", Phone: "9841000000", Amount: 500,
	})

	assert.Nil(t, result)
	assert.Equal(t, http.StatusBadGateway, svcErr.StatusCode)
	assert.Contains(t, svcErr.Details, "bad amount")
	assert.Equal(t, []string{models.PaymentStatusFailed}, repo.setStatusCalls)
}

func TestVerify_UnknownPidxReturns404(t *testing.T) {
	repo := &mockDonationRepo{findByPidxErr: gorm.ErrRecordNotFound}
	f := newDonationFixture(repo, &mockGateway{repo: repo})

	result, svcErr := f.svc.Verify(context.Background(), "pidx-unknown")

	assert.Nil(t, result)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestVerify_CompletedDeliversReceiptOnce(t *testing.T) {
	userID := uint(7)
	repo := &mockDonationRepo{
		findByPidx: &models.Donation{
			ID: 42, UserID: &userID, FullName: "Sita Sharma",
			Email: "sita@example.com", Amount: 500,
			PaymentStatus: models.PaymentStatusPending,
		},
		markCompletedWon: true,
	}
	gateway := &mockGateway{
		repo: repo,
		lookupResp: &providers.LookupResponse{
			Status: "Completed", TransactionID: "txn-1", Fee: 2.5,
		},
	}
	f := newDonationFixture(repo, gateway)

	result, svcErr := f.svc.Verify(context.Background(), "pidx-1")

	assert.Nil(t, svcErr)
	assert.True(t, result.Success)
	assert.Equal(t, models.PaymentStatusCompleted, result.Status)
	assert.Equal(t, "txn-1", result.TransactionID)
	assert.Equal(t, 2.5, result.Fee)
	assert.Equal(t, 1, repo.verifyCalls)
	assert.Equal(t, 1, repo.markCompletedCalls)
	assert.Equal(t, 1, f.notifications.created)
	assert.Equal(t, 1, f.emails.enqueued)
	assert.Equal(t, 1, f.payments.created)
}

func TestVerify_LosingTheRaceSkipsSideEffects(t *testing.T) {
	repo := &mockDonationRepo{
		findByPidx: &models.Donation{
			ID: 42, FullName: "Sita Sharma", Email: "sita@example.com", Amount: 500,
			PaymentStatus: models.PaymentStatusPending,
		},
		markCompletedWon: false,
	}
	gateway := &mockGateway{
		repo:       repo,
		lookupResp: &providers.LookupResponse{Status: "Completed", TransactionID: "txn-1"},
	}
	f := newDonationFixture(repo, gateway)

	result, svcErr := f.svc.Verify(context.Background(), "pidx-1")

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusCompleted, result.Status)
	assert.Equal(t, 0, f.notifications.created)
	assert.Equal(t, 0, f.emails.enqueued)
	assert.Equal(t, 0, f.payments.created)
}

func TestVerify_AlreadyCompletedSkipsGateway(t *testing.T) {
	completedAt := time.Now()
	repo := &mockDonationRepo{
		findByPidx: &models.Donation{
			ID: 42, Amount: 500, TransactionID: "txn-1", Fee: 2.5,
			PaymentStatus: models.PaymentStatusCompleted,
			CompletedAt:   &completedAt,
		},
	}
	gateway := &mockGateway{repo: repo}
	f := newDonationFixture(repo, gateway)

	result, svcErr := f.svc.Verify(context.Background(), "pidx-1")

	assert.Nil(t, svcErr)
	assert.True(t, result.Success)
	assert.Equal(t, models.PaymentStatusCompleted, result.Status)
	assert.Equal(t, "txn-1", result.TransactionID)
	assert.Equal(t, 0, gateway.lookupCalls)
	assert.Equal(t, 0, repo.verifyCalls)
	assert.Equal(t, 0, f.emails.enqueued)
}

func TestVerify_LookupFailureLeavesStateUntouched(t *testing.T) {
	repo := &mockDonationRepo{
		findByPidx: &models.Donation{ID: 42, Amount: 500, PaymentStatus: models.PaymentStatusPending},
	}
	gateway := &mockGateway{
		repo:      repo,
		lookupErr: &providers.GatewayError{StatusCode: 503, RawBody: "unavailable"},
	}
	f := newDonationFixture(repo, gateway)

	result, svcErr := f.svc.Verify(context.Background(), "pidx-1")

	assert.Nil(t, result)
	assert.Equal(t, http.StatusBadGateway, svcErr.StatusCode)
	assert.Equal(t, 0, repo.verifyCalls)
	assert.Empty(t, repo.setStatusCalls)
	assert.Equal(t, 0, repo.markCompletedCalls)
}

func TestVerify_UserCanceledMapsToCanceled(t *testing.T) {
	repo := &mockDonationRepo{
		findByPidx: &models.Donation{ID: 42, Amount: 500, PaymentStatus: models.PaymentStatusPending},
	}
	gateway := &mockGateway{
		repo:       repo,
		lookupResp: &providers.LookupResponse{Status: "User canceled"},
	}
	f := newDonationFixture(repo, gateway)

	result, svcErr := f.svc.Verify(context.Background(), "pidx-1")

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusCanceled, result.Status)
	assert.Equal(t, []string{models.PaymentStatusCanceled}, repo.setStatusCalls)
	assert.Equal(t, 0, repo.markCompletedCalls)
	assert.Equal(t, 0, f.emails.enqueued)
}
