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
)

type mockApplicationRepo struct {
	created *models.Application

	findForUser    *models.Application
	findForUserErr error

	findByPidx    *models.Application
	findByPidxErr error

	statusCalls      []string
	verifyCalls      int
	markCompletedWon bool
}

func (m *mockApplicationRepo) Create(_ context.Context, app *models.Application) error {
	m.created = app
	app.ID = 17
	return nil
}
func (m *mockApplicationRepo) FindByID(_ context.Context, _ uint) (*models.Application, error) {
	return m.findForUser, m.findForUserErr
}
func (m *mockApplicationRepo) FindByIDForUser(_ context.Context, _, _ uint) (*models.Application, error) {
	return m.findForUser, m.findForUserErr
}
func (m *mockApplicationRepo) FindByPidx(_ context.Context, _ string) (*models.Application, error) {
	return m.findByPidx, m.findByPidxErr
}
func (m *mockApplicationRepo) ListByUser(_ context.Context, _ uint) ([]models.Application, error) {
	return nil, nil
}
func (m *mockApplicationRepo) RequirePayment(_ context.Context, _ uint, _ float64) error { return nil }
func (m *mockApplicationRepo) SetGatewayRef(_ context.Context, _ uint, _ string) error   { return nil }
func (m *mockApplicationRepo) SetPaymentStatus(_ context.Context, _ uint, status string) error {
	m.statusCalls = append(m.statusCalls, status)
	return nil
}
func (m *mockApplicationRepo) RecordVerification(_ context.Context, _ uint, _ string, _ float64, _ bool) error {
	m.verifyCalls++
	return nil
}
func (m *mockApplicationRepo) MarkCompleted(_ context.Context, _ uint, _ string, _ time.Time) (bool, error) {
	return m.markCompletedWon, nil
}

type stubGateway struct {
	initResp   *providers.InitiateResponse
	initErr    error
	lastInit   providers.InitiateRequest
	lookupResp *providers.LookupResponse
	lookupErr  error

	repo           *mockApplicationRepo
	statusesAtInit []string
}

func (g *stubGateway) InitiatePayment(_ context.Context, req providers.InitiateRequest) (*providers.InitiateResponse, error) {
	g.lastInit = req
	if g.repo != nil {
		g.statusesAtInit = append([]string(nil), g.repo.statusCalls...)
	}
	return g.initResp, g.initErr
}
func (g *stubGateway) LookupPayment(_ context.Context, _ string) (*providers.LookupResponse, error) {
	return g.lookupResp, g.lookupErr
}

func newApplicationService(repo *mockApplicationRepo, gateway *stubGateway) services.ApplicationService {
	receipts := services.NewReceiptService(&mockNotificationRepo{}, &mockEmailRepo{}, &mockPaymentRepo{}, zap.NewNop())
	return services.NewApplicationService(repo, gateway, receipts,
		"http://localhost:8080", "http://localhost:3000", zap.NewNop())
}

func TestSubmit_MemberApplicationCarriesFixedFee(t *testing.T) {
	repo := &mockApplicationRepo{}
	svc := newApplicationService(repo, &stubGateway{})

	app, svcErr := svc.Submit(context.Background(), services.ApplicationSubmitInput{
		UserID: 7, FullName: "Ram Thapa", Email: "ram@example.com",
		Phone: "9841000000", ApplicationType: models.ApplicationTypeMember,
	})

	assert.Nil(t, svcErr)
	assert.True(t, app.PaymentRequired)
	assert.Equal(t, models.MembershipFeeAmount, app.PaymentAmount)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
}

func TestSubmit_VolunteerNeedsNoPayment(t *testing.T) {
	repo := &mockApplicationRepo{}
	svc := newApplicationService(repo, &stubGateway{})

	app, svcErr := svc.Submit(context.Background(), services.ApplicationSubmitInput{
		UserID: 7, FullName: "Ram Thapa", Email: "ram@example.com",
		Phone: "9841000000", ApplicationType: models.ApplicationTypeVolunteer,
	})

	assert.Nil(t, svcErr)
	assert.False(t, app.PaymentRequired)
	assert.Zero(t, app.PaymentAmount)
}

func TestSubmit_RejectsUnknownType(t *testing.T) {
	svc := newApplicationService(&mockApplicationRepo{}, &stubGateway{})

	app, svcErr := svc.Submit(context.Background(), services.ApplicationSubmitInput{
		UserID: 7, ApplicationType: "intern",
	})

	assert.Nil(t, app)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}

func TestInitiatePayment_UsesStoredFeeAmount(t *testing.T) {
	repo := &mockApplicationRepo{
		findForUser: &models.Application{
			ID: 17, UserID: 7, FullName: "Ram Thapa", Email: "ram@example.com",
			ApplicationType: models.ApplicationTypeMember,
			PaymentRequired: true, PaymentAmount: models.MembershipFeeAmount,
		},
	}
	gateway := &stubGateway{
		initResp: &providers.InitiateResponse{Pidx: "pidx-app", PaymentURL: "https://pay"},
	}
	svc := newApplicationService(repo, gateway)

	result, svcErr := svc.InitiatePayment(context.Background(), 7, 17)

	assert.Nil(t, svcErr)
	assert.Equal(t, "pidx-app", result.Pidx)
	assert.Equal(t, models.MembershipFeeAmount, gateway.lastInit.Amount)
}

func TestInitiatePayment_ResetsStatusBeforeGatewayCall(t *testing.T) {
	repo := &mockApplicationRepo{
		findForUser: &models.Application{
			ID: 17, UserID: 7, FullName: "Ram Thapa", Email: "ram@example.com",
			PaymentRequired: true, PaymentAmount: models.MembershipFeeAmount,
			PaymentStatus: models.PaymentStatusFailed,
		},
	}
	gateway := &stubGateway{
		repo:     repo,
		initResp: &providers.InitiateResponse{Pidx: "pidx-app", PaymentURL: "https://pay"},
	}
	svc := newApplicationService(repo, gateway)

	_, svcErr := svc.InitiatePayment(context.Background(), 7, 17)

	assert.Nil(t, svcErr)
	assert.Equal(t, []string{models.PaymentStatusInitiated}, gateway.statusesAtInit,
		"record must be back in initiated before the gateway is contacted")
}

func TestInitiatePayment_RejectsAlreadyPaid(t *testing.T) {
	paid := time.Now()
	repo := &mockApplicationRepo{
		findForUser: &models.Application{
			ID: 17, UserID: 7, PaymentRequired: true,
			PaymentAmount: models.MembershipFeeAmount, CompletedAt: &paid,
		},
	}
	gateway := &stubGateway{}
	svc := newApplicationService(repo, gateway)

	result, svcErr := svc.InitiatePayment(context.Background(), 7, 17)

	assert.Nil(t, result)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Empty(t, gateway.lastInit.PurchaseOrderID)
}

func TestApplicationVerify_CompletedTransition(t *testing.T) {
	repo := &mockApplicationRepo{
		findByPidx: &models.Application{
			ID: 17, UserID: 7, FullName: "Ram Thapa", Email: "ram@example.com",
			PaymentAmount: models.MembershipFeeAmount,
			PaymentStatus: models.PaymentStatusPending,
		},
		markCompletedWon: true,
	}
	gateway := &stubGateway{
		lookupResp: &providers.LookupResponse{Status: "Completed", TransactionID: "txn-9", Fee: 10},
	}
	svc := newApplicationService(repo, gateway)

	result, svcErr := svc.Verify(context.Background(), "pidx-app")

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusCompleted, result.Status)
	assert.Equal(t, "txn-9", result.TransactionID)
	assert.Equal(t, 1, repo.verifyCalls)
	assert.Empty(t, repo.statusCalls, "completed goes through the guarded update, not SetPaymentStatus")
}
