package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/docstore"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
	"github.com/sedifex/sedifex-backend/internal/modules/billing"
)

func ownerCaller() *auth.Context {
	return &auth.Context{UID: "u-1", Token: map[string]interface{}{
		"role":  "owner",
		"email": "owner@example.com",
	}}
}

type fakeGateway struct {
	initErr   error
	verifyErr error
	status    string
}

func (g *fakeGateway) Initialize(_ context.Context, req InitializeRequest) (*GatewayResponse, error) {
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &GatewayResponse{
		Reference:        req.Reference,
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		Status:           StatusPending,
	}, nil
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*GatewayResponse, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &GatewayResponse{Reference: reference, Status: g.status}, nil
}

type fakeActivator struct {
	storeID string
	planID  billing.PlanID
}

func (a *fakeActivator) ActivateSubscription(_ context.Context, storeID string, planID billing.PlanID) error {
	a.storeID = storeID
	a.planID = planID
	return nil
}

func TestStartCheckoutChargesPlanPriceInSubunits(t *testing.T) {
	repo := NewDocstoreRepository(docstore.NewMemoryStore())
	svc := NewService(repo, &fakeGateway{}, nil, billing.DefaultConfig())

	tx, err := svc.StartCheckout(context.Background(), ownerCaller(), CheckoutRequest{
		StoreID: "store-1", PlanID: "Pro",
	})
	require.NoError(t, err)
	assert.Equal(t, billing.PlanPro, tx.PlanID)
	assert.Equal(t, int64(24900), tx.AmountSubunits)
	assert.Equal(t, "GHS", tx.Currency)
	assert.Equal(t, "owner@example.com", tx.Email)
	assert.NotEmpty(t, tx.AuthorizationURL)

	stored, ok, err := repo.GetByReference(context.Background(), tx.Reference)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestStartCheckoutRejectsUnknownPlan(t *testing.T) {
	svc := NewService(NewDocstoreRepository(docstore.NewMemoryStore()), &fakeGateway{}, nil, billing.DefaultConfig())

	_, err := svc.StartCheckout(context.Background(), ownerCaller(), CheckoutRequest{
		StoreID: "store-1", PlanID: "platinum",
	})
	require.Error(t, err)
	var cerr *callable.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, callable.CodeInvalidArgument, cerr.Code)
}

func TestStartCheckoutSurfacesUserSafeError(t *testing.T) {
	svc := NewService(NewDocstoreRepository(docstore.NewMemoryStore()),
		&fakeGateway{initErr: errors.New("dial tcp: connection refused")}, nil, billing.DefaultConfig())

	_, err := svc.StartCheckout(context.Background(), ownerCaller(), CheckoutRequest{
		StoreID: "store-1", PlanID: "starter",
	})
	require.Error(t, err)
	var cerr *callable.Error
	require.ErrorAs(t, err, &cerr)
	// the transport detail never reaches the caller
	assert.Equal(t, CheckoutFailedMessage, cerr.Message)
}

func TestConfirmCheckoutActivatesSubscription(t *testing.T) {
	repo := NewDocstoreRepository(docstore.NewMemoryStore())
	activator := &fakeActivator{}
	svc := NewService(repo, &fakeGateway{status: StatusSuccess}, activator, billing.DefaultConfig())

	tx, err := svc.StartCheckout(context.Background(), ownerCaller(), CheckoutRequest{
		StoreID: "store-1", PlanID: "starter",
	})
	require.NoError(t, err)

	confirmed, err := svc.ConfirmCheckout(context.Background(), ownerCaller(), tx.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, confirmed.Status)
	assert.Equal(t, "store-1", activator.storeID)
	assert.Equal(t, billing.PlanStarter, activator.planID)
}

func TestConfirmCheckoutRequiresOwner(t *testing.T) {
	svc := NewService(NewDocstoreRepository(docstore.NewMemoryStore()), &fakeGateway{}, nil, billing.DefaultConfig())
	staff := &auth.Context{UID: "u-2", Token: map[string]interface{}{"role": "staff"}}

	_, err := svc.ConfirmCheckout(context.Background(), staff, "ref-1")
	require.Error(t, err)
}

func TestPaystackGatewayInitialize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{
			"authorization_url":"https://checkout.paystack.com/xyz","access_code":"xyz","reference":"ref-1"}}`))
	}))
	defer server.Close()

	gateway := NewPaystackGateway("sk_test_123", server.URL)
	resp, err := gateway.Initialize(context.Background(), InitializeRequest{
		Email: "owner@example.com", AmountSubunits: 9900, Currency: "GHS", Reference: "ref-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/xyz", resp.AuthorizationURL)
	assert.Equal(t, "ref-1", resp.Reference)
}

func TestPaystackGatewayVerifyMapsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{
			"reference":"ref-1","status":"abandoned","gateway_response":"The transaction was not completed"}}`))
	}))
	defer server.Close()

	gateway := NewPaystackGateway("sk_test_123", server.URL)
	resp, err := gateway.Verify(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, resp.Status)
}

func TestPaystackGatewayErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer server.Close()

	gateway := NewPaystackGateway("sk_bad", server.URL)
	_, err := gateway.Verify(context.Background(), "ref-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}
