package payment

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/sedifex/sedifex-backend/internal/callable"
	"github.com/sedifex/sedifex-backend/internal/modules/auth"
	"github.com/sedifex/sedifex-backend/internal/modules/billing"
)

// Activator marks a store's subscription active once a charge confirms.
// Implemented by the store module.
type Activator interface {
	ActivateSubscription(ctx context.Context, storeID string, planID billing.PlanID) error
}

// Service defines checkout business logic.
type Service interface {
	// StartCheckout initializes a hosted checkout for a subscription plan
	// and returns the transaction with its authorization URL.
	StartCheckout(ctx context.Context, caller *auth.Context, req CheckoutRequest) (Transaction, error)
	// ConfirmCheckout verifies the transaction with the provider and, on
	// success, activates the store's subscription.
	ConfirmCheckout(ctx context.Context, caller *auth.Context, reference string) (Transaction, error)
	ListByStore(ctx context.Context, caller *auth.Context, storeID string) ([]Transaction, error)
}

// CheckoutRequest is the checkout initiation payload.
type CheckoutRequest struct {
	StoreID string `json:"store_id"`
	PlanID  string `json:"plan_id"`
	Email   string `json:"email"`
}

// CheckoutFailedMessage is the stable user-facing message for provider and
// transport failures. The raw error stays in the logs.
const CheckoutFailedMessage = "We could not start the payment. Please try again in a moment."

type service struct {
	repo      Repository
	gateway   Gateway
	activator Activator
	config    billing.Config
}

// NewService wires the payment service. activator may be nil when
// subscription activation is handled out of band (webhooks).
func NewService(repo Repository, gateway Gateway, activator Activator, config billing.Config) Service {
	return &service{repo: repo, gateway: gateway, activator: activator, config: config}
}

func (s *service) StartCheckout(ctx context.Context, caller *auth.Context, req CheckoutRequest) (Transaction, error) {
	if err := auth.RequireOwner(caller); err != nil {
		return Transaction{}, err
	}
	if req.StoreID == "" {
		return Transaction{}, callable.New(callable.CodeInvalidArgument, "A store id is required")
	}
	planID, ok := billing.NormalizePlanID(req.PlanID)
	if !ok {
		return Transaction{}, callable.New(callable.CodeInvalidArgument, "Choose a valid Sedifex plan.")
	}
	plan, _ := billing.PlanByID(planID)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		email, _ = caller.Token["email"].(string)
	}
	if !strings.Contains(email, "@") {
		return Transaction{}, callable.New(callable.CodeInvalidArgument, "A billing email is required")
	}

	tx := Transaction{
		Reference:      "sdfx_" + uuid.NewString(),
		StoreID:        req.StoreID,
		PlanID:         planID,
		Email:          email,
		AmountSubunits: int64(plan.MonthlyGHS) * 100, // GHS -> pesewas
		Currency:       "GHS",
		Status:         StatusPending,
		InitiatedBy:    caller.UID,
	}
	resp, err := s.gateway.Initialize(ctx, InitializeRequest{
		Email:          tx.Email,
		AmountSubunits: tx.AmountSubunits,
		Currency:       tx.Currency,
		PlanCode:       s.config.PlanCodes[planID],
		Reference:      tx.Reference,
		Metadata: map[string]interface{}{
			"storeId": tx.StoreID,
			"planId":  string(tx.PlanID),
		},
	})
	if err != nil {
		log.Printf("payment: initialize checkout for %s: %v", req.StoreID, err)
		return Transaction{}, callable.New(callable.CodeUnavailable, CheckoutFailedMessage)
	}
	tx.AuthorizationURL = resp.AuthorizationURL
	if err := s.repo.Create(ctx, tx); err != nil {
		return Transaction{}, fmt.Errorf("persist checkout %s: %w", tx.Reference, err)
	}
	return tx, nil
}

func (s *service) ConfirmCheckout(ctx context.Context, caller *auth.Context, reference string) (Transaction, error) {
	if err := auth.RequireOwner(caller); err != nil {
		return Transaction{}, err
	}
	tx, ok, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return Transaction{}, fmt.Errorf("load checkout %s: %w", reference, err)
	}
	if !ok {
		return Transaction{}, callable.New(callable.CodeNotFound, "Payment not found")
	}
	if tx.Status == StatusSuccess {
		return tx, nil
	}

	resp, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		log.Printf("payment: verify %s: %v", reference, err)
		return Transaction{}, callable.New(callable.CodeUnavailable,
			"We could not confirm the payment yet. Please try again in a moment.")
	}
	tx.Status = resp.Status
	tx.GatewayMessage = resp.GatewayMessage
	if err := s.repo.UpdateStatus(ctx, reference, resp.Status, resp.GatewayMessage); err != nil {
		return Transaction{}, fmt.Errorf("record status for %s: %w", reference, err)
	}
	if tx.Status == StatusSuccess && s.activator != nil {
		if err := s.activator.ActivateSubscription(ctx, tx.StoreID, tx.PlanID); err != nil {
			return Transaction{}, fmt.Errorf("activate subscription for %s: %w", tx.StoreID, err)
		}
	}
	return tx, nil
}

func (s *service) ListByStore(ctx context.Context, caller *auth.Context, storeID string) ([]Transaction, error) {
	if err := auth.RequireOwner(caller); err != nil {
		return nil, err
	}
	transactions, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list checkouts for %s: %w", storeID, err)
	}
	return transactions, nil
}
