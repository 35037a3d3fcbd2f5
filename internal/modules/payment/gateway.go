package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Gateway is the provider-agnostic interface a checkout adapter implements.
type Gateway interface {
	// Initialize starts a hosted checkout and returns the provider
	// reference plus the URL the customer completes payment at.
	Initialize(ctx context.Context, req InitializeRequest) (*GatewayResponse, error)
	// Verify queries the provider for the current status of a transaction.
	Verify(ctx context.Context, reference string) (*GatewayResponse, error)
}

// InitializeRequest is the provider-facing slice of a checkout.
type InitializeRequest struct {
	Email          string
	AmountSubunits int64 // pesewas for GHS
	Currency       string
	PlanCode       string
	Reference      string
	Metadata       map[string]interface{}
}

// GatewayResponse is the provider's view of a transaction.
type GatewayResponse struct {
	Reference        string
	AuthorizationURL string
	Status           string // pending | success | failed | abandoned
	GatewayMessage   string
}

// ── Paystack adapter ──────────────────────────────────────────────────────────

const paystackBaseURL = "https://api.paystack.co"

type paystackGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewPaystackGateway builds the production gateway. baseURL "" uses the
// real Paystack API; tests point it at a local server.
func NewPaystackGateway(secretKey, baseURL string) Gateway {
	if baseURL == "" {
		baseURL = paystackBaseURL
	}
	return &paystackGateway{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackTransaction struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Status           string `json:"status"`
	GatewayResponse  string `json:"gateway_response"`
}

func (g *paystackGateway) Initialize(ctx context.Context, req InitializeRequest) (*GatewayResponse, error) {
	body := map[string]interface{}{
		"email":     req.Email,
		"amount":    req.AmountSubunits,
		"currency":  req.Currency,
		"reference": req.Reference,
	}
	if req.PlanCode != "" {
		body["plan"] = req.PlanCode
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}
	data, err := g.post(ctx, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}
	var tx paystackTransaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("decode paystack response: %w", err)
	}
	return &GatewayResponse{
		Reference:        orDefault(tx.Reference, req.Reference),
		AuthorizationURL: tx.AuthorizationURL,
		Status:           StatusPending,
	}, nil
}

func (g *paystackGateway) Verify(ctx context.Context, reference string) (*GatewayResponse, error) {
	data, err := g.get(ctx, "/transaction/verify/"+reference)
	if err != nil {
		return nil, err
	}
	var tx paystackTransaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("decode paystack response: %w", err)
	}
	return &GatewayResponse{
		Reference:      orDefault(tx.Reference, reference),
		Status:         normalizeGatewayStatus(tx.Status),
		GatewayMessage: tx.GatewayResponse,
	}, nil
}

func (g *paystackGateway) post(ctx context.Context, path string, body map[string]interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return g.send(req)
}

func (g *paystackGateway) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return g.send(req)
}

func (g *paystackGateway) send(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read paystack response: %w", err)
	}
	var envelope paystackEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("paystack returned %d: %s", resp.StatusCode, raw)
	}
	if resp.StatusCode >= 400 || !envelope.Status {
		return nil, fmt.Errorf("paystack returned %d: %s", resp.StatusCode, envelope.Message)
	}
	return envelope.Data, nil
}

func normalizeGatewayStatus(status string) string {
	switch status {
	case "success":
		return StatusSuccess
	case "failed", "abandoned", "reversed":
		return StatusFailed
	default:
		return StatusPending
	}
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
