package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"laostream/internal/resilience/circuitbreaker"
	"laostream/pkg/config"
)

// BCELProvider integrates the BCEL OnePay hosted checkout. Payment creation
// registers the transaction with the gateway and returns a redirect URL;
// settlement arrives asynchronously via signed webhook.
//
// Gateway calls run through a circuit breaker and a token-bucket throttle.
// When the circuit is open the provider reports itself unavailable, which
// makes the registry route new payments to manual transfer instead.
type BCELProvider struct {
	cfg     config.BCELConfig
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewBCELProvider creates a BCEL provider. The provider is constructed even
// when credentials are absent; it just reports itself unavailable.
func NewBCELProvider(cfg config.BCELConfig) *BCELProvider {
	return &BCELProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: circuitbreaker.New(circuitbreaker.BCELGatewayConfig()),
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

func (p *BCELProvider) Name() string        { return ProviderBCEL }
func (p *BCELProvider) DisplayName() string { return "BCEL OnePay" }

// Available is true when credentials are configured and the circuit is
// closed.
func (p *BCELProvider) Available() bool {
	return p.cfg.Configured() && !p.breaker.IsOpen()
}

// CanHandle is true for positive amounts when credentials are configured.
func (p *BCELProvider) CanHandle(amountLAK int64) bool {
	return amountLAK > 0 && p.cfg.Configured()
}

type bcelCreateRequest struct {
	MerchantID    string `json:"merchant_id"`
	TransactionID string `json:"transaction_id"`
	AmountLAK     int64  `json:"amount_lak"`
	Description   string `json:"description,omitempty"`
	ReturnURL     string `json:"return_url,omitempty"`
	Signature     string `json:"signature"`
}

type bcelCreateResponse struct {
	TransactionID string `json:"transaction_id"`
	PaymentURL    string `json:"payment_url"`
	Message       string `json:"message,omitempty"`
}

type bcelStatusResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	PaidAt        string `json:"paid_at,omitempty"`
	Message       string `json:"message,omitempty"`
}

// bcelWebhookPayload is the callback body BCEL posts on settlement.
type bcelWebhookPayload struct {
	MerchantID    string `json:"merchant_id"`
	TransactionID string `json:"transaction_id"`
	AmountLAK     int64  `json:"amount_lak"`
	Status        string `json:"status"`
	PaidAt        string `json:"paid_at,omitempty"`
	Message       string `json:"message,omitempty"`
	Signature     string `json:"signature"`
}

// CreatePayment registers the transaction with the gateway and returns a
// pending intent carrying the hosted checkout URL.
func (p *BCELProvider) CreatePayment(ctx context.Context, params CreateParams) (*Intent, error) {
	if !p.cfg.Configured() {
		return nil, fmt.Errorf("CreatePayment: %w", ErrGatewayUnavailable)
	}

	reqBody := bcelCreateRequest{
		MerchantID:    p.cfg.MerchantID,
		TransactionID: params.TransactionID,
		AmountLAK:     params.AmountLAK,
		Description:   params.Description,
		ReturnURL:     params.ReturnURL,
		Signature:     p.sign(params.TransactionID, strconv.FormatInt(params.AmountLAK, 10)),
	}

	var resp bcelCreateResponse
	err := p.do(ctx, http.MethodPost, p.cfg.Endpoint+"/payments", reqBody, &resp)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	slog.Info("bcel payment created",
		slog.String("transaction_id", params.TransactionID),
		slog.Int64("amount_lak", params.AmountLAK))

	return &Intent{
		TransactionID: params.TransactionID,
		Status:        StatusPending,
		RedirectURL:   resp.PaymentURL,
	}, nil
}

// PaymentStatus queries the gateway for the current transaction status.
func (p *BCELProvider) PaymentStatus(ctx context.Context, transactionID string) (*StatusResult, error) {
	if !p.cfg.Configured() {
		return nil, fmt.Errorf("PaymentStatus: %w", ErrGatewayUnavailable)
	}

	var resp bcelStatusResponse
	url := p.cfg.Endpoint + "/payments/" + transactionID + "?merchant_id=" + p.cfg.MerchantID
	if err := p.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("PaymentStatus: %w", err)
	}

	status, err := mapGatewayStatus(resp.Status)
	if err != nil {
		return nil, fmt.Errorf("PaymentStatus: %w", err)
	}

	result := &StatusResult{
		TransactionID: resp.TransactionID,
		Status:        status,
		FailureReason: resp.Message,
	}
	if resp.PaidAt != "" {
		paidAt, err := time.Parse(time.RFC3339, resp.PaidAt)
		if err != nil {
			return nil, fmt.Errorf("PaymentStatus: parse paid_at: %w", err)
		}
		result.PaidAt = &paidAt
	}
	return result, nil
}

// HandleWebhook verifies the callback signature and maps the payload to a
// terminal status. It performs no network calls; replay protection is the
// caller's responsibility via idempotent persistence.
func (p *BCELProvider) HandleWebhook(_ context.Context, payload []byte) (*WebhookResult, error) {
	var body bcelWebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("HandleWebhook: malformed payload: %w", err)
	}
	if body.TransactionID == "" {
		return nil, fmt.Errorf("HandleWebhook: malformed payload: missing transaction_id")
	}

	expected := p.sign(body.TransactionID, strconv.FormatInt(body.AmountLAK, 10), body.Status)
	if !hmac.Equal([]byte(expected), []byte(body.Signature)) {
		slog.Warn("bcel webhook signature mismatch",
			slog.String("transaction_id", body.TransactionID))
		return nil, fmt.Errorf("HandleWebhook: %w", ErrInvalidSignature)
	}

	status, err := mapGatewayStatus(body.Status)
	if err != nil {
		return nil, fmt.Errorf("HandleWebhook: %w", err)
	}

	result := &WebhookResult{
		TransactionID: body.TransactionID,
		Status:        status,
	}
	if status == StatusFailed {
		result.FailureReason = body.Message
		if result.FailureReason == "" {
			result.FailureReason = "payment declined by gateway"
		}
	}
	if body.PaidAt != "" {
		paidAt, err := time.Parse(time.RFC3339, body.PaidAt)
		if err != nil {
			return nil, fmt.Errorf("HandleWebhook: parse paid_at: %w", err)
		}
		result.PaidAt = &paidAt
	}
	return result, nil
}

// sign computes the hex HMAC-SHA256 over merchant_id plus the given parts,
// pipe-separated, matching the gateway's canonical string.
func (p *BCELProvider) sign(parts ...string) string {
	mac := hmac.New(sha256.New, []byte(p.cfg.SecretKey))
	mac.Write([]byte(p.cfg.MerchantID))
	for _, part := range parts {
		mac.Write([]byte("|"))
		mac.Write([]byte(part))
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// do runs one gateway request through the throttle and circuit breaker,
// decoding the JSON response into out.
func (p *BCELProvider) do(ctx context.Context, method, url string, in, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("gateway throttle: %w", err)
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		var reqBody io.Reader
		if in != nil {
			data, err := json.Marshal(in)
			if err != nil {
				return nil, fmt.Errorf("encode request: %w", err)
			}
			reqBody = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("gateway request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, body)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrGatewayUnavailable, err)
	}
	return err
}

// mapGatewayStatus converts the gateway's status string to the internal
// enum.
func mapGatewayStatus(s string) (Status, error) {
	switch s {
	case "SUCCESS":
		return StatusSuccess, nil
	case "FAILED":
		return StatusFailed, nil
	case "PENDING":
		return StatusPending, nil
	default:
		return "", fmt.Errorf("unknown gateway status %q", s)
	}
}
