package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	paymentdomain "github.com/citylights/billing/internal/payment/domain"
)

type checkoutSession struct {
	ID                 string   `json:"id"`
	URL                string   `json:"url"`
	PaymentStatus      string   `json:"payment_status"`
	AmountTotal        int64    `json:"amount_total"`
	Currency           string   `json:"currency"`
	PaymentMethodTypes []string `json:"payment_method_types"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Adapter drives Stripe Checkout over its REST API. Amounts are converted
// to cents on the wire.
type Adapter struct {
	apiKey      string
	frontendURL string
	baseURL     string
	client      *http.Client
}

func New(apiKey, frontendURL string) *Adapter {
	return &Adapter{
		apiKey:      strings.TrimSpace(apiKey),
		frontendURL: strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
		baseURL:     "https://api.stripe.com",
		client:      &http.Client{Timeout: 12 * time.Second},
	}
}

// NewWithBaseURL points the adapter at a non-default API host. Tests use
// this against a local server.
func NewWithBaseURL(apiKey, frontendURL, baseURL string) *Adapter {
	a := New(apiKey, frontendURL)
	a.baseURL = strings.TrimRight(baseURL, "/")
	return a
}

func (a *Adapter) Enabled() bool {
	return a.apiKey != ""
}

func (a *Adapter) CreateSession(ctx context.Context, req paymentdomain.CheckoutRequest) (paymentdomain.CheckoutSession, error) {
	cents := int64(math.Round(req.Amount * 100))

	values := url.Values{}
	values.Set("mode", "payment")
	values.Set("payment_method_types[]", "card")
	values.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	values.Set("line_items[0][price_data][product_data][name]", req.Description)
	values.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(cents, 10))
	values.Set("line_items[0][quantity]", "1")
	values.Set("success_url", a.frontendURL+"/dues?success=true&due_id="+req.DueID+"&session_id={CHECKOUT_SESSION_ID}")
	values.Set("cancel_url", a.frontendURL+"/dues?canceled=true&due_id="+req.DueID)
	values.Set("metadata[due_id]", req.DueID)
	values.Set("metadata[resident_id]", req.ResidentID)
	values.Set("metadata[period]", req.Period)
	values.Set("metadata[type]", "monthly_due")

	session, err := a.doRequest(ctx, http.MethodPost, "/v1/checkout/sessions", values, "due:"+req.DueID)
	if err != nil {
		return paymentdomain.CheckoutSession{}, err
	}
	return toDomain(session), nil
}

func (a *Adapter) GetSession(ctx context.Context, sessionID string) (paymentdomain.CheckoutSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return paymentdomain.CheckoutSession{}, paymentdomain.ErrInvalidSession
	}
	session, err := a.doRequest(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil, "")
	if err != nil {
		return paymentdomain.CheckoutSession{}, err
	}
	return toDomain(session), nil
}

func (a *Adapter) doRequest(
	ctx context.Context,
	method string,
	path string,
	values url.Values,
	idempotencyKey string,
) (checkoutSession, error) {
	if a.apiKey == "" {
		return checkoutSession{}, paymentdomain.ErrProviderDisabled
	}

	var bodyReader *strings.Reader
	if values != nil {
		bodyReader = strings.NewReader(values.Encode())
	} else {
		bodyReader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, bodyReader)
	if err != nil {
		return checkoutSession{}, err
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return checkoutSession{}, fmt.Errorf("%w: %v", paymentdomain.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return checkoutSession{}, paymentdomain.ErrSessionNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr stripeErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil || stripeErr.Error.Message == "" {
			return checkoutSession{}, fmt.Errorf("%w: status %d", paymentdomain.ErrProvider, resp.StatusCode)
		}
		return checkoutSession{}, fmt.Errorf("%w: %s", paymentdomain.ErrProvider, stripeErr.Error.Message)
	}

	var session checkoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return checkoutSession{}, fmt.Errorf("%w: decode: %v", paymentdomain.ErrProvider, err)
	}
	return session, nil
}

func toDomain(s checkoutSession) paymentdomain.CheckoutSession {
	method := "card"
	if len(s.PaymentMethodTypes) > 0 {
		method = s.PaymentMethodTypes[0]
	}
	return paymentdomain.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: s.PaymentStatus,
		AmountTotal:   float64(s.AmountTotal) / 100,
		Currency:      s.Currency,
		PaymentMethod: method,
	}
}
