package stripe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	paymentdomain "github.com/citylights/billing/internal/payment/domain"
)

func TestEnabled(t *testing.T) {
	if New("", "https://app.example.com").Enabled() {
		t.Fatal("adapter without a key must be disabled")
	}
	if !New("sk_test_123", "https://app.example.com").Enabled() {
		t.Fatal("adapter with a key must be enabled")
	}
}

func TestCreateSessionRequestShape(t *testing.T) {
	var (
		gotPath   string
		gotAuth   string
		gotIdem   string
		gotValues url.Values
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("Idempotency-Key")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotValues = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cs_test_abc",
			"url": "https://checkout.stripe.com/c/pay/cs_test_abc",
			"payment_status": "unpaid",
			"amount_total": 18550,
			"currency": "usd",
			"payment_method_types": ["card"]
		}`))
	}))
	defer server.Close()

	adapter := NewWithBaseURL("sk_test_123", "https://app.example.com/", server.URL)
	session, err := adapter.CreateSession(context.Background(), paymentdomain.CheckoutRequest{
		DueID:       "1234",
		ResidentID:  "res-1",
		Description: "Monthly dues 03/2025 for Maria Quispe",
		Period:      "03/2025",
		Amount:      185.50,
		Currency:    "USD",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if gotPath != "/v1/checkout/sessions" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer sk_test_123" {
		t.Fatalf("unexpected authorization %q", gotAuth)
	}
	if gotIdem != "due:1234" {
		t.Fatalf("unexpected idempotency key %q", gotIdem)
	}
	if got := gotValues.Get("line_items[0][price_data][unit_amount]"); got != "18550" {
		t.Fatalf("expected amount in cents 18550, got %q", got)
	}
	if got := gotValues.Get("line_items[0][price_data][currency]"); got != "usd" {
		t.Fatalf("expected lowercase currency, got %q", got)
	}
	if got := gotValues.Get("metadata[due_id]"); got != "1234" {
		t.Fatalf("unexpected metadata due_id %q", got)
	}
	success := gotValues.Get("success_url")
	if !strings.Contains(success, "{CHECKOUT_SESSION_ID}") || !strings.Contains(success, "due_id=1234") {
		t.Fatalf("unexpected success_url %q", success)
	}
	if !strings.HasPrefix(success, "https://app.example.com/dues") {
		t.Fatalf("success_url must not carry the trailing slash: %q", success)
	}

	if session.ID != "cs_test_abc" {
		t.Fatalf("unexpected session id %q", session.ID)
	}
	if session.AmountTotal != 185.50 {
		t.Fatalf("expected 185.50 back from cents, got %v", session.AmountTotal)
	}
	if session.Paid() {
		t.Fatal("unpaid session reported as paid")
	}
}

func TestGetSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions/cs_test_abc" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cs_test_abc",
			"payment_status": "paid",
			"amount_total": 18000,
			"currency": "usd",
			"payment_method_types": ["card"]
		}`))
	}))
	defer server.Close()

	adapter := NewWithBaseURL("sk_test_123", "https://app.example.com", server.URL)
	session, err := adapter.GetSession(context.Background(), "cs_test_abc")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !session.Paid() {
		t.Fatal("expected paid session")
	}
	if session.PaymentMethod != "card" {
		t.Fatalf("unexpected payment method %q", session.PaymentMethod)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewWithBaseURL("sk_test_123", "https://app.example.com", server.URL)
	if _, err := adapter.GetSession(context.Background(), "cs_missing"); err != paymentdomain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestProviderErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Invalid currency: xx"}}`))
	}))
	defer server.Close()

	adapter := NewWithBaseURL("sk_test_123", "https://app.example.com", server.URL)
	_, err := adapter.CreateSession(context.Background(), paymentdomain.CheckoutRequest{
		DueID:    "1",
		Amount:   10,
		Currency: "xx",
	})
	if !errors.Is(err, paymentdomain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid currency") {
		t.Fatalf("expected stripe message in error, got %v", err)
	}
}

func TestDisabledAdapterRefusesCalls(t *testing.T) {
	adapter := New("", "https://app.example.com")
	if _, err := adapter.GetSession(context.Background(), "cs_test"); err != paymentdomain.ErrProviderDisabled {
		t.Fatalf("expected ErrProviderDisabled, got %v", err)
	}
}

func TestGetSessionRejectsEmptyID(t *testing.T) {
	adapter := New("sk_test_123", "https://app.example.com")
	if _, err := adapter.GetSession(context.Background(), "   "); err != paymentdomain.ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}
