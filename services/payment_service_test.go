package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beautycort/beautycort_backend/models"
)

func stubGateway(t *testing.T, handler http.HandlerFunc) *PaymentService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewPaymentServiceWithBaseURL(server.URL+"/", "test-channel", "test-secret", "beautycort.com")
}

func TestCreateCheckout(t *testing.T) {
	svc := stubGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment/collect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("channel") != "test-channel" || r.Header.Get("secret") != "test-secret" {
			t.Error("gateway credentials not sent as headers")
		}

		var req models.GatewayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Amount == nil || *req.Amount != 45.5 {
			t.Errorf("amount = %v, want 45.5", req.Amount)
		}
		if req.Currency != "JOD" {
			t.Errorf("currency = %q, want JOD", req.Currency)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]string{"collectUrl": "https://pay.example.jo/collect/abc123"},
		})
	})

	amount := 45.5
	externalID := int64(42)
	url, err := svc.CreateCheckout(models.GatewayRequest{
		Amount:     &amount,
		Currency:   "JOD",
		ExternalID: &externalID,
	})
	if err != nil {
		t.Fatalf("CreateCheckout error: %v", err)
	}
	if url != "https://pay.example.jo/collect/abc123" {
		t.Errorf("collect URL = %q", url)
	}
}

func TestCreateCheckoutGatewayError(t *testing.T) {
	svc := stubGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": false,
			"code":   "INVALID_AMOUNT",
			"dialog": map[string]string{"message": "amount must be positive"},
		})
	})

	amount := -1.0
	_, err := svc.CreateCheckout(models.GatewayRequest{Amount: &amount, Currency: "JOD"})
	if err == nil {
		t.Fatal("expected an error for a rejected collect request")
	}
}

func TestGetPaymentStatus(t *testing.T) {
	svc := stubGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment/collect/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]string{
				"collectStatus":    "success",
				"payerPhoneNumber": "+962791234567",
			},
		})
	})

	status, phone, err := svc.GetPaymentStatus("JOD", 42)
	if err != nil {
		t.Fatalf("GetPaymentStatus error: %v", err)
	}
	if status != "success" {
		t.Errorf("status = %q, want success", status)
	}
	if phone != "+962791234567" {
		t.Errorf("payer phone = %q", phone)
	}
}

func TestMakeRequestMissingCredentials(t *testing.T) {
	svc := NewPaymentServiceWithBaseURL("http://localhost/", "", "", "")
	amount := 10.0
	if _, err := svc.CreateCheckout(models.GatewayRequest{Amount: &amount}); err == nil {
		t.Fatal("expected an error without gateway credentials")
	}
}
