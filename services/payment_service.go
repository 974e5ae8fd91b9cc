package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/beautycort/beautycort_backend/models"
)

// PaymentService handles interactions with the hosted-checkout payment
// gateway used for online bookings
type PaymentService struct {
	baseURL    string
	channel    string
	secret     string
	websiteURL string
	isTesting  bool
}

// NewPaymentService creates a new payment service instance
func NewPaymentService() *PaymentService {
	gatewayEnv := os.Getenv("PAYMENT_ENV")
	isTesting := gatewayEnv == "testing"

	baseURL := os.Getenv("PAYMENT_API_URL")
	if baseURL == "" {
		baseURL = "https://api.sandbox.gateway.jo/collect-service/api/"
	}

	channel := os.Getenv("PAYMENT_CHANNEL")
	secret := os.Getenv("PAYMENT_SECRET")
	websiteURL := os.Getenv("PAYMENT_WEBSITE_URL")

	if channel == "" || secret == "" || websiteURL == "" {
		log.Printf("WARNING: payment gateway credentials not fully configured:")
		if channel == "" {
			log.Printf("  - PAYMENT_CHANNEL is missing")
		}
		if secret == "" {
			log.Printf("  - PAYMENT_SECRET is missing")
		}
		if websiteURL == "" {
			log.Printf("  - PAYMENT_WEBSITE_URL is missing")
		}
		log.Printf("Online payments will fail until these are set")
	}

	return &PaymentService{
		baseURL:    baseURL,
		channel:    channel,
		secret:     secret,
		websiteURL: websiteURL,
		isTesting:  isTesting,
	}
}

// NewPaymentServiceWithBaseURL is used by tests to point the client at a
// stub gateway
func NewPaymentServiceWithBaseURL(baseURL, channel, secret, websiteURL string) *PaymentService {
	return &PaymentService{
		baseURL:    baseURL,
		channel:    channel,
		secret:     secret,
		websiteURL: websiteURL,
		isTesting:  true,
	}
}

// CallbackBaseURL is the public base URL the gateway calls back to
func (s *PaymentService) CallbackBaseURL() string {
	return "https://" + s.websiteURL
}

// getHeaders returns the standard headers required for gateway requests
func (s *PaymentService) getHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"channel":      s.channel,
		"secret":       s.secret,
		"websiteurl":   s.websiteURL,
	}
}

// makeRequest performs an HTTP request to the gateway API
func (s *PaymentService) makeRequest(method, endpoint string, payload interface{}) (*models.GatewayResponse, error) {
	url := s.baseURL + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if s.channel == "" || s.secret == "" || s.websiteURL == "" {
		return nil, fmt.Errorf("missing payment gateway credentials. Please set PAYMENT_CHANNEL, PAYMENT_SECRET, and PAYMENT_WEBSITE_URL environment variables")
	}

	for key, value := range s.getHeaders() {
		req.Header.Set(key, value)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if s.isTesting || os.Getenv("PAYMENT_DEBUG") == "true" {
		log.Printf("Gateway API response: %s", string(respBody))
	}

	var gatewayResp models.GatewayResponse
	if err := json.Unmarshal(respBody, &gatewayResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !gatewayResp.Status {
		code := "unknown"
		if gatewayResp.Code != nil {
			if codeStr, ok := gatewayResp.Code.(string); ok {
				code = codeStr
			} else {
				code = fmt.Sprintf("%v", gatewayResp.Code)
			}
		}

		var errorMsg string
		if gatewayResp.Dialog != nil {
			if dialogMap, ok := gatewayResp.Dialog.(map[string]interface{}); ok {
				if msg, ok := dialogMap["message"].(string); ok {
					errorMsg = fmt.Sprintf("gateway error: %s - %s", code, msg)
				}
			}
		}
		if errorMsg == "" {
			errorMsg = fmt.Sprintf("gateway error: %s", code)
		}

		return &gatewayResp, fmt.Errorf("%s", errorMsg)
	}

	return &gatewayResp, nil
}

// CreateCheckout creates a hosted checkout and returns the collect URL
func (s *PaymentService) CreateCheckout(req models.GatewayRequest) (string, error) {
	resp, err := s.makeRequest("POST", "payment/collect", req)
	if err != nil {
		return "", err
	}

	if collectURL, ok := resp.Data["collectUrl"].(string); ok {
		return collectURL, nil
	}

	return "", fmt.Errorf("failed to parse collect URL from response")
}

// GetPaymentStatus returns the status of a collection attempt
func (s *PaymentService) GetPaymentStatus(currency string, externalID int64) (string, string, error) {
	payload := models.GatewayRequest{
		Currency:   currency,
		ExternalID: &externalID,
	}

	resp, err := s.makeRequest("POST", "payment/collect/status", payload)
	if err != nil {
		return "", "", err
	}

	var status, phoneNumber string

	if st, ok := resp.Data["collectStatus"].(string); ok {
		status = st
	}
	if pn, ok := resp.Data["payerPhoneNumber"].(string); ok {
		phoneNumber = pn
	}

	return status, phoneNumber, nil
}

// GetBalance retrieves the merchant account balance
func (s *PaymentService) GetBalance() (float64, error) {
	resp, err := s.makeRequest("GET", "payment/account/balance", nil)
	if err != nil {
		return 0, err
	}

	if balanceDetails, ok := resp.Data["balanceDetails"].(map[string]interface{}); ok {
		if balance, ok := balanceDetails["balance"].(float64); ok {
			return balance, nil
		}
	}

	return 0, fmt.Errorf("failed to parse balance from response")
}
