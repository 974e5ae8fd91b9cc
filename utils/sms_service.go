package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// SMSService sends messages through the JoSMS bulk gateway
type SMSService struct {
	AccName  string
	AccPass  string
	SenderID string
	APIPath  string
	Client   *http.Client
}

// SMSResponse represents the response from the JoSMS API
type SMSResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"message_id"`
		Cost      string `json:"cost"`
	} `json:"data"`
}

// NewSMSService creates a new SMS service instance from environment config
func NewSMSService() *SMSService {
	return &SMSService{
		AccName:  os.Getenv("SMS_ACC_NAME"),
		AccPass:  os.Getenv("SMS_ACC_PASS"),
		SenderID: getenvDefault("SMS_SENDER_ID", "BeautyCort"),
		APIPath:  getenvDefault("SMS_API_URL", "https://josmsservice.com/SMSServices/Clients/Prof/RestSingleSMS/SendSMS"),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Send delivers one SMS message to a Jordanian number
func (s *SMSService) Send(phoneNumber, message string) error {
	params := url.Values{}
	params.Set("AccName", s.AccName)
	params.Set("AccPass", s.AccPass)
	params.Set("senderid", s.SenderID)
	params.Set("numbers", strings.TrimPrefix(phoneNumber, "+"))
	params.Set("msg", message)

	fullURL := fmt.Sprintf("%s?%s", s.APIPath, params.Encode())

	req, err := http.NewRequest("POST", fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("User-Agent", "BeautyCort-OTP-Service/1.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, string(body))
	}

	var smsResp SMSResponse
	if err := json.Unmarshal(body, &smsResp); err != nil {
		// The gateway sometimes answers with a bare message id
		responseStr := strings.TrimSpace(string(body))
		if strings.Contains(strings.ToLower(responseStr), "success") ||
			strings.Contains(strings.ToLower(responseStr), "msgid") ||
			resp.StatusCode == http.StatusOK {
			return nil
		}
		return fmt.Errorf("failed to parse SMS response: %w", err)
	}

	if smsResp.Status == "success" || smsResp.Status == "sent" {
		return nil
	}

	return fmt.Errorf("SMS sending failed: %s", smsResp.Message)
}

// SendOTPViaSMS sends a 6-digit OTP in the customer's language
func SendOTPViaSMS(phone, otp, language string) error {
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	message := fmt.Sprintf("Your BeautyCort verification code is: %s. This code will expire in 10 minutes.", otp)
	if language == "ar" {
		message = fmt.Sprintf("رمز التحقق الخاص بك في بيوتي كورت هو: %s. تنتهي صلاحية الرمز خلال ١٠ دقائق.", otp)
	}

	smsService := NewSMSService()
	return smsService.Send(phone, message)
}
