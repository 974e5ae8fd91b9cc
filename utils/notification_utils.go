// utils/notification_utils.go
package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/beautycort/beautycort_backend/config"
	"github.com/beautycort/beautycort_backend/models"
)

// SaveNotification stores an in-app notification for a user
func SaveNotification(db *mongo.Client, userID primitive.ObjectID, title, titleAr, message, messageAr, notifType string, data interface{}) error {
	collection := config.GetCollection(db, "notifications")

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		TitleAr:   titleAr,
		Message:   message,
		MessageAr: messageAr,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := collection.InsertOne(ctx, notification)
	return err
}

// SendFCMNotificationToUser sends a Firebase Cloud Messaging push to a user
func SendFCMNotificationToUser(db *mongo.Client, userID primitive.ObjectID, title, message string, data map[string]string) error {
	collection := config.GetCollection(db, "users")
	var user models.User
	err := collection.FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.FCMToken == "" {
		return fmt.Errorf("user has no FCM token")
	}

	if config.FirebaseApp == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	notificationData := map[string]string{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for key, value := range data {
		notificationData[key] = value
	}

	fcmMessage := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: notificationData,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "beautycort_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  message,
					},
					Sound:    "default",
					Badge:    func() *int { v := 1; return &v }(),
					Category: "BOOKING_UPDATE",
				},
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}

	log.Printf("FCM notification sent to user %s: %s", userID.Hex(), response)
	return nil
}

// NotifyUser delivers a bilingual notification to a user over every
// best-effort channel (in-app + push). Failures are logged, never returned
// to the booking flow.
func NotifyUser(db *mongo.Client, userID primitive.ObjectID, title, titleAr, message, messageAr, notifType string, data map[string]string) {
	payload := map[string]interface{}{}
	for k, v := range data {
		payload[k] = v
	}

	if err := SaveNotification(db, userID, title, titleAr, message, messageAr, notifType, payload); err != nil {
		log.Printf("Failed to save in-app notification for %s: %v", userID.Hex(), err)
	}

	if err := SendFCMNotificationToUser(db, userID, title, message, data); err != nil {
		log.Printf("Failed to send FCM notification to %s: %v", userID.Hex(), err)
	}
}

// SendBookingEmail sends a booking confirmation/receipt email when the
// customer has an email on file
func SendBookingEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	fromEmail := os.Getenv("FROM_EMAIL")

	if smtpHost == "" || to == "" {
		return fmt.Errorf("email not configured or recipient missing")
	}

	senderEmail := fromEmail
	if senderEmail == "" {
		senderEmail = "bookings@beautycort.com"
	}

	smtpPort := 587
	if smtpPortStr := os.Getenv("SMTP_PORT"); smtpPortStr != "" {
		if portNum, err := strconv.Atoi(smtpPortStr); err == nil && portNum > 0 {
			smtpPort = portNum
		}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", senderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)

	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send booking email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
