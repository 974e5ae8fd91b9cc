package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationTypeBookingRequest = "booking_request"
	NotificationTypeBookingUpdate  = "booking_update"
	NotificationTypePayment        = "payment_update"
	NotificationTypeReview         = "new_review"
)

// Notification model
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"` // The user who receives the notification
	Title     string             `json:"title" bson:"title"`
	TitleAr   string             `json:"titleAr,omitempty" bson:"titleAr,omitempty"`
	Message   string             `json:"message" bson:"message"`
	MessageAr string             `json:"messageAr,omitempty" bson:"messageAr,omitempty"`
	Type      string             `json:"type" bson:"type"`
	Data      interface{}        `json:"data,omitempty" bson:"data"`
	IsRead    bool               `json:"isRead" bson:"isRead"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
