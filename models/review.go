package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is one-to-one with a completed booking
type Review struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID  primitive.ObjectID `json:"bookingId" bson:"bookingId"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	ProviderID primitive.ObjectID `json:"providerId" bson:"providerId"`
	Rating     int                `json:"rating" bson:"rating"` // 1-5
	Comment    string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ReviewRequest creates a review for a completed booking
type ReviewRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment,omitempty"`
}
