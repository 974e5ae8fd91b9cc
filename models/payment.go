package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GatewayRequest is the request body sent to the payment gateway
type GatewayRequest struct {
	Amount             *float64 `json:"amount,omitempty"`
	Currency           string   `json:"currency,omitempty"`
	Invoice            string   `json:"invoice,omitempty"`
	ExternalID         *int64   `json:"externalId,omitempty"`
	SuccessCallbackURL string   `json:"successCallbackUrl,omitempty"`
	FailureCallbackURL string   `json:"failureCallbackUrl,omitempty"`
	SuccessRedirectURL string   `json:"successRedirectUrl,omitempty"`
	FailureRedirectURL string   `json:"failureRedirectUrl,omitempty"`
}

// GatewayResponse is the standard envelope returned by the gateway
type GatewayResponse struct {
	Status bool                   `json:"status"`
	Code   interface{}            `json:"code"`   // string or null
	Dialog interface{}            `json:"dialog"` // string, object, or null
	Extra  interface{}            `json:"extra"`
	Data   map[string]interface{} `json:"data"`
}

// CollectURLData is the hosted checkout URL returned by the gateway
type CollectURLData struct {
	CollectURL string `json:"collectUrl"`
}

// PaymentStatusData is the gateway's view of a collection attempt
type PaymentStatusData struct {
	CollectStatus    string `json:"collectStatus"`
	PayerPhoneNumber string `json:"payerPhoneNumber"`
}

// PaymentSession ties a gateway checkout to a booking
type PaymentSession struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID  primitive.ObjectID `json:"bookingId" bson:"bookingId"`
	ExternalID int64              `json:"externalId" bson:"externalId"`
	Amount     float64            `json:"amount" bson:"amount"`
	Currency   string             `json:"currency" bson:"currency"`
	CollectURL string             `json:"collectUrl" bson:"collectUrl"`
	Status     string             `json:"status" bson:"status"` // mirrors booking payment statuses
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}
