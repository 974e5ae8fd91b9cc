package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is one bookable item in a provider's catalog
type Service struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProviderID      primitive.ObjectID `json:"providerId" bson:"providerId"`
	Name            string             `json:"name" bson:"name"`
	NameAr          string             `json:"nameAr" bson:"nameAr"`
	Description     string             `json:"description,omitempty" bson:"description,omitempty"`
	DescriptionAr   string             `json:"descriptionAr,omitempty" bson:"descriptionAr,omitempty"`
	Price           float64            `json:"price" bson:"price"` // JOD
	DurationMinutes int                `json:"durationMinutes" bson:"durationMinutes"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ServiceRequest creates or updates a catalog entry
type ServiceRequest struct {
	Name            string  `json:"name" validate:"required"`
	NameAr          string  `json:"nameAr" validate:"required"`
	Description     string  `json:"description,omitempty"`
	DescriptionAr   string  `json:"descriptionAr,omitempty"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	DurationMinutes int     `json:"durationMinutes" validate:"required,gt=0"`
	IsActive        *bool   `json:"isActive,omitempty"`
}
