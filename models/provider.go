package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is the provider's geocoordinate position
type Location struct {
	Lat  float64 `json:"lat" bson:"lat"`
	Lng  float64 `json:"lng" bson:"lng"`
	City string  `json:"city" bson:"city"`
}

// WorkingDay holds opening hours for one weekday, times in "15:04" format
type WorkingDay struct {
	Open   string `json:"open" bson:"open"`
	Close  string `json:"close" bson:"close"`
	Closed bool   `json:"closed" bson:"closed"`
}

// WorkingHours is keyed by lowercase weekday name ("monday" .. "sunday")
type WorkingHours map[string]WorkingDay

// Rating is the provider's aggregated review score
type Rating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int     `json:"count" bson:"count"`
}

// Provider is a salon/clinic business on the platform
type Provider struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"userId" bson:"userId"`
	BusinessName  string             `json:"businessName" bson:"businessName"`
	BusinessNameAr string            `json:"businessNameAr" bson:"businessNameAr"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	DescriptionAr string             `json:"descriptionAr,omitempty" bson:"descriptionAr,omitempty"`
	Location      Location           `json:"location" bson:"location"`
	WorkingHours  WorkingHours       `json:"workingHours" bson:"workingHours"`
	Verified      bool               `json:"verified" bson:"verified"`
	Rating        Rating             `json:"rating" bson:"rating"`
	LogoURL       string             `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
	PortfolioURLs []string           `json:"portfolioUrls,omitempty" bson:"portfolioUrls,omitempty"`
	ThumbnailURLs []string           `json:"thumbnailUrls,omitempty" bson:"thumbnailUrls,omitempty"`
	IsActive      bool               `json:"isActive" bson:"isActive"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProviderRequest creates or updates a provider profile
type ProviderRequest struct {
	BusinessName   string       `json:"businessName" validate:"required"`
	BusinessNameAr string       `json:"businessNameAr" validate:"required"`
	Description    string       `json:"description,omitempty"`
	DescriptionAr  string       `json:"descriptionAr,omitempty"`
	Location       Location     `json:"location"`
	WorkingHours   WorkingHours `json:"workingHours,omitempty"`
}

// WorkingHoursRequest replaces the provider's weekly schedule
type WorkingHoursRequest struct {
	WorkingHours WorkingHours `json:"workingHours" validate:"required"`
}

// ProviderMediaRequest uploads base64 encoded logo or portfolio media
type ProviderMediaRequest struct {
	MediaType string `json:"mediaType"` // "image" or "video"
	MediaFile string `json:"mediaFile" validate:"required"`
	FileName  string `json:"fileName,omitempty"`
	IsLogo    bool   `json:"isLogo,omitempty"`
}
