package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Payment methods
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodOnline = "online"
)

// Payment states tracked on the booking
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// statusTransitions is the allowed status graph. Statuses with no entry
// are terminal.
var statusTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// IsValidStatus reports whether s is a known booking status
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsTerminalStatus reports whether no further transitions are allowed
func IsTerminalStatus(s string) bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// CanTransition reports whether a booking may move from one status to another
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking is the central transactional entity
type Booking struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Reference     string             `json:"reference" bson:"reference"`
	UserID        primitive.ObjectID `json:"userId" bson:"userId"`
	ProviderID    primitive.ObjectID `json:"providerId" bson:"providerId"`
	ServiceID     primitive.ObjectID `json:"serviceId" bson:"serviceId"`
	BookingDate   time.Time          `json:"bookingDate" bson:"bookingDate"` // midnight UTC
	StartTime     string             `json:"startTime" bson:"startTime"`     // "15:04"
	EndTime       string             `json:"endTime" bson:"endTime"`
	Status        string             `json:"status" bson:"status"`
	PaymentMethod string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus string             `json:"paymentStatus" bson:"paymentStatus"`
	Amount        float64            `json:"amount" bson:"amount"` // JOD
	PlatformFee   float64            `json:"platformFee" bson:"platformFee"`
	ProviderFee   float64            `json:"providerFee" bson:"providerFee"`
	Notes         string             `json:"notes,omitempty" bson:"notes,omitempty"`
	// SlotKey exists only while the booking occupies its slot. A unique
	// sparse index on it is what rejects double bookings; cancellation
	// unsets it so the slot can be rebooked.
	SlotKey   string    `json:"-" bson:"slotKey,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// BuildSlotKey builds the value guarded by the unique bookings index
func BuildSlotKey(providerID primitive.ObjectID, date time.Time, startTime string) string {
	return fmt.Sprintf("%s|%s|%s", providerID.Hex(), date.Format("2006-01-02"), startTime)
}

// BookingRequest creates a new booking
type BookingRequest struct {
	ProviderID    string `json:"providerId" validate:"required"`
	ServiceID     string `json:"serviceId" validate:"required"`
	BookingDate   string `json:"bookingDate" validate:"required"` // "2006-01-02"
	StartTime     string `json:"startTime" validate:"required"`   // "15:04"
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash card online"`
	Notes         string `json:"notes,omitempty"`
}

// BookingStatusUpdateRequest moves a booking along the status graph
type BookingStatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// RescheduleRequest moves a booking to a new slot
type RescheduleRequest struct {
	BookingDate string `json:"bookingDate" validate:"required"`
	StartTime   string `json:"startTime" validate:"required"`
	Reason      string `json:"reason,omitempty"`
}

// BulkBookingRequest creates several bookings in one call
type BulkBookingRequest struct {
	Bookings []BookingRequest `json:"bookings" validate:"required,min=1,dive"`
}

// BulkBookingResult reports the per-item outcome of a bulk create
type BulkBookingResult struct {
	Index     int      `json:"index"`
	Status    int      `json:"status"`
	Message   string   `json:"message"`
	MessageAr string   `json:"messageAr,omitempty"`
	Booking   *Booking `json:"booking,omitempty"`
}

// AvailabilityRequest asks for a provider's slots on one day
type AvailabilityRequest struct {
	ProviderID  string `json:"providerId" validate:"required"`
	Date        string `json:"date" validate:"required"` // "2006-01-02"
	ServiceID   string `json:"serviceId,omitempty"`
	StartTime   string `json:"startTime,omitempty"` // when set, the response focuses on this slot
}

// TimeSlot is one entry in an availability response
type TimeSlot struct {
	Time      string `json:"time"` // "15:04"
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"` // "booked", "prayer_time", "non_working_day", "outside_hours", "past"
}

// AvailabilityResponse is the payload of check-availability
type AvailabilityResponse struct {
	ProviderID     string     `json:"providerId"`
	Date           string     `json:"date"`
	Slots          []TimeSlot `json:"slots"`
	Available      *bool      `json:"available,omitempty"` // set when a specific startTime was asked about
	SuggestedTimes []string   `json:"suggestedTimes,omitempty"`
}

// BookingAudit is an append-only record of status-changing actions
type BookingAudit struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID  primitive.ObjectID `json:"bookingId" bson:"bookingId"`
	Action     string             `json:"action" bson:"action"`
	FromStatus string             `json:"fromStatus,omitempty" bson:"fromStatus,omitempty"`
	ToStatus   string             `json:"toStatus,omitempty" bson:"toStatus,omitempty"`
	ActorID    primitive.ObjectID `json:"actorId" bson:"actorId"`
	Reason     string             `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// BookingStats is the analytics aggregation payload
type BookingStats struct {
	TotalBookings     int64              `json:"totalBookings"`
	PendingBookings   int64              `json:"pendingBookings"`
	ConfirmedBookings int64              `json:"confirmedBookings"`
	CompletedBookings int64              `json:"completedBookings"`
	CancelledBookings int64              `json:"cancelledBookings"`
	NoShowBookings    int64              `json:"noShowBookings"`
	TotalRevenue      float64            `json:"totalRevenue"`
	PlatformRevenue   float64            `json:"platformRevenue"`
	ProviderRevenue   float64            `json:"providerRevenue"`
	CompletionRate    float64            `json:"completionRate"`
	CancellationRate  float64            `json:"cancellationRate"`
	ByDay             []BookingDayStats  `json:"byDay,omitempty"`
	ByService         []ServiceStats     `json:"byService,omitempty"`
}

// BookingDayStats groups bookings per calendar day
type BookingDayStats struct {
	Date     string  `json:"date" bson:"_id"`
	Count    int64   `json:"count" bson:"count"`
	Revenue  float64 `json:"revenue" bson:"revenue"`
}

// ServiceStats groups bookings per service
type ServiceStats struct {
	ServiceID primitive.ObjectID `json:"serviceId" bson:"_id"`
	Count     int64              `json:"count" bson:"count"`
	Revenue   float64            `json:"revenue" bson:"revenue"`
}

// DashboardData is the provider day view
type DashboardData struct {
	Date          string    `json:"date"`
	TodayBookings []Booking `json:"todayBookings"`
	PendingCount  int64     `json:"pendingCount"`
	ConfirmedCount int64    `json:"confirmedCount"`
	CompletedCount int64    `json:"completedCount"`
	TodayRevenue  float64   `json:"todayRevenue"`
}
