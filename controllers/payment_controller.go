package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/beautycort/beautycort_backend/config"
	"github.com/beautycort/beautycort_backend/models"
	"github.com/beautycort/beautycort_backend/services"
	"github.com/beautycort/beautycort_backend/utils"
	"github.com/beautycort/beautycort_backend/websocket"
)

// PaymentController handles online payment collection for bookings
type PaymentController struct {
	db      *mongo.Client
	gateway *services.PaymentService
	hub     *websocket.Hub
}

// NewPaymentController creates a new payment controller
func NewPaymentController(db *mongo.Client, gateway *services.PaymentService, hub *websocket.Hub) *PaymentController {
	return &PaymentController{db: db, gateway: gateway, hub: hub}
}

func (pc *PaymentController) collection(name string) *mongo.Collection {
	return config.GetCollection(pc.db, name)
}

// CreateCheckout opens a hosted payment page for an online booking and
// returns the URL the customer is redirected to.
func (pc *PaymentController) CreateCheckout(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid booking ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	var booking models.Booking
	if err := pc.collection("bookings").FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Booking not found",
			MessageAr: "الحجز غير موجود",
		})
	}
	if booking.UserID != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:    http.StatusForbidden,
			Message:   "You can only pay for your own bookings",
			MessageAr: "يمكنك الدفع لحجوزاتك فقط",
		})
	}
	if booking.PaymentMethod != models.PaymentMethodOnline {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "This booking is not set up for online payment",
			MessageAr: "هذا الحجز غير مهيأ للدفع الإلكتروني",
		})
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "This booking has already been paid",
			MessageAr: "تم دفع هذا الحجز بالفعل",
		})
	}
	if models.IsTerminalStatus(booking.Status) && booking.Status != models.StatusCompleted {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "This booking can no longer be paid",
			MessageAr: "لم يعد بالإمكان دفع هذا الحجز",
		})
	}

	externalID := time.Now().UnixMilli()
	amount := booking.Amount
	baseURL := pc.gateway.CallbackBaseURL()

	gatewayReq := models.GatewayRequest{
		Amount:             &amount,
		Currency:           "JOD",
		Invoice:            fmt.Sprintf("Booking %s", booking.Reference),
		ExternalID:         &externalID,
		SuccessCallbackURL: fmt.Sprintf("%s/api/payments/callback/success?externalId=%d", baseURL, externalID),
		FailureCallbackURL: fmt.Sprintf("%s/api/payments/callback/failure?externalId=%d", baseURL, externalID),
		SuccessRedirectURL: fmt.Sprintf("%s/payment/success", baseURL),
		FailureRedirectURL: fmt.Sprintf("%s/payment/failure", baseURL),
	}

	collectURL, err := pc.gateway.CreateCheckout(gatewayReq)
	if err != nil {
		log.Printf("Gateway checkout failed for booking %s: %v", booking.ID.Hex(), err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:    http.StatusBadGateway,
			Message:   "Payment gateway is unavailable, please try again",
			MessageAr: "بوابة الدفع غير متاحة، يرجى المحاولة مرة أخرى",
		})
	}

	now := time.Now()
	session := models.PaymentSession{
		BookingID:  booking.ID,
		ExternalID: externalID,
		Amount:     amount,
		Currency:   "JOD",
		CollectURL: collectURL,
		Status:     models.PaymentStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := pc.collection("paymentSessions").InsertOne(ctx, session); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record payment session",
		})
	}

	if _, err := pc.collection("bookings").UpdateOne(ctx, bson.M{"_id": booking.ID},
		bson.M{"$set": bson.M{"paymentStatus": models.PaymentStatusPending, "updatedAt": now}}); err != nil {
		log.Printf("Failed to mark booking %s payment pending: %v", booking.ID.Hex(), err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Checkout created",
		MessageAr: "تم إنشاء صفحة الدفع",
		Data:      models.CollectURLData{CollectURL: collectURL},
	})
}

// PaymentSuccessCallback is called by the gateway after a successful
// collection. The status is re-checked against the gateway before the
// booking is marked paid.
func (pc *PaymentController) PaymentSuccessCallback(c echo.Context) error {
	return pc.handleCallback(c, true)
}

// PaymentFailureCallback is called by the gateway after a failed collection
func (pc *PaymentController) PaymentFailureCallback(c echo.Context) error {
	return pc.handleCallback(c, false)
}

// callbackSupersedes reports whether a gateway callback may overwrite the
// session's current status. A late or replayed failure callback must not
// undo a settled payment.
func callbackSupersedes(sessionStatus string, success bool) bool {
	return success || sessionStatus != models.PaymentStatusPaid
}

func (pc *PaymentController) handleCallback(c echo.Context, success bool) error {
	externalID, err := strconv.ParseInt(c.QueryParam("externalId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid external ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	var session models.PaymentSession
	if err := pc.collection("paymentSessions").FindOne(ctx, bson.M{"externalId": externalID}).Decode(&session); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Payment session not found",
		})
	}

	if !callbackSupersedes(session.Status, success) {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Payment already settled",
		})
	}

	newStatus := models.PaymentStatusFailed
	if success {
		// Never trust the callback alone
		collectStatus, _, err := pc.gateway.GetPaymentStatus(session.Currency, session.ExternalID)
		if err != nil {
			log.Printf("Gateway status check failed for external ID %d: %v", externalID, err)
			return c.JSON(http.StatusBadGateway, models.Response{
				Status:  http.StatusBadGateway,
				Message: "Could not confirm payment status",
			})
		}
		if collectStatus == "success" {
			newStatus = models.PaymentStatusPaid
		}
	}

	now := time.Now()
	if _, err := pc.collection("paymentSessions").UpdateOne(ctx, bson.M{"_id": session.ID},
		bson.M{"$set": bson.M{"status": newStatus, "updatedAt": now}}); err != nil {
		log.Printf("Failed to update payment session %s: %v", session.ID.Hex(), err)
	}

	if _, err := pc.collection("bookings").UpdateOne(ctx, bson.M{"_id": session.BookingID},
		bson.M{"$set": bson.M{"paymentStatus": newStatus, "updatedAt": now}}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update booking payment status",
		})
	}

	var booking models.Booking
	if err := pc.collection("bookings").FindOne(ctx, bson.M{"_id": session.BookingID}).Decode(&booking); err == nil {
		msgEn := "Your payment could not be completed"
		msgAr := "تعذر إتمام عملية الدفع"
		if newStatus == models.PaymentStatusPaid {
			msgEn = fmt.Sprintf("Payment received for booking %s", booking.Reference)
			msgAr = "تم استلام الدفعة لحجزك"
		}
		go utils.NotifyUser(pc.db, booking.UserID, "Payment update", "تحديث الدفع",
			msgEn, msgAr, models.NotificationTypePayment, map[string]string{
				"bookingId":     booking.ID.Hex(),
				"paymentStatus": newStatus,
			})
		if pc.hub != nil {
			pc.hub.SendToUser(booking.UserID, websocket.Event{
				Type:    websocket.EventPaymentUpdated,
				Message: msgEn,
				Data: map[string]string{
					"bookingId":     booking.ID.Hex(),
					"paymentStatus": newStatus,
				},
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Callback processed",
	})
}

// GetPaymentStatus lets the app poll the payment state of a booking
func (pc *PaymentController) GetPaymentStatus(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid booking ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var booking models.Booking
	if err := pc.collection("bookings").FindOne(ctx, bson.M{"_id": bookingID, "userId": userID}).Decode(&booking); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Booking not found",
			MessageAr: "الحجز غير موجود",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment status retrieved",
		Data: map[string]string{
			"paymentMethod": booking.PaymentMethod,
			"paymentStatus": booking.PaymentStatus,
		},
	})
}
