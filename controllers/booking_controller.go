package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/beautycort/beautycort_backend/config"
	"github.com/beautycort/beautycort_backend/middleware"
	"github.com/beautycort/beautycort_backend/models"
	"github.com/beautycort/beautycort_backend/utils"
	"github.com/beautycort/beautycort_backend/websocket"
)

const availabilityCacheTTL = 30 * time.Second

// BookingController handles booking-related API endpoints
type BookingController struct {
	db    *mongo.Client
	redis *redis.Client
	hub   *websocket.Hub
}

// NewBookingController creates a new booking controller
func NewBookingController(db *mongo.Client, rdb *redis.Client, hub *websocket.Hub) *BookingController {
	return &BookingController{db: db, redis: rdb, hub: hub}
}

func (bc *BookingController) collection(name string) *mongo.Collection {
	return config.GetCollection(bc.db, name)
}

// newBookingReference gives each booking a short human-readable code
func newBookingReference() string {
	return "BC-" + strings.ToUpper(uuid.New().String()[:8])
}

// bookedSlots returns the occupied start times for a provider on a day.
// Only bookings that still hold their slot count; cancelled ones have
// released it.
func (bc *BookingController) bookedSlots(ctx context.Context, providerID primitive.ObjectID, date time.Time) (map[string]bool, error) {
	cursor, err := bc.collection("bookings").Find(ctx, bson.M{
		"providerId":  providerID,
		"bookingDate": date,
		"slotKey":     bson.M{"$exists": true},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	booked := make(map[string]bool)
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			continue
		}
		booked[b.StartTime] = true
	}
	return booked, cursor.Err()
}

func (bc *BookingController) recordAudit(bookingID, actorID primitive.ObjectID, action, fromStatus, toStatus, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	audit := models.BookingAudit{
		BookingID:  bookingID,
		Action:     action,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		ActorID:    actorID,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if _, err := bc.collection("bookingAudits").InsertOne(ctx, audit); err != nil {
		log.Printf("Failed to record booking audit for %s: %v", bookingID.Hex(), err)
	}
}

// createOne validates and inserts a single booking for the given
// customer. It returns the HTTP status, bilingual messages, the created
// booking, and suggested alternative times on a slot conflict.
func (bc *BookingController) createOne(ctx context.Context, userID primitive.ObjectID, req models.BookingRequest) (int, string, string, *models.Booking, []string) {
	providerID, err := primitive.ObjectIDFromHex(req.ProviderID)
	if err != nil {
		return http.StatusBadRequest, "Invalid provider ID", "معرف مزود الخدمة غير صالح", nil, nil
	}
	serviceID, err := primitive.ObjectIDFromHex(req.ServiceID)
	if err != nil {
		return http.StatusBadRequest, "Invalid service ID", "معرف الخدمة غير صالح", nil, nil
	}

	date, err := utils.ParseBookingDate(req.BookingDate)
	if err != nil {
		return http.StatusBadRequest, "Invalid booking date, expected YYYY-MM-DD", "تاريخ الحجز غير صالح", nil, nil
	}
	if _, err := utils.ParseSlotTime(req.StartTime); err != nil {
		return http.StatusBadRequest, "Invalid start time, expected HH:MM", "وقت البدء غير صالح", nil, nil
	}

	var provider models.Provider
	if err := bc.collection("providers").FindOne(ctx, bson.M{"_id": providerID, "isActive": true}).Decode(&provider); err != nil {
		return http.StatusNotFound, "Provider not found", "مزود الخدمة غير موجود", nil, nil
	}
	if !provider.Verified {
		return http.StatusForbidden, "Provider is not yet accepting bookings", "مزود الخدمة لا يستقبل الحجوزات بعد", nil, nil
	}

	var service models.Service
	if err := bc.collection("services").FindOne(ctx, bson.M{"_id": serviceID, "providerId": providerID, "isActive": true}).Decode(&service); err != nil {
		return http.StatusNotFound, "Service not found for this provider", "الخدمة غير موجودة لدى هذا المزود", nil, nil
	}

	now := time.Now()
	if !utils.SlotOnGrid(provider.WorkingHours, date, req.StartTime) {
		return http.StatusBadRequest, "Requested time is outside the provider's working hours", "الوقت المطلوب خارج ساعات عمل المزود", nil, nil
	}
	if utils.InPrayerWindow(date, req.StartTime) {
		return http.StatusBadRequest, "Requested time falls within prayer time", "الوقت المطلوب يقع ضمن وقت الصلاة", nil, nil
	}
	slotStart, _ := utils.ParseSlotTime(req.StartTime)
	slotMoment := time.Date(date.Year(), date.Month(), date.Day(), slotStart.Hour(), slotStart.Minute(), 0, 0, time.UTC)
	if slotMoment.Before(time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), 0, 0, time.UTC)) {
		return http.StatusBadRequest, "Cannot book a time in the past", "لا يمكن الحجز في وقت مضى", nil, nil
	}

	if err := utils.ValidatePaymentMethod(req.PaymentMethod, service.Price); err != nil {
		return http.StatusBadRequest, err.Error(), "المبلغ يتجاوز الحد المسموح للدفع النقدي، يرجى الدفع إلكترونياً", nil, nil
	}

	endTime, err := utils.EndTime(req.StartTime, service.DurationMinutes)
	if err != nil {
		return http.StatusBadRequest, "Invalid start time", "وقت البدء غير صالح", nil, nil
	}

	platformFee, providerFee := utils.SplitFees(service.Price)

	booking := models.Booking{
		Reference:     newBookingReference(),
		UserID:        userID,
		ProviderID:    providerID,
		ServiceID:     serviceID,
		BookingDate:   date,
		StartTime:     req.StartTime,
		EndTime:       endTime,
		Status:        models.StatusPending,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentStatusUnpaid,
		Amount:        service.Price,
		PlatformFee:   platformFee,
		ProviderFee:   providerFee,
		Notes:         utils.SanitizeInput(req.Notes),
		SlotKey:       models.BuildSlotKey(providerID, date, req.StartTime),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, err := bc.collection("bookings").InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Slot already taken; offer the nearest free alternatives
			suggested := bc.suggestAlternatives(ctx, provider, date, service.DurationMinutes)
			return http.StatusConflict, "This time slot is already booked", "هذا الموعد محجوز بالفعل", nil, suggested
		}
		log.Printf("Failed to insert booking: %v", err)
		return http.StatusInternalServerError, "Failed to create booking", "فشل إنشاء الحجز", nil, nil
	}
	booking.ID = result.InsertedID.(primitive.ObjectID)

	bc.recordAudit(booking.ID, userID, "create", "", models.StatusPending, "")
	bc.invalidateAvailabilityCache(providerID, req.BookingDate)
	go bc.notifyBookingCreated(booking, provider, service)

	return http.StatusCreated, "Booking created successfully", "تم إنشاء الحجز بنجاح", &booking, nil
}

func (bc *BookingController) suggestAlternatives(ctx context.Context, provider models.Provider, date time.Time, durationMinutes int) []string {
	booked, err := bc.bookedSlots(ctx, provider.ID, date)
	if err != nil {
		return nil
	}
	slots := utils.BuildAvailability(provider.WorkingHours, date, booked, durationMinutes, time.Now())
	return utils.SuggestTimes(slots, 3)
}

// notifyBookingCreated fans out to the provider over every channel we
// have: in-app + push, websocket, and email. Best effort only.
func (bc *BookingController) notifyBookingCreated(booking models.Booking, provider models.Provider, service models.Service) {
	title := "New booking request"
	titleAr := "طلب حجز جديد"
	message := fmt.Sprintf("%s on %s at %s", service.Name, booking.BookingDate.Format("2006-01-02"), booking.StartTime)
	messageAr := fmt.Sprintf("%s بتاريخ %s الساعة %s", service.NameAr, booking.BookingDate.Format("2006-01-02"), booking.StartTime)

	utils.NotifyUser(bc.db, provider.UserID, title, titleAr, message, messageAr, models.NotificationTypeBookingRequest, map[string]string{
		"bookingId": booking.ID.Hex(),
		"reference": booking.Reference,
	})

	if bc.hub != nil {
		if err := bc.hub.NotifyBookingCreated(provider.UserID, booking); err != nil {
			log.Printf("Websocket notify failed for provider %s: %v", provider.UserID.Hex(), err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var providerUser models.User
	if err := bc.collection("users").FindOne(ctx, bson.M{"_id": provider.UserID}).Decode(&providerUser); err == nil && providerUser.Email != "" {
		body := fmt.Sprintf("<p>You have a new booking request.</p><p><b>%s</b><br>%s at %s<br>Reference: %s</p>",
			service.Name, booking.BookingDate.Format("2006-01-02"), booking.StartTime, booking.Reference)
		if err := utils.SendBookingEmail(providerUser.Email, "New booking request", body); err != nil {
			log.Printf("Booking email to %s failed: %v", providerUser.Email, err)
		}
	}
}

// CreateBooking handles the creation of a new booking
func (bc *BookingController) CreateBooking(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Invalid request",
			MessageAr: "طلب غير صالح",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Missing or invalid booking fields",
			MessageAr: "حقول الحجز ناقصة أو غير صالحة",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	status, msg, msgAr, booking, suggested := bc.createOne(ctx, userID, req)
	if status != http.StatusCreated {
		resp := models.Response{Status: status, Message: msg, MessageAr: msgAr}
		if len(suggested) > 0 {
			resp.Data = map[string]interface{}{"suggestedTimes": suggested}
		}
		return c.JSON(status, resp)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:    http.StatusCreated,
		Message:   msg,
		MessageAr: msgAr,
		Data:      booking,
	})
}

// BulkCreateBookings creates several bookings in one request. Items are
// processed independently; each gets its own outcome in the response.
func (bc *BookingController) BulkCreateBookings(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.BulkBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Invalid request",
			MessageAr: "طلب غير صالح",
		})
	}
	if err := c.Validate(&req); err != nil || len(req.Bookings) == 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "At least one booking is required",
			MessageAr: "مطلوب حجز واحد على الأقل",
		})
	}
	if len(req.Bookings) > 10 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "A maximum of 10 bookings per request is allowed",
			MessageAr: "الحد الأقصى 10 حجوزات في الطلب الواحد",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results := make([]models.BulkBookingResult, 0, len(req.Bookings))
	created := 0
	for i, item := range req.Bookings {
		status, msg, msgAr, booking, _ := bc.createOne(ctx, userID, item)
		if status == http.StatusCreated {
			created++
		}
		results = append(results, models.BulkBookingResult{
			Index:     i,
			Status:    status,
			Message:   msg,
			MessageAr: msgAr,
			Booking:   booking,
		})
	}

	httpStatus := http.StatusCreated
	if created == 0 {
		httpStatus = http.StatusBadRequest
	} else if created < len(req.Bookings) {
		httpStatus = http.StatusMultiStatus
	}

	return c.JSON(httpStatus, models.Response{
		Status:    httpStatus,
		Message:   fmt.Sprintf("%d of %d bookings created", created, len(req.Bookings)),
		MessageAr: fmt.Sprintf("تم إنشاء %d من %d حجوزات", created, len(req.Bookings)),
		Data:      results,
	})
}

// GetBooking returns one booking. Customers see their own bookings,
// providers the bookings on their calendar, admins everything.
func (bc *BookingController) GetBooking(c echo.Context) error {
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
	if err := bc.collection("bookings").FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Booking not found",
			MessageAr: "الحجز غير موجود",
		})
	}

	if !bc.canAccessBooking(c, ctx, booking) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:    http.StatusForbidden,
			Message:   "You do not have access to this booking",
			MessageAr: "ليس لديك صلاحية الوصول لهذا الحجز",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Booking retrieved",
		Data:    booking,
	})
}

func (bc *BookingController) canAccessBooking(c echo.Context, ctx context.Context, booking models.Booking) bool {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return false
	}
	if claims.UserType == models.UserTypeAdmin {
		return true
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return false
	}
	if booking.UserID == userID {
		return true
	}
	if claims.UserType == models.UserTypeProvider {
		var provider models.Provider
		if err := bc.collection("providers").FindOne(ctx, bson.M{"_id": booking.ProviderID}).Decode(&provider); err == nil {
			return provider.UserID == userID
		}
	}
	return false
}

// GetUserBookings lists the authenticated customer's bookings
func (bc *BookingController) GetUserBookings(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	filter := bson.M{"userId": userID}
	if status := c.QueryParam("status"); status != "" {
		if !models.IsValidStatus(status) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown booking status",
			})
		}
		filter["status"] = status
	}

	return bc.listBookings(c, filter)
}

// GetProviderBookings lists bookings on the authenticated provider's calendar
func (bc *BookingController) GetProviderBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := bc.providerForRequest(c, ctx)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:    http.StatusForbidden,
			Message:   "Provider profile not found",
			MessageAr: "ملف مزود الخدمة غير موجود",
		})
	}

	filter := bson.M{"providerId": provider.ID}
	if status := c.QueryParam("status"); status != "" {
		if !models.IsValidStatus(status) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown booking status",
			})
		}
		filter["status"] = status
	}
	if dateStr := c.QueryParam("date"); dateStr != "" {
		date, err := utils.ParseBookingDate(dateStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid date, expected YYYY-MM-DD",
			})
		}
		filter["bookingDate"] = date
	}

	return bc.listBookings(c, filter)
}

// providerForRequest resolves the provider profile of the calling user
func (bc *BookingController) providerForRequest(c echo.Context, ctx context.Context) (*models.Provider, error) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return nil, err
	}

	// A provider ID in the path targets that provider directly; only its
	// owner or an admin may read those bookings.
	if hex := c.Param("id"); hex != "" {
		providerID, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, err
		}
		var provider models.Provider
		if err := bc.collection("providers").FindOne(ctx, bson.M{"_id": providerID}).Decode(&provider); err != nil {
			return nil, err
		}
		if c.Get("userType") != models.UserTypeAdmin && provider.UserID != userID {
			return nil, fmt.Errorf("provider %s does not belong to the caller", hex)
		}
		return &provider, nil
	}

	var provider models.Provider
	if err := bc.collection("providers").FindOne(ctx, bson.M{"userId": userID}).Decode(&provider); err != nil {
		return nil, err
	}
	return &provider, nil
}

func (bc *BookingController) listBookings(c echo.Context, filter bson.M) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bookings := bc.collection("bookings")
	total, err := bookings.CountDocuments(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count bookings",
		})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "bookingDate", Value: -1}, {Key: "startTime", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := bookings.Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve bookings",
		})
	}
	defer cursor.Close(ctx)

	results := []models.Booking{}
	if err := cursor.All(ctx, &results); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode bookings",
		})
	}

	return c.JSON(http.StatusOK, models.PaginatedResponse{
		Status:  http.StatusOK,
		Message: "Bookings retrieved",
		Data:    results,
		Page:    page,
		Limit:   limit,
		Total:   total,
	})
}

// UpdateBookingStatus moves a booking along the status graph. Providers
// confirm, complete, or mark no-show; terminal bookings cannot change.
func (bc *BookingController) UpdateBookingStatus(c echo.Context) error {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid booking ID",
		})
	}

	var req models.BookingStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if !models.IsValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Unknown booking status",
			MessageAr: "حالة الحجز غير معروفة",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var booking models.Booking
	if err := bc.collection("bookings").FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Booking not found",
			MessageAr: "الحجز غير موجود",
		})
	}

	if !bc.canAccessBooking(c, ctx, booking) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You do not have access to this booking",
		})
	}

	claims := middleware.GetUserFromToken(c)
	if claims.UserType == models.UserTypeCustomer && req.Status != models.StatusCancelled {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:    http.StatusForbidden,
			Message:   "Customers can only cancel their bookings",
			MessageAr: "يمكن للعملاء إلغاء حجوزاتهم فقط",
		})
	}

	if models.IsTerminalStatus(booking.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   fmt.Sprintf("Booking is already %s and cannot change", booking.Status),
			MessageAr: "الحجز في حالة نهائية ولا يمكن تغييره",
		})
	}
	if !models.CanTransition(booking.Status, req.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   fmt.Sprintf("Cannot change booking from %s to %s", booking.Status, req.Status),
			MessageAr: "لا يمكن تغيير حالة الحجز إلى الحالة المطلوبة",
		})
	}

	return bc.applyStatusChange(c, ctx, booking, req.Status, req.Reason, req.Notes)
}

func (bc *BookingController) applyStatusChange(c echo.Context, ctx context.Context, booking models.Booking, newStatus, reason, notes string) error {
	actorID, _ := utils.GetUserIDFromToken(c)
	now := time.Now()

	set := bson.M{"status": newStatus, "updatedAt": now}
	if notes != "" {
		set["notes"] = utils.SanitizeInput(notes)
	}
	update := bson.M{"$set": set}
	if newStatus == models.StatusCancelled {
		// Release the slot so it can be rebooked
		update["$unset"] = bson.M{"slotKey": ""}
	}
	if newStatus == models.StatusCompleted && booking.PaymentMethod != models.PaymentMethodOnline {
		set["paymentStatus"] = models.PaymentStatusPaid
	}

	if _, err := bc.collection("bookings").UpdateOne(ctx, bson.M{"_id": booking.ID}, update); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update booking",
		})
	}

	bc.recordAudit(booking.ID, actorID, "status_change", booking.Status, newStatus, reason)
	bc.invalidateAvailabilityCache(booking.ProviderID, booking.BookingDate.Format("2006-01-02"))

	booking.Status = newStatus
	booking.UpdatedAt = now
	go bc.notifyStatusChange(booking, newStatus)

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Booking updated",
		MessageAr: "تم تحديث الحجز",
		Data:      booking,
	})
}

func (bc *BookingController) notifyStatusChange(booking models.Booking, newStatus string) {
	statusAr := map[string]string{
		models.StatusConfirmed: "تم تأكيد حجزك",
		models.StatusCancelled: "تم إلغاء حجزك",
		models.StatusCompleted: "اكتمل حجزك",
		models.StatusNoShow:    "تم تسجيل عدم حضورك",
	}
	title := "Booking update"
	message := fmt.Sprintf("Your booking %s is now %s", booking.Reference, newStatus)
	messageAr := statusAr[newStatus]

	utils.NotifyUser(bc.db, booking.UserID, title, "تحديث الحجز", message, messageAr, models.NotificationTypeBookingUpdate, map[string]string{
		"bookingId": booking.ID.Hex(),
		"status":    newStatus,
	})

	if bc.hub != nil {
		if err := bc.hub.NotifyBookingUpdated(booking.UserID, booking); err != nil {
			log.Printf("Websocket notify failed for user %s: %v", booking.UserID.Hex(), err)
		}
	}
}

// CancelBooking lets the customer cancel their own pending or confirmed booking
func (bc *BookingController) CancelBooking(c echo.Context) error {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid booking ID",
		})
	}

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.BookingStatusUpdateRequest
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var booking models.Booking
	if err := bc.collection("bookings").FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Booking not found",
			MessageAr: "الحجز غير موجود",
		})
	}
	if booking.UserID != userID && !bc.canAccessBooking(c, ctx, booking) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You do not have access to this booking",
		})
	}

	if models.IsTerminalStatus(booking.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   fmt.Sprintf("Booking is already %s and cannot be cancelled", booking.Status),
			MessageAr: "الحجز في حالة نهائية ولا يمكن إلغاؤه",
		})
	}

	return bc.applyStatusChange(c, ctx, booking, models.StatusCancelled, req.Reason, "")
}

// RescheduleBooking moves a pending or confirmed booking to a new slot.
// The new slot goes through the same conflict check as a fresh booking.
func (bc *BookingController) RescheduleBooking(c echo.Context) error {
	bookingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid booking ID",
		})
	}

	var req models.RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "New date and start time are required",
			MessageAr: "التاريخ والوقت الجديدان مطلوبان",
		})
	}

	date, err := utils.ParseBookingDate(req.BookingDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid booking date, expected YYYY-MM-DD",
		})
	}
	if _, err := utils.ParseSlotTime(req.StartTime); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid start time, expected HH:MM",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var booking models.Booking
	if err := bc.collection("bookings").FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Booking not found",
			MessageAr: "الحجز غير موجود",
		})
	}
	if !bc.canAccessBooking(c, ctx, booking) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You do not have access to this booking",
		})
	}
	if models.IsTerminalStatus(booking.Status) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   fmt.Sprintf("Booking is already %s and cannot be rescheduled", booking.Status),
			MessageAr: "الحجز في حالة نهائية ولا يمكن تغيير موعده",
		})
	}

	var provider models.Provider
	if err := bc.collection("providers").FindOne(ctx, bson.M{"_id": booking.ProviderID}).Decode(&provider); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Provider not found",
		})
	}

	if !utils.SlotOnGrid(provider.WorkingHours, date, req.StartTime) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Requested time is outside the provider's working hours",
			MessageAr: "الوقت المطلوب خارج ساعات عمل المزود",
		})
	}
	if utils.InPrayerWindow(date, req.StartTime) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Requested time falls within prayer time",
			MessageAr: "الوقت المطلوب يقع ضمن وقت الصلاة",
		})
	}

	duration := utils.DefaultServiceDuration
	var service models.Service
	if err := bc.collection("services").FindOne(ctx, bson.M{"_id": booking.ServiceID}).Decode(&service); err == nil {
		duration = service.DurationMinutes
	}
	endTime, err := utils.EndTime(req.StartTime, duration)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid start time",
		})
	}

	oldDate := booking.BookingDate.Format("2006-01-02")
	newSlotKey := models.BuildSlotKey(booking.ProviderID, date, req.StartTime)
	actorID, _ := utils.GetUserIDFromToken(c)

	// Moving the slotKey in one update keeps the unique index as the
	// arbiter: a concurrent booking of the target slot makes this fail.
	_, err = bc.collection("bookings").UpdateOne(ctx, bson.M{"_id": booking.ID}, bson.M{"$set": bson.M{
		"bookingDate": date,
		"startTime":   req.StartTime,
		"endTime":     endTime,
		"slotKey":     newSlotKey,
		"updatedAt":   time.Now(),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			suggested := bc.suggestAlternatives(ctx, provider, date, duration)
			resp := models.Response{
				Status:    http.StatusConflict,
				Message:   "This time slot is already booked",
				MessageAr: "هذا الموعد محجوز بالفعل",
			}
			if len(suggested) > 0 {
				resp.Data = map[string]interface{}{"suggestedTimes": suggested}
			}
			return c.JSON(http.StatusConflict, resp)
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to reschedule booking",
		})
	}

	bc.recordAudit(booking.ID, actorID, "reschedule", booking.Status, booking.Status, req.Reason)
	bc.invalidateAvailabilityCache(booking.ProviderID, oldDate)
	bc.invalidateAvailabilityCache(booking.ProviderID, req.BookingDate)

	booking.BookingDate = date
	booking.StartTime = req.StartTime
	booking.EndTime = endTime
	go bc.notifyStatusChange(booking, booking.Status)

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Booking rescheduled",
		MessageAr: "تم تغيير موعد الحجز",
		Data:      booking,
	})
}

func availabilityCacheKey(providerID, date string) string {
	return "availability:" + providerID + ":" + date
}

func (bc *BookingController) invalidateAvailabilityCache(providerID primitive.ObjectID, date string) {
	if bc.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := bc.redis.Del(ctx, availabilityCacheKey(providerID.Hex(), date)).Err(); err != nil && err != redis.Nil {
		log.Printf("Failed to invalidate availability cache: %v", err)
	}
}

// CheckAvailability returns the provider's slot grid for one day. When
// a specific startTime is asked about and it is taken, the response
// carries up to three nearby free alternatives.
func (bc *BookingController) CheckAvailability(c echo.Context) error {
	var req models.AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Invalid request",
			MessageAr: "طلب غير صالح",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Provider ID and date are required",
			MessageAr: "معرف المزود والتاريخ مطلوبان",
		})
	}

	providerID, err := primitive.ObjectIDFromHex(req.ProviderID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid provider ID",
		})
	}
	date, err := utils.ParseBookingDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid date, expected YYYY-MM-DD",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Cached grids serve the common browse case; requests about a
	// specific start time always hit the database.
	cacheKey := availabilityCacheKey(req.ProviderID, req.Date)
	if bc.redis != nil && req.StartTime == "" {
		if cached, err := bc.redis.Get(ctx, cacheKey).Result(); err == nil {
			return c.JSONBlob(http.StatusOK, []byte(cached))
		}
	}

	var provider models.Provider
	if err := bc.collection("providers").FindOne(ctx, bson.M{"_id": providerID, "isActive": true}).Decode(&provider); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Provider not found",
			MessageAr: "مزود الخدمة غير موجود",
		})
	}

	duration := utils.DefaultServiceDuration
	if req.ServiceID != "" {
		serviceID, err := primitive.ObjectIDFromHex(req.ServiceID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid service ID",
			})
		}
		var service models.Service
		if err := bc.collection("services").FindOne(ctx, bson.M{"_id": serviceID, "providerId": providerID}).Decode(&service); err != nil {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:    http.StatusNotFound,
				Message:   "Service not found for this provider",
				MessageAr: "الخدمة غير موجودة لدى هذا المزود",
			})
		}
		duration = service.DurationMinutes
	}

	booked, err := bc.bookedSlots(ctx, providerID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load bookings",
		})
	}

	slots := utils.BuildAvailability(provider.WorkingHours, date, booked, duration, time.Now())

	availability := models.AvailabilityResponse{
		ProviderID: req.ProviderID,
		Date:       req.Date,
		Slots:      slots,
	}

	if req.StartTime != "" {
		available := false
		for _, slot := range slots {
			if slot.Time == req.StartTime {
				available = slot.Available
				break
			}
		}
		availability.Available = &available
		if !available {
			availability.SuggestedTimes = utils.SuggestTimes(slots, 3)
		}
	}

	response := models.Response{
		Status:    http.StatusOK,
		Message:   "Availability retrieved",
		MessageAr: "تم استرجاع المواعيد المتاحة",
		Data:      availability,
	}

	if bc.redis != nil && req.StartTime == "" {
		if payload, err := json.Marshal(response); err == nil {
			if err := bc.redis.Set(ctx, cacheKey, payload, availabilityCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache availability: %v", err)
			}
		}
	}

	return c.JSON(http.StatusOK, response)
}
