package controllers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/beautycort/beautycort_backend/middleware"
	"github.com/beautycort/beautycort_backend/models"
	"github.com/beautycort/beautycort_backend/utils"
)

// GetDashboard returns the provider's day view: today's bookings plus
// headline counts and revenue.
func (bc *BookingController) GetDashboard(c echo.Context) error {
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

	dateStr := c.QueryParam("date")
	if dateStr == "" {
		dateStr = time.Now().UTC().Format("2006-01-02")
	}
	date, err := utils.ParseBookingDate(dateStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid date, expected YYYY-MM-DD",
		})
	}

	bookings := bc.collection("bookings")
	filter := bson.M{"providerId": provider.ID, "bookingDate": date}

	cursor, err := bookings.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load bookings",
		})
	}
	defer cursor.Close(ctx)

	todayBookings := []models.Booking{}
	if err := cursor.All(ctx, &todayBookings); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode bookings",
		})
	}

	dashboard := models.DashboardData{
		Date:          dateStr,
		TodayBookings: todayBookings,
	}
	for _, b := range todayBookings {
		switch b.Status {
		case models.StatusPending:
			dashboard.PendingCount++
		case models.StatusConfirmed:
			dashboard.ConfirmedCount++
		case models.StatusCompleted:
			dashboard.CompletedCount++
			dashboard.TodayRevenue += b.ProviderFee
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Dashboard retrieved",
		MessageAr: "تم استرجاع لوحة المعلومات",
		Data:      dashboard,
	})
}

// statsFilter builds the booking filter for analytics endpoints from
// the caller's role and the from/to query range.
func (bc *BookingController) statsFilter(c echo.Context, ctx context.Context) (bson.M, error) {
	filter := bson.M{}

	claims := middleware.GetUserFromToken(c)
	if claims != nil && claims.UserType == models.UserTypeProvider {
		provider, err := bc.providerForRequest(c, ctx)
		if err != nil {
			return nil, fmt.Errorf("provider profile not found")
		}
		filter["providerId"] = provider.ID
	} else if providerHex := c.QueryParam("providerId"); providerHex != "" {
		providerID, err := primitive.ObjectIDFromHex(providerHex)
		if err != nil {
			return nil, fmt.Errorf("invalid provider ID")
		}
		filter["providerId"] = providerID
	}

	dateRange := bson.M{}
	if from := c.QueryParam("from"); from != "" {
		fromDate, err := utils.ParseBookingDate(from)
		if err != nil {
			return nil, fmt.Errorf("invalid from date, expected YYYY-MM-DD")
		}
		dateRange["$gte"] = fromDate
	}
	if to := c.QueryParam("to"); to != "" {
		toDate, err := utils.ParseBookingDate(to)
		if err != nil {
			return nil, fmt.Errorf("invalid to date, expected YYYY-MM-DD")
		}
		dateRange["$lte"] = toDate
	}
	if len(dateRange) > 0 {
		filter["bookingDate"] = dateRange
	}
	return filter, nil
}

// GetBookingStats aggregates booking counts, revenue, and completion
// rates over an optional date range, grouped by day and by service.
func (bc *BookingController) GetBookingStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	filter, err := bc.statsFilter(c, ctx)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	bookings := bc.collection("bookings")
	stats := models.BookingStats{}

	// Counts per status
	statusCursor, err := bookings.Aggregate(ctx, []bson.M{
		{"$match": filter},
		{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to aggregate bookings",
		})
	}
	var statusCounts []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := statusCursor.All(ctx, &statusCounts); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode aggregation",
		})
	}
	for _, sc := range statusCounts {
		stats.TotalBookings += sc.Count
		switch sc.Status {
		case models.StatusPending:
			stats.PendingBookings = sc.Count
		case models.StatusConfirmed:
			stats.ConfirmedBookings = sc.Count
		case models.StatusCompleted:
			stats.CompletedBookings = sc.Count
		case models.StatusCancelled:
			stats.CancelledBookings = sc.Count
		case models.StatusNoShow:
			stats.NoShowBookings = sc.Count
		}
	}
	if stats.TotalBookings > 0 {
		stats.CompletionRate = float64(stats.CompletedBookings) / float64(stats.TotalBookings)
		stats.CancellationRate = float64(stats.CancelledBookings) / float64(stats.TotalBookings)
	}

	// Revenue counts only completed bookings
	completedFilter := bson.M{"status": models.StatusCompleted}
	for k, v := range filter {
		completedFilter[k] = v
	}
	revenueCursor, err := bookings.Aggregate(ctx, []bson.M{
		{"$match": completedFilter},
		{"$group": bson.M{
			"_id":      nil,
			"total":    bson.M{"$sum": "$amount"},
			"platform": bson.M{"$sum": "$platformFee"},
			"provider": bson.M{"$sum": "$providerFee"},
		}},
	})
	if err == nil {
		var revenue []struct {
			Total    float64 `bson:"total"`
			Platform float64 `bson:"platform"`
			Provider float64 `bson:"provider"`
		}
		if err := revenueCursor.All(ctx, &revenue); err == nil && len(revenue) > 0 {
			stats.TotalRevenue = revenue[0].Total
			stats.PlatformRevenue = revenue[0].Platform
			stats.ProviderRevenue = revenue[0].Provider
		}
	}

	// Per-day breakdown
	dayCursor, err := bookings.Aggregate(ctx, []bson.M{
		{"$match": completedFilter},
		{"$group": bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$bookingDate"}},
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$amount"},
		}},
		{"$sort": bson.M{"_id": 1}},
	})
	if err == nil {
		_ = dayCursor.All(ctx, &stats.ByDay)
	}

	// Per-service breakdown
	serviceCursor, err := bookings.Aggregate(ctx, []bson.M{
		{"$match": completedFilter},
		{"$group": bson.M{
			"_id":     "$serviceId",
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$amount"},
		}},
		{"$sort": bson.M{"revenue": -1}},
	})
	if err == nil {
		_ = serviceCursor.All(ctx, &stats.ByService)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Statistics retrieved",
		MessageAr: "تم استرجاع الإحصائيات",
		Data:      stats,
	})
}

// SearchBookings is the admin listing with free filters
func (bc *BookingController) SearchBookings(c echo.Context) error {
	filter := bson.M{}

	if status := c.QueryParam("status"); status != "" {
		if !models.IsValidStatus(status) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown booking status",
			})
		}
		filter["status"] = status
	}
	if reference := c.QueryParam("reference"); reference != "" {
		filter["reference"] = reference
	}
	if providerHex := c.QueryParam("providerId"); providerHex != "" {
		providerID, err := primitive.ObjectIDFromHex(providerHex)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid provider ID",
			})
		}
		filter["providerId"] = providerID
	}
	if userHex := c.QueryParam("userId"); userHex != "" {
		userID, err := primitive.ObjectIDFromHex(userHex)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid user ID",
			})
		}
		filter["userId"] = userID
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

// ExportBookingsCSV streams the bookings matching the analytics filter
// as a CSV file for the back office.
func (bc *BookingController) ExportBookingsCSV(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filter, err := bc.statsFilter(c, ctx)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if status := c.QueryParam("status"); status != "" {
		if !models.IsValidStatus(status) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown booking status",
			})
		}
		filter["status"] = status
	}

	cursor, err := bc.collection("bookings").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "bookingDate", Value: 1}, {Key: "startTime", Value: 1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load bookings",
		})
	}
	defer cursor.Close(ctx)

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="bookings-%s.csv"`, time.Now().UTC().Format("2006-01-02")))
	c.Response().WriteHeader(http.StatusOK)

	writer := csv.NewWriter(c.Response())
	header := []string{"reference", "date", "startTime", "endTime", "status", "paymentMethod", "paymentStatus", "amount", "platformFee", "providerFee", "providerId", "userId", "createdAt"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			continue
		}
		record := []string{
			b.Reference,
			b.BookingDate.Format("2006-01-02"),
			b.StartTime,
			b.EndTime,
			b.Status,
			b.PaymentMethod,
			b.PaymentStatus,
			strconv.FormatFloat(b.Amount, 'f', 3, 64),
			strconv.FormatFloat(b.PlatformFee, 'f', 3, 64),
			strconv.FormatFloat(b.ProviderFee, 'f', 3, 64),
			b.ProviderID.Hex(),
			b.UserID.Hex(),
			b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// GetBookingQR renders the booking reference as a QR code PNG that the
// customer shows at the salon.
func (bc *BookingController) GetBookingQR(c echo.Context) error {
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
			Status:  http.StatusForbidden,
			Message: "You do not have access to this booking",
		})
	}

	qrCode, err := qr.Encode(booking.Reference, qr.M, qr.Auto)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}
	qrCode, err = barcode.Scale(qrCode, 200, 200)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to scale QR code",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode QR code",
		})
	}

	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
