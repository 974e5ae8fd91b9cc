package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/beautycort/beautycort_backend/config"
	"github.com/beautycort/beautycort_backend/models"
	"github.com/beautycort/beautycort_backend/utils"
)

// ReviewController handles reviews of completed bookings
type ReviewController struct {
	db *mongo.Client
}

// NewReviewController creates a new review controller
func NewReviewController(db *mongo.Client) *ReviewController {
	return &ReviewController{db: db}
}

func (rc *ReviewController) collection(name string) *mongo.Collection {
	return config.GetCollection(rc.db, name)
}

// CreateReview records a rating for a completed booking. One review per
// booking; the provider's aggregate rating is recomputed afterwards.
func (rc *ReviewController) CreateReview(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}

	var req models.ReviewRequest
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
			Message:   "Booking ID and a rating from 1 to 5 are required",
			MessageAr: "معرف الحجز وتقييم من 1 إلى 5 مطلوبان",
		})
	}

	bookingID, err := primitive.ObjectIDFromHex(req.BookingID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid booking ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var booking models.Booking
	if err := rc.collection("bookings").FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Booking not found",
			MessageAr: "الحجز غير موجود",
		})
	}
	if booking.UserID != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:    http.StatusForbidden,
			Message:   "You can only review your own bookings",
			MessageAr: "يمكنك تقييم حجوزاتك فقط",
		})
	}
	if booking.Status != models.StatusCompleted {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Only completed bookings can be reviewed",
			MessageAr: "يمكن تقييم الحجوزات المكتملة فقط",
		})
	}

	now := time.Now()
	review := models.Review{
		BookingID:  bookingID,
		UserID:     userID,
		ProviderID: booking.ProviderID,
		Rating:     req.Rating,
		Comment:    utils.SanitizeInput(req.Comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	result, err := rc.collection("reviews").InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:    http.StatusConflict,
				Message:   "This booking has already been reviewed",
				MessageAr: "تم تقييم هذا الحجز بالفعل",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save review",
		})
	}
	review.ID = result.InsertedID.(primitive.ObjectID)

	rc.refreshProviderRating(ctx, booking.ProviderID)

	var provider models.Provider
	if err := rc.collection("providers").FindOne(ctx, bson.M{"_id": booking.ProviderID}).Decode(&provider); err == nil {
		go utils.NotifyUser(rc.db, provider.UserID,
			"New review", "تقييم جديد",
			"A customer left a review on a completed booking", "ترك أحد العملاء تقييماً على حجز مكتمل",
			models.NotificationTypeReview, map[string]string{"reviewId": review.ID.Hex()})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:    http.StatusCreated,
		Message:   "Review saved",
		MessageAr: "تم حفظ التقييم",
		Data:      review,
	})
}

// refreshProviderRating recomputes the provider's average from all reviews
func (rc *ReviewController) refreshProviderRating(ctx context.Context, providerID primitive.ObjectID) {
	cursor, err := rc.collection("reviews").Aggregate(ctx, []bson.M{
		{"$match": bson.M{"providerId": providerID}},
		{"$group": bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}},
	})
	if err != nil {
		return
	}
	var agg []struct {
		Average float64 `bson:"average"`
		Count   int     `bson:"count"`
	}
	if err := cursor.All(ctx, &agg); err != nil || len(agg) == 0 {
		return
	}
	_, _ = rc.collection("providers").UpdateOne(ctx, bson.M{"_id": providerID}, bson.M{"$set": bson.M{
		"rating": models.Rating{Average: agg[0].Average, Count: agg[0].Count},
	}})
}

// ListProviderReviews is the public review listing for one provider
func (rc *ReviewController) ListProviderReviews(c echo.Context) error {
	providerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid provider ID",
		})
	}

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

	reviews := rc.collection("reviews")
	filter := bson.M{"providerId": providerID}

	total, err := reviews.CountDocuments(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count reviews",
		})
	}

	cursor, err := reviews.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page-1)*limit)).
		SetLimit(int64(limit)))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve reviews",
		})
	}
	defer cursor.Close(ctx)

	results := []models.Review{}
	if err := cursor.All(ctx, &results); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode reviews",
		})
	}

	return c.JSON(http.StatusOK, models.PaginatedResponse{
		Status:  http.StatusOK,
		Message: "Reviews retrieved",
		Data:    results,
		Page:    page,
		Limit:   limit,
		Total:   total,
	})
}
