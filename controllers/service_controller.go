package controllers

import (
	"context"
	"net/http"
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

// ServiceController handles the provider service catalog
type ServiceController struct {
	db *mongo.Client
}

// NewServiceController creates a new service controller
func NewServiceController(db *mongo.Client) *ServiceController {
	return &ServiceController{db: db}
}

func (sc *ServiceController) collection(name string) *mongo.Collection {
	return config.GetCollection(sc.db, name)
}

// ownProvider resolves the provider profile of the calling user
func (sc *ServiceController) ownProvider(c echo.Context, ctx context.Context) (*models.Provider, error) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return nil, err
	}
	var provider models.Provider
	if err := sc.collection("providers").FindOne(ctx, bson.M{"userId": userID}).Decode(&provider); err != nil {
		return nil, err
	}
	return &provider, nil
}

// CreateService adds an item to the provider's catalog
func (sc *ServiceController) CreateService(c echo.Context) error {
	var req models.ServiceRequest
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
			Message:   "Name, price, and duration are required",
			MessageAr: "الاسم والسعر والمدة مطلوبة",
		})
	}
	if req.DurationMinutes%utils.DefaultServiceDuration != 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Duration must be a multiple of 30 minutes",
			MessageAr: "يجب أن تكون المدة من مضاعفات 30 دقيقة",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := sc.ownProvider(c, ctx)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:    http.StatusForbidden,
			Message:   "Provider profile not found",
			MessageAr: "ملف مزود الخدمة غير موجود",
		})
	}

	now := time.Now()
	service := models.Service{
		ProviderID:      provider.ID,
		Name:            utils.SanitizeInput(req.Name),
		NameAr:          utils.SanitizeInput(req.NameAr),
		Description:     utils.SanitizeInput(req.Description),
		DescriptionAr:   utils.SanitizeInput(req.DescriptionAr),
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	result, err := sc.collection("services").InsertOne(ctx, service)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create service",
		})
	}
	service.ID = result.InsertedID.(primitive.ObjectID)

	return c.JSON(http.StatusCreated, models.Response{
		Status:    http.StatusCreated,
		Message:   "Service created",
		MessageAr: "تم إنشاء الخدمة",
		Data:      service,
	})
}

// ListProviderServices is the public catalog of one provider
func (sc *ServiceController) ListProviderServices(c echo.Context) error {
	providerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid provider ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := sc.collection("services").Find(ctx,
		bson.M{"providerId": providerID, "isActive": true},
		options.Find().SetSort(bson.D{{Key: "price", Value: 1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve services",
		})
	}
	defer cursor.Close(ctx)

	services := []models.Service{}
	if err := cursor.All(ctx, &services); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode services",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Services retrieved",
		Data:    services,
	})
}

// UpdateService edits one of the provider's own catalog entries
func (sc *ServiceController) UpdateService(c echo.Context) error {
	serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid service ID",
		})
	}

	var req models.ServiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Name, price, and duration are required",
			MessageAr: "الاسم والسعر والمدة مطلوبة",
		})
	}
	if req.DurationMinutes%utils.DefaultServiceDuration != 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Duration must be a multiple of 30 minutes",
			MessageAr: "يجب أن تكون المدة من مضاعفات 30 دقيقة",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := sc.ownProvider(c, ctx)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:    http.StatusForbidden,
			Message:   "Provider profile not found",
			MessageAr: "ملف مزود الخدمة غير موجود",
		})
	}

	set := bson.M{
		"name":            utils.SanitizeInput(req.Name),
		"nameAr":          utils.SanitizeInput(req.NameAr),
		"description":     utils.SanitizeInput(req.Description),
		"descriptionAr":   utils.SanitizeInput(req.DescriptionAr),
		"price":           req.Price,
		"durationMinutes": req.DurationMinutes,
		"updatedAt":       time.Now(),
	}
	if req.IsActive != nil {
		set["isActive"] = *req.IsActive
	}

	result := sc.collection("services").FindOneAndUpdate(ctx,
		bson.M{"_id": serviceID, "providerId": provider.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var service models.Service
	if err := result.Decode(&service); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Service not found",
			MessageAr: "الخدمة غير موجودة",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Service updated",
		MessageAr: "تم تحديث الخدمة",
		Data:      service,
	})
}

// DeleteService deactivates a catalog entry. Bookings keep referencing
// it, so it is never removed from the database.
func (sc *ServiceController) DeleteService(c echo.Context) error {
	serviceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid service ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := sc.ownProvider(c, ctx)
	if err != nil {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:    http.StatusForbidden,
			Message:   "Provider profile not found",
			MessageAr: "ملف مزود الخدمة غير موجود",
		})
	}

	result, err := sc.collection("services").UpdateOne(ctx,
		bson.M{"_id": serviceID, "providerId": provider.ID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}})
	if err != nil || result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:    http.StatusNotFound,
			Message:   "Service not found",
			MessageAr: "الخدمة غير موجودة",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Service removed",
		MessageAr: "تمت إزالة الخدمة",
	})
}
